package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jjudge-oj/userauth/internal/auth"
	"github.com/jjudge-oj/userauth/internal/services"
	"github.com/jjudge-oj/userauth/types"
)

const (
	msgFieldsRequired      = "All fields are required"
	msgCredentialsRequired = "Email and password are required"
	msgInvalidBody         = "Invalid request body"
	msgPasswordTooLong     = "Password is too long"
	msgUserExists          = "User already exists"
	msgUserNotFound        = "User not found"
	msgInvalidCredentials  = "Invalid credentials"
	msgUnauthorized        = "Unauthorized"
	msgServerError         = "Server error"
	msgRegistered          = "User registered successfully"
	msgLoggedIn            = "Login successful"
)

// TokenVerifier resolves a bearer token to the user id it was issued for.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthHandler serves the user registration, login and listing endpoints.
type AuthHandler struct {
	userService *services.UserService
	tokens      TokenVerifier
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, tokens TokenVerifier) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
	}
}

// AuthRouter registers user routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, tokens TokenVerifier) {
	handler := NewAuthHandler(userService, tokens)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.Get("/getUsers", handler.ListUsers)
	r.With(RequireAuth(tokens)).Get("/me", handler.Me)
}

// RequireAuth enforces bearer token authentication and injects the subject
// into the request context.
func RequireAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			subject, err := tokens.Verify(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), contextSubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Register creates a new user account. It does not issue a token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	_, err := h.userService.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, MessageResponse{Message: msgRegistered})
	case errors.Is(err, auth.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, msgPasswordTooLong)
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, msgFieldsRequired)
	case errors.Is(err, services.ErrDuplicateUser):
		writeError(w, http.StatusBadRequest, msgUserExists)
	default:
		writeServerError(w, r, "register", err)
	}
}

// Login verifies credentials and returns a signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	token, err := h.userService.Login(r.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, LoginResponse{Message: msgLoggedIn, Token: token})
	case errors.Is(err, services.ErrValidation):
		writeError(w, http.StatusBadRequest, msgCredentialsRequired)
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, msgUserNotFound)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
	default:
		writeServerError(w, r, "login", err)
	}
}

// ListUsers returns every user without password hashes.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		writeServerError(w, r, "list users", err)
		return
	}
	if users == nil {
		users = []types.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := subjectFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		writeServerError(w, r, "load current user", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
