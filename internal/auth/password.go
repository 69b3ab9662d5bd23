// Package auth holds the credential primitives: password hashing and
// signed access tokens.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// PasswordHasher hashes plaintext passwords and checks them against stored
// hashes. Hash strings are self-describing: they carry algorithm, cost and
// salt, so Verify needs nothing but the string.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// Hasher hashes with one configured algorithm and verifies hashes produced
// by any supported algorithm.
type Hasher struct {
	algorithm  string
	bcryptCost int
	argon      Argon2Params
}

// NewHasher builds a Hasher for the given algorithm. A bcryptCost of zero
// selects bcrypt.DefaultCost.
func NewHasher(algorithm string, bcryptCost int) (*Hasher, error) {
	algorithm = strings.ToLower(strings.TrimSpace(algorithm))
	if algorithm == "" {
		algorithm = AlgorithmBcrypt
	}
	if algorithm != AlgorithmBcrypt && algorithm != AlgorithmArgon2id {
		return nil, fmt.Errorf("unsupported hash algorithm %q", algorithm)
	}

	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &Hasher{
		algorithm:  algorithm,
		bcryptCost: bcryptCost,
		argon:      DefaultArgon2Params,
	}, nil
}

// WithArgon2Params returns a copy of h using p for new argon2id hashes.
func (h *Hasher) WithArgon2Params(p Argon2Params) *Hasher {
	clone := *h
	clone.argon = p
	return &clone
}

// Algorithm reports the algorithm used for new hashes.
func (h *Hasher) Algorithm() string {
	return h.algorithm
}

func (h *Hasher) Hash(password string) (string, error) {
	if h.algorithm == AlgorithmArgon2id {
		return hashArgon2id(password, h.argon)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches encodedHash. A mismatch is not an
// error; only an unparseable hash is.
func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	if strings.HasPrefix(encodedHash, "$"+AlgorithmArgon2id+"$") {
		return verifyArgon2id(password, encodedHash)
	}
	if !isBcryptHash(encodedHash) {
		return false, fmt.Errorf("%w: unrecognized hash format", ErrHashing)
	}

	err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrHashing, err)
	}
}

func isBcryptHash(s string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
