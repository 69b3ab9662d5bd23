package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestIssuer(t *testing.T, secret string, ttl time.Duration, now time.Time) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(secret, ttl)
	require.NoError(t, err)
	issuer.now = func() time.Time { return now }
	return issuer
}

func TestNewTokenIssuer_Validation(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	require.Error(t, err)

	_, err = NewTokenIssuer("   ", time.Hour)
	require.Error(t, err)

	_, err = NewTokenIssuer("k", 0)
	require.Error(t, err)

	issuer, err := NewTokenIssuer("k", time.Hour)
	require.NoError(t, err)
	require.Equal(t, time.Hour, issuer.TTL())
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, subject := range []string{"1", "65f1c0ffee00000000000001", "user-with-dashes"} {
		issuer := newTestIssuer(t, "super-secret", time.Hour, fixedNow)

		token, err := issuer.Issue(subject)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.Len(t, strings.Split(token, "."), 3)

		got, err := issuer.Verify(token)
		require.NoError(t, err)
		require.Equal(t, subject, got)
	}
}

func TestIssue_Claims(t *testing.T) {
	issuer := newTestIssuer(t, "super-secret", time.Hour, fixedNow)

	token, err := issuer.Issue("42")
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.True(t, claims.IssuedAt.Time.Equal(fixedNow))
	require.True(t, claims.ExpiresAt.Time.Equal(fixedNow.Add(time.Hour)))
}

func TestVerify_Expiry(t *testing.T) {
	issuer := newTestIssuer(t, "super-secret", time.Hour, fixedNow)
	token, err := issuer.Issue("7")
	require.NoError(t, err)

	issuer.now = func() time.Time { return fixedNow.Add(time.Hour - time.Second) }
	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "7", subject)

	issuer.now = func() time.Time { return fixedNow.Add(time.Hour) }
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	issuer.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	_, err = issuer.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuerA := newTestIssuer(t, "secret-a", time.Hour, fixedNow)
	issuerB := newTestIssuer(t, "secret-b", time.Hour, fixedNow)

	token, err := issuerA.Issue("7")
	require.NoError(t, err)

	_, err = issuerB.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_TamperedPayload(t *testing.T) {
	issuer := newTestIssuer(t, "super-secret", time.Hour, fixedNow)
	token, err := issuer.Issue("7")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"8","iat":1772366400,"exp":1772370000}`))
	tampered := parts[0] + "." + forged + "." + parts[2]

	_, err = issuer.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_ExtendedExpiryRejected(t *testing.T) {
	issuer := newTestIssuer(t, "super-secret", time.Hour, fixedNow)
	token, err := issuer.Issue("7")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	extended := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"7","iat":1772366400,"exp":4102444800}`))

	_, err = issuer.Verify(parts[0] + "." + extended + "." + parts[2])
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	issuer := newTestIssuer(t, "super-secret", time.Hour, fixedNow)
	claims := jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(fixedNow.Add(time.Hour)),
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(hs512)
	require.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(none)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RequiresExpiryAndSubject(t *testing.T) {
	issuer := newTestIssuer(t, "super-secret", time.Hour, fixedNow)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "7"}).
		SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(noExp)
	require.ErrorIs(t, err, ErrInvalidToken)

	noSub, err := issuer.Issue("")
	require.NoError(t, err)
	_, err = issuer.Verify(noSub)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	issuer := newTestIssuer(t, "super-secret", time.Hour, fixedNow)

	for _, token := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := issuer.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}
