package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, password string, ttl time.Duration) *Gateway {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return NewGateway(hash, "test-secret", "dz-storefront", ttl)
}

func TestLoginAndValidate(t *testing.T) {
	g := newTestGateway(t, "correct horse", time.Hour)

	token, err := g.Login("correct horse")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, g.ValidateToken(token))
}

func TestLogin_WrongPassword(t *testing.T) {
	g := newTestGateway(t, "correct horse", time.Hour)

	_, err := g.Login("battery staple")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_NoHashConfigured(t *testing.T) {
	g := NewGateway("", "test-secret", "dz-storefront", time.Hour)

	_, err := g.Login("anything")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateToken_Garbage(t *testing.T) {
	g := newTestGateway(t, "pw", time.Hour)

	require.ErrorIs(t, g.ValidateToken("not.a.jwt"), ErrUnauthorized)
	require.ErrorIs(t, g.ValidateToken(""), ErrUnauthorized)
}

func TestValidateToken_Expired(t *testing.T) {
	g := newTestGateway(t, "pw", time.Hour)

	past := time.Now().Add(-2 * time.Hour)
	claims := jwt.RegisteredClaims{
		Issuer:    "dz-storefront",
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
		IssuedAt:  jwt.NewNumericDate(past),
		NotBefore: jwt.NewNumericDate(past),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	require.ErrorIs(t, g.ValidateToken(token), ErrTokenExpired)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	issuer := NewGateway(hash, "secret-a", "dz-storefront", time.Hour)
	verifier := NewGateway(hash, "secret-b", "dz-storefront", time.Hour)

	token, err := issuer.Login("pw")
	require.NoError(t, err)

	require.ErrorIs(t, verifier.ValidateToken(token), ErrUnauthorized)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)

	other := NewGateway(hash, "test-secret", "someone-else", time.Hour)
	g := NewGateway(hash, "test-secret", "dz-storefront", time.Hour)

	token, err := other.Login("pw")
	require.NoError(t, err)

	require.ErrorIs(t, g.ValidateToken(token), ErrUnauthorized)
}

func TestSessionTTLDefault(t *testing.T) {
	g := NewGateway("hash", "secret", "dz-storefront", 0)
	assert.Equal(t, DefaultSessionTTL, g.SessionTTL())
}
