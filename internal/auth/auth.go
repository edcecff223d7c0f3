// Package auth is the admin gateway: a single bcrypt-hashed credential and
// short-lived JWT sessions for the back office.
package auth

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors for the admin gateway.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrTokenExpired = errors.New("token has expired")
)

// DefaultSessionTTL mirrors the 8-hour admin session window.
const DefaultSessionTTL = 8 * time.Hour

// Gateway authenticates the admin and issues/validates session tokens.
// Every mutating admin operation must pass ValidateToken strictly before any
// state change.
type Gateway struct {
	passwordHash []byte
	secret       []byte
	issuer       string
	ttl          time.Duration
}

// NewGateway creates a Gateway. passwordHash is a bcrypt hash; secret signs
// session tokens (HS256).
func NewGateway(passwordHash, secret, issuer string, ttl time.Duration) *Gateway {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Gateway{
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		issuer:       issuer,
		ttl:          ttl,
	}
}

// SessionTTL reports how long issued tokens stay valid.
func (g *Gateway) SessionTTL() time.Duration {
	return g.ttl
}

// Login verifies the admin password and returns a signed session token.
func (g *Gateway) Login(password string) (string, error) {
	if len(g.passwordHash) == 0 {
		return "", ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)); err != nil {
		return "", ErrUnauthorized
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    g.issuer,
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign session token")
	}
	return signed, nil
}

// ValidateToken checks a session token and returns nil when the request is
// authorized.
func (g *Gateway) ValidateToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrUnauthorized
			}
			return g.secret, nil
		},
		jwt.WithIssuer(g.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrUnauthorized
	}
	if !token.Valid {
		return ErrUnauthorized
	}
	return nil
}

// HashPassword produces the bcrypt hash stored in configuration. Used by the
// seed tool.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(b), nil
}
