// Package auth identifies the signed-in user from the session token issued
// by the hosted auth backend.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSignedOut is returned when no usable session token exists.
	ErrSignedOut = errors.New("not signed in")

	// ErrExpired is returned for a token whose exp claim has passed.
	ErrExpired = errors.New("session expired")

	// ErrInvalidToken is returned for malformed or badly signed tokens.
	ErrInvalidToken = errors.New("invalid session token")
)

// Claims are the JWT claims quire reads from the session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// User is the identity behind a session token.
type User struct {
	ID        string
	Email     string
	ExpiresAt time.Time
}

// Verifier turns bearer tokens into users.
//
// With a secret, tokens must carry a valid HS256 signature. Without one,
// claims are decoded unverified and only the expiry is checked; the hosted
// backend remains the authority for those tokens.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier creates a Verifier. An empty secret disables signature checks.
func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// WithClock returns a copy of v that reads the current time from now.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	c := *v
	c.now = now
	return &c
}

// Verify parses token and returns its user.
func (v *Verifier) Verify(token string) (*User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSignedOut
	}

	claims := &Claims{}
	if len(v.secret) == 0 {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	} else {
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return v.secret, nil
		}, jwt.WithTimeFunc(v.now), jwt.WithExpirationRequired())
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing sub claim", ErrInvalidToken)
	}

	user := &User{ID: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		user.ExpiresAt = claims.ExpiresAt.Time
		if !v.now().Before(user.ExpiresAt) {
			return nil, ErrExpired
		}
	}

	return user, nil
}

// BearerToken extracts the token from an Authorization header value.
// Returns an empty string when the header is not a bearer credential.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
