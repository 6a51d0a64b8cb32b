package auth

import (
	"errors"

	"github.com/papercomputeco/quire/pkg/credentials"
)

// TokenSource provides the stored access token.
type TokenSource interface {
	AccessToken() (string, error)
}

var _ TokenSource = (*credentials.Manager)(nil)

// Current returns the signed-in user and their token from src.
// Expired and missing tokens yield ErrSignedOut.
func Current(src TokenSource, v *Verifier) (*User, string, error) {
	token, err := src.AccessToken()
	if err != nil {
		return nil, "", err
	}

	user, err := v.Verify(token)
	if errors.Is(err, ErrExpired) {
		return nil, "", ErrSignedOut
	}
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
