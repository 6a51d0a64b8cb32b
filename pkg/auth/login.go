package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/papercomputeco/quire/pkg/backend"
)

const (
	passwordGrantPath = "/auth/v1/token?grant_type=password"
	signUpPath        = "/auth/v1/signup"
)

// ErrMissingCredentials is returned when email or password is blank.
var ErrMissingCredentials = errors.New("email and password are required")

// Tokens is the session issued by the hosted auth backend.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type passwordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges an email and password for a session.
func Login(ctx context.Context, b *backend.Client, email, password string) (*Tokens, error) {
	return passwordFlow(ctx, b, passwordGrantPath, email, password)
}

// SignUp registers a new account. Backends that require email
// confirmation reply without an access token.
func SignUp(ctx context.Context, b *backend.Client, email, password string) (*Tokens, error) {
	return passwordFlow(ctx, b, signUpPath, email, password)
}

func passwordFlow(ctx context.Context, b *backend.Client, path, email, password string) (*Tokens, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	req, err := b.NewRequest(ctx, b.URL(path), "", passwordRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := b.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}
	defer resp.Body.Close()

	tokens := &Tokens{}
	if err := json.NewDecoder(resp.Body).Decode(tokens); err != nil {
		return nil, fmt.Errorf("auth: decoding response: %w", err)
	}
	return tokens, nil
}
