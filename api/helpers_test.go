package api

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/papercomputeco/quire/pkg/auth"
)

const testSecret = "test-secret"

// signToken issues an HS256 session token for userID.
func signToken(userID string) string {
	claims := auth.Claims{
		Email: userID + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		panic(err)
	}
	return token
}

// sseBody builds an SSE response body from text deltas.
func sseBody(texts ...string) string {
	var sb strings.Builder
	for _, t := range texts {
		payload, _ := json.Marshal(map[string]any{
			"choices": []any{
				map[string]any{"delta": map[string]any{"content": t}},
			},
		})
		sb.WriteString("data: " + string(payload) + "\n\n")
	}
	sb.WriteString("data: [DONE]\n\n")
	return sb.String()
}

// fakeStreamer serves a fixed SSE body and records the tokens it was
// created with.
type fakeStreamer struct {
	body  string
	err   error
	token string
}

func (f *fakeStreamer) Stream(_ context.Context, _ string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}
