// Package research runs one topic through the hosted research function and
// turns its SSE stream into live text fragments.
package research

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/papercomputeco/quire/pkg/backend"
)

// ErrNoBody is returned when a successful response carries no body.
var ErrNoBody = errors.New("No response body") //nolint:staticcheck // user-facing message

// Streamer opens the raw SSE stream for a topic.
type Streamer interface {
	Stream(ctx context.Context, topic string) (io.ReadCloser, error)
}

// Client calls the research function.
type Client struct {
	// Backend builds and sends the request.
	Backend *backend.Client

	// Endpoint is the research function URL or a path on the backend.
	Endpoint string

	// Token is the bearer token. Empty falls back to the backend anon key.
	Token string
}

var _ Streamer = (*Client)(nil)

// NewClient creates a research client for endpoint on b.
func NewClient(b *backend.Client, endpoint, token string) *Client {
	return &Client{
		Backend:  b,
		Endpoint: endpoint,
		Token:    token,
	}
}

type streamRequest struct {
	Topic string `json:"topic"`
}

// Stream POSTs the topic and returns the response body. Non-2xx replies
// yield a *backend.StatusError.
func (c *Client) Stream(ctx context.Context, topic string) (io.ReadCloser, error) {
	req, err := c.Backend.NewRequest(ctx, c.Backend.URL(c.Endpoint), c.Token, streamRequest{Topic: topic})
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.Backend.DoStream(req)
	if err != nil {
		return nil, fmt.Errorf("research: %w", err)
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, ErrNoBody
	}

	return resp.Body, nil
}
