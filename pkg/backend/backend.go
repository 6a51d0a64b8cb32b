// Package backend talks to the hosted functions behind quire: research,
// checkout, customer portal and subscription checks.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/quire/pkg/config"
)

// Function names served under the functions path.
const (
	FunctionResearch          = "research"
	FunctionCreateCheckout    = "create-checkout"
	FunctionCustomerPortal    = "customer-portal"
	FunctionCheckSubscription = "check-subscription"
)

// StatusError is returned for a non-2xx response. Message is the body's
// "error" field when present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Timeouts for the two kinds of call. Function calls are short JSON
// round trips; streams are bounded only by the time to first byte and the
// request context.
const (
	InvokeTimeout         = 30 * time.Second
	StreamResponseTimeout = 30 * time.Second
)

// Client builds requests against the hosted backend.
type Client struct {
	// BaseURL is scheme + host + port, without a trailing slash.
	BaseURL string

	// FunctionsPath prefixes every function name.
	FunctionsPath string

	// AnonKey is the public project key. It is sent as the apikey header
	// and used as the bearer token when no user token is given.
	AnonKey string

	// HTTPClient sends function calls.
	HTTPClient *http.Client

	// StreamClient sends streaming requests. It must not set an overall
	// Timeout, which would also cut off reading the body.
	StreamClient *http.Client
}

// New creates a client from the backend section of cfg.
func New(cfg config.BackendConfig) *Client {
	return &Client{
		BaseURL:       strings.TrimRight(cfg.URL, "/"),
		FunctionsPath: cfg.FunctionsPath,
		AnonKey:       cfg.AnonKey,
		HTTPClient:    &http.Client{Timeout: InvokeTimeout},
		StreamClient:  NewStreamClient(StreamResponseTimeout),
	}
}

// NewStreamClient returns a client with no overall timeout whose transport
// gives up when response headers take longer than headerTimeout.
func NewStreamClient(headerTimeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: transport}
}

// FunctionURL returns the URL of a named function.
func (c *Client) FunctionURL(name string) string {
	return c.URL(strings.TrimRight(c.FunctionsPath, "/") + "/" + name)
}

// URL joins path onto the base URL. Absolute URLs are returned unchanged.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}

// NewRequest creates a JSON POST request. A nil body sends "{}".
func (c *Client) NewRequest(ctx context.Context, url, token string, body any) (*http.Request, error) {
	payload := []byte("{}")
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token == "" {
		token = c.AnonKey
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if c.AnonKey != "" {
		req.Header.Set("apikey", c.AnonKey)
	}

	return req, nil
}

// Do sends req. Non-2xx responses are drained, closed and returned as a
// *StatusError.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.send(c.HTTPClient, req)
}

// DoStream is Do on the stream client. The body stays open until the
// server ends it or the request context is done.
func (c *Client) DoStream(req *http.Request) (*http.Response, error) {
	return c.send(c.StreamClient, req)
}

func (c *Client) send(httpClient *http.Client, req *http.Request) (*http.Response, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if err := CheckResponse(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// Invoke calls a function and decodes its JSON reply into out, which may
// be nil.
func (c *Client) Invoke(ctx context.Context, name, token string, body, out any) error {
	req, err := c.NewRequest(ctx, c.FunctionURL(name), token, body)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decoding response: %w", name, err)
	}
	return nil
}

// CheckResponse returns a *StatusError for non-2xx responses. It reads but
// does not close the body.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	statusErr := &StatusError{
		Code:    resp.StatusCode,
		Message: fmt.Sprintf("Request failed with status %d", resp.StatusCode),
	}
	if resp.Body == nil {
		return statusErr
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return statusErr
	}

	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		statusErr.Message = body.Error
	}
	return statusErr
}
