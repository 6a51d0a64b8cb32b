// Package api provides the HTTP API server for rendering, researching and
// browsing research history.
package api

import (
	"net/http"

	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/research"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Verifier checks bearer tokens. Defaults to an unsigned verifier.
	Verifier *auth.Verifier

	// NewStreamer opens research streams with the caller's token.
	NewStreamer func(token string) research.Streamer

	// Jobs receives finished research for background storage.
	// When nil, content is stored inline.
	Jobs research.Enqueuer

	// MCPHandler is mounted on /mcp when set.
	MCPHandler http.Handler
}
