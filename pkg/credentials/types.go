package credentials

import "time"

// Credentials represents the stored session in credentials.toml.
type Credentials struct {
	Version int      `toml:"version"`
	Session *Session `toml:"session,omitempty"`
}

// Session holds the tokens issued by the hosted auth backend.
type Session struct {
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	SavedAt      time.Time `toml:"saved_at"`
}
