package main

import "time"

// Config is the container for app configuration
type Config struct {
	// Provider - which backend to query: github, gitee, gitcode or cnb
	Provider string `default:"github"`

	// Token - API token for the selected provider (optional, rate limit is lower without it)
	Token string `default:""`

	// Proxy - outbound proxy url, http or socks5 (optional)
	Proxy string `default:""`

	// Login - user login to look up; when empty the token's own profile is fetched
	Login string `default:""`

	// Repo - repository to look up as owner/name (optional)
	Repo string `default:""`

	// WithContribution - also fetch the user's contribution calendar
	WithContribution bool `default:"false"`

	// APIRateLimit - max frequency for outbound provider api calls
	APIRateLimit float64 `default:"0.5"`

	// RequestTimeout - timeout for a single lookup
	RequestTimeout time.Duration `default:"30s"`

	// LogLevel - logrus level name
	LogLevel string `default:"info"`
}
