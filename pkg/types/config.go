// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	// Path is the SQLite database file (default "data/portal.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	// Secret signs session tokens. Loaded from .secrets/jwt-secret when present.
	Secret string `json:"-" yaml:"-" mapstructure:"secret"`

	Issuer       string        `json:"issuer" yaml:"issuer" mapstructure:"issuer"`
	TokenTTL     time.Duration `json:"token_ttl" yaml:"token_ttl" mapstructure:"token_ttl"`
	CookieName   string        `json:"cookie_name" yaml:"cookie_name" mapstructure:"cookie_name"`
	CookieSecure bool          `json:"cookie_secure" yaml:"cookie_secure" mapstructure:"cookie_secure"`
}

// StorageConfig holds settings for uploaded files.
type StorageConfig struct {
	// Dir is the base directory for uploads (contains cv/).
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxUploadBytes caps a single upload (default 10 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// LookupConfig holds settings for DOI metadata lookup.
type LookupConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// BaseURL is the OpenAlex API root (default "https://api.openalex.org").
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	Timeout   time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	UserAgent string        `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// Email is sent as the mailto parameter for OpenAlex polite-pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// MaxRetries bounds retries on HTTP 429 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is json or console.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PortalConfig groups all configuration sections.
type PortalConfig struct {
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Database DatabaseConfig `json:"database" yaml:"database" mapstructure:"database"`
	Auth     AuthConfig     `json:"auth" yaml:"auth" mapstructure:"auth"`
	Storage  StorageConfig  `json:"storage" yaml:"storage" mapstructure:"storage"`
	Lookup   LookupConfig   `json:"lookup" yaml:"lookup" mapstructure:"lookup"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}
