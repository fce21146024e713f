// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/research-portal/internal/secrets"
	"github.com/pdiddy/research-portal/pkg/types"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("database.path", "data/portal.db")

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "research-portal")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.cookie_name", "portal_session")
	v.SetDefault("auth.cookie_secure", false)

	v.SetDefault("storage.dir", "data/uploads")
	v.SetDefault("storage.max_upload_bytes", int64(10<<20))

	v.SetDefault("lookup.enabled", true)
	v.SetDefault("lookup.base_url", "https://api.openalex.org")
	v.SetDefault("lookup.timeout", 20*time.Second)
	v.SetDefault("lookup.user_agent", "research-portal/0.1")
	v.SetDefault("lookup.email", "")
	v.SetDefault("lookup.max_retries", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// loadConfig unmarshals viper settings and applies secrets on top.
func loadConfig(v *viper.Viper, s secrets.Secrets) (types.PortalConfig, error) {
	var cfg types.PortalConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	cfg.Auth.Secret = s.Or(secrets.KeyJWTSecret, cfg.Auth.Secret)
	cfg.Lookup.Email = s.Or(secrets.KeyOpenAlexEmail, cfg.Lookup.Email)
	return cfg, nil
}

// configLog reads the log section before the full config is loaded.
func configLog() types.LogConfig {
	return types.LogConfig{
		Level:  viper.GetString("log.level"),
		Format: viper.GetString("log.format"),
	}
}
