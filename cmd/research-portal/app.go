// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/activity"
	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/internal/collab"
	"github.com/pdiddy/research-portal/internal/cv"
	"github.com/pdiddy/research-portal/internal/lookup"
	"github.com/pdiddy/research-portal/internal/research"
	"github.com/pdiddy/research-portal/internal/server"
	"github.com/pdiddy/research-portal/internal/stats"
	"github.com/pdiddy/research-portal/internal/store"
	"github.com/pdiddy/research-portal/pkg/types"
)

// app wires the store and services for one command run.
type app struct {
	cfg      types.PortalConfig
	store    *store.Store
	auth     *auth.Service
	research *research.Service
	activity *activity.Service
	collab   *collab.Service
	cv       *cv.Service
	stats    *stats.Service
}

// openApp loads config, opens the database, and builds the services. Session
// tokens are only configured when sessions is set; commands that never
// issue tokens run without a signing secret.
func openApp(sessions bool) (*app, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	var tokens *auth.Tokens
	if sessions {
		tokens, err = auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, nil)
		if err != nil {
			st.Close()
			return nil, err
		}
	}

	acts := activity.NewService(st, logger.Named("activity"), nil)
	a := &app{
		cfg:      cfg,
		store:    st,
		auth:     auth.NewService(st, tokens, logger.Named("auth")),
		research: research.NewService(st, lookup.New(cfg.Lookup, logger.Named("lookup")), logger.Named("research"), nil),
		activity: acts,
		collab:   collab.NewService(st, logger.Named("collab")),
		cv:       cv.NewService(st, acts, cfg.Storage, logger.Named("cv"), nil),
		stats:    stats.NewService(st, acts, logger.Named("stats")),
	}
	logger.Debug("database opened", zap.String("path", cfg.Database.Path))
	return a, nil
}

func (a *app) services() server.Services {
	return server.Services{
		Auth:     a.auth,
		Research: a.research,
		Activity: a.activity,
		Collab:   a.collab,
		CV:       a.cv,
		Stats:    a.stats,
		Health:   a.store,
	}
}

func (a *app) Close() error { return a.store.Close() }
