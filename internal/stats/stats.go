// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats assembles dashboard statistics for one researcher or the
// whole portal. Independent aggregations run concurrently.
package stats

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/research-portal/pkg/types"
)

// TopN is the length of the global leaderboard.
const TopN = 5

// leaderboardWorkers bounds concurrent per-researcher point lookups.
const leaderboardWorkers = 4

// Store is the aggregation surface stats needs.
type Store interface {
	ResearchStats(ctx context.Context, researcherID string) (types.ResearchStats, error)
	ProjectStats(ctx context.Context, userID string) (types.ProjectStats, error)
	ResearcherCounts(ctx context.Context) (types.ResearcherStats, error)
	PublicationCounts(ctx context.Context) ([]types.TopResearcher, error)
}

// Activities totals activity points. An empty researcherID covers every
// researcher.
type Activities interface {
	Summary(ctx context.Context, researcherID string) (types.ActivitySummary, error)
}

// Service builds dashboards.
type Service struct {
	store      Store
	activities Activities
	logger     *zap.Logger
}

// NewService returns a Service.
func NewService(store Store, activities Activities, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, activities: activities, logger: logger}
}

// ForResearcher returns the dashboard of one researcher.
func (s *Service) ForResearcher(ctx context.Context, researcherID string) (types.Dashboard, error) {
	d := types.Dashboard{Scope: types.ScopeResearcher, ResearcherID: researcherID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rs, err := s.store.ResearchStats(gctx, researcherID)
		if err != nil {
			return fmt.Errorf("research stats: %w", err)
		}
		d.Research = rs
		return nil
	})
	g.Go(func() error {
		as, err := s.activities.Summary(gctx, researcherID)
		if err != nil {
			return fmt.Errorf("activity stats: %w", err)
		}
		d.Activities = as
		return nil
	})
	g.Go(func() error {
		ps, err := s.store.ProjectStats(gctx, researcherID)
		if err != nil {
			return fmt.Errorf("project stats: %w", err)
		}
		d.Projects = ps
		return nil
	})
	if err := g.Wait(); err != nil {
		return types.Dashboard{}, err
	}
	return d, nil
}

// Global returns the portal-wide dashboard with researcher counts and the
// leaderboard.
func (s *Service) Global(ctx context.Context) (types.Dashboard, error) {
	d := types.Dashboard{Scope: types.ScopeGlobal}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rs, err := s.store.ResearchStats(gctx, "")
		if err != nil {
			return fmt.Errorf("research stats: %w", err)
		}
		d.Research = rs
		return nil
	})
	g.Go(func() error {
		as, err := s.activities.Summary(gctx, "")
		if err != nil {
			return fmt.Errorf("activity stats: %w", err)
		}
		d.Activities = as
		return nil
	})
	g.Go(func() error {
		ps, err := s.store.ProjectStats(gctx, "")
		if err != nil {
			return fmt.Errorf("project stats: %w", err)
		}
		d.Projects = ps
		return nil
	})
	g.Go(func() error {
		rc, err := s.store.ResearcherCounts(gctx)
		if err != nil {
			return fmt.Errorf("researcher counts: %w", err)
		}
		d.Researchers = &rc
		return nil
	})
	g.Go(func() error {
		top, err := s.topResearchers(gctx)
		if err != nil {
			return fmt.Errorf("top researchers: %w", err)
		}
		d.TopResearchers = top
		return nil
	})
	if err := g.Wait(); err != nil {
		return types.Dashboard{}, err
	}
	s.logger.Debug("global dashboard built",
		zap.Int("research", d.Research.Total), zap.Int("top", len(d.TopResearchers)))
	return d, nil
}

// topResearchers ranks active researchers by published records, then by
// activity points. Researchers with neither are left out.
func (s *Service) topResearchers(ctx context.Context) ([]types.TopResearcher, error) {
	all, err := s.store.PublicationCounts(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(leaderboardWorkers)
	for i := range all {
		g.Go(func() error {
			sum, err := s.activities.Summary(gctx, all[i].ID)
			if err != nil {
				return err
			}
			all[i].Points = sum.TotalPoints
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rankTop(all, TopN), nil
}

func rankTop(all []types.TopResearcher, n int) []types.TopResearcher {
	out := []types.TopResearcher{}
	for _, t := range all {
		if t.Publications > 0 || t.Points > 0 {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Publications != b.Publications {
			return a.Publications > b.Publications
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.FullName != b.FullName {
			return a.FullName < b.FullName
		}
		return a.ID < b.ID
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
