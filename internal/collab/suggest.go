// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collab

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pdiddy/research-portal/internal/research"
	"github.com/pdiddy/research-portal/pkg/types"
)

// Score weights. They sum to 1 so scores fall in 0..100.
const (
	WeightKeywords     = 0.40
	WeightField        = 0.25
	WeightPublications = 0.15
	WeightIndexed      = 0.20
)

// Suggestion limits.
const (
	DefaultSuggestions = 10
	MaxSuggestions     = 50
)

// signals are the raw per-candidate inputs to the score.
type signals struct {
	profile      types.CandidateProfile
	matched      []string
	fieldMatch   bool
	publications int
	indexed      int
}

// SuggestResearchers ranks active researchers outside projectID by fit:
// shared keywords, field match, publication count, and indexed weight.
// Count signals are normalised by the best candidate so scores are
// relative to the current pool.
func (s *Service) SuggestResearchers(ctx context.Context, projectID string, limit int) ([]types.SuggestedResearcher, error) {
	if limit <= 0 {
		limit = DefaultSuggestions
	}
	if limit > MaxSuggestions {
		limit = MaxSuggestions
	}

	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.MemberIDs(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}
	candidates, err := s.store.CandidateProfiles(ctx, append(members, p.OwnerID), projectID)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	return rank(p, candidates, limit), nil
}

// rank scores candidates against p and returns the best limit of them.
func rank(p types.Project, candidates []types.CandidateProfile, limit int) []types.SuggestedResearcher {
	projectKeywords := research.NormalizeKeywords(p.Keywords)
	field := research.FoldKeyword(p.Field)

	all := make([]signals, 0, len(candidates))
	var maxKeywords, maxPublications, maxIndexed int
	for _, c := range candidates {
		sig := signals{
			profile:      c,
			matched:      matchKeywords(projectKeywords, c),
			fieldMatch:   fieldMatches(field, c.User),
			publications: c.Publications,
			indexed:      c.IndexedWeight,
		}
		maxKeywords = max(maxKeywords, len(sig.matched))
		maxPublications = max(maxPublications, sig.publications)
		maxIndexed = max(maxIndexed, sig.indexed)
		all = append(all, sig)
	}

	out := []types.SuggestedResearcher{}
	for _, sig := range all {
		var fieldScore float64
		if sig.fieldMatch {
			fieldScore = 1
		}
		raw := WeightKeywords*ratio(len(sig.matched), maxKeywords) +
			WeightField*fieldScore +
			WeightPublications*ratio(sig.publications, maxPublications) +
			WeightIndexed*ratio(sig.indexed, maxIndexed)
		score := math.Round(raw*100*100) / 100
		if score <= 0 {
			continue
		}

		u := sig.profile.User
		out = append(out, types.SuggestedResearcher{
			UserID:          u.ID,
			FullName:        u.FullName,
			Department:      u.Department,
			Specialization:  u.Specialization,
			Score:           score,
			MatchedKeywords: sig.matched,
			FieldMatch:      sig.fieldMatch,
			Publications:    sig.publications,
			IndexedWeight:   sig.indexed,
			PendingRequest:  sig.profile.PendingRequest,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// matchKeywords returns the project keywords found in the candidate's
// interests or research keywords, in project order.
func matchKeywords(projectKeywords []string, c types.CandidateProfile) []string {
	have := make(map[string]bool, len(c.User.Interests)+len(c.ResearchKeywords))
	for _, k := range c.User.Interests {
		have[research.FoldKeyword(k)] = true
	}
	for _, k := range c.ResearchKeywords {
		have[research.FoldKeyword(k)] = true
	}
	matched := []string{}
	for _, k := range projectKeywords {
		if have[k] {
			matched = append(matched, k)
		}
	}
	return matched
}

// fieldMatches reports whether the folded project field equals or is
// contained in the candidate's specialization or department.
func fieldMatches(field string, u types.User) bool {
	if field == "" {
		return false
	}
	for _, s := range []string{u.Specialization, u.Department} {
		if f := research.FoldKeyword(s); f != "" && strings.Contains(f, field) {
			return true
		}
	}
	return false
}

func ratio(n, maximum int) float64 {
	if maximum == 0 {
		return 0
	}
	return float64(n) / float64(maximum)
}
