// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StatsScope names whose data a dashboard covers.
type StatsScope string

const (
	ScopeResearcher StatsScope = "researcher"
	ScopeGlobal     StatsScope = "global"
)

// YearCount is the number of publications in one year.
type YearCount struct {
	Year  int `json:"year" yaml:"year"`
	Count int `json:"count" yaml:"count"`
}

// ResearchStats aggregates research records.
type ResearchStats struct {
	Total           int                    `json:"total" yaml:"total"`
	ByStatus        map[ResearchStatus]int `json:"by_status" yaml:"by_status"`
	ByType          map[ResearchType]int   `json:"by_type" yaml:"by_type"`
	ByYear          []YearCount            `json:"by_year" yaml:"by_year"`
	Scopus          int                    `json:"scopus" yaml:"scopus"`
	ISI             int                    `json:"isi" yaml:"isi"`
	ScopusQuartiles map[Quartile]int       `json:"scopus_quartiles" yaml:"scopus_quartiles"`
	ISIQuartiles    map[Quartile]int       `json:"isi_quartiles" yaml:"isi_quartiles"`
	AvgImpactFactor float64                `json:"avg_impact_factor" yaml:"avg_impact_factor"`
}

// ProjectStats aggregates collaboration projects.
type ProjectStats struct {
	Owned           int `json:"owned" yaml:"owned"`
	Member          int `json:"member" yaml:"member"`
	Open            int `json:"open" yaml:"open"`
	PendingRequests int `json:"pending_requests" yaml:"pending_requests"`
}

// ResearcherStats counts accounts; global dashboards only.
type ResearcherStats struct {
	Active int `json:"active" yaml:"active"`
	Total  int `json:"total" yaml:"total"`
}

// TopResearcher is one row of the global leaderboard.
type TopResearcher struct {
	ID           string `json:"id" yaml:"id"`
	FullName     string `json:"full_name" yaml:"full_name"`
	Publications int    `json:"publications" yaml:"publications"`
	Points       int    `json:"points" yaml:"points"`
}

// Dashboard is the statistics view for a researcher or the whole portal.
type Dashboard struct {
	Scope          StatsScope       `json:"scope" yaml:"scope"`
	ResearcherID   string           `json:"researcher_id,omitempty" yaml:"researcher_id,omitempty"`
	Research       ResearchStats    `json:"research" yaml:"research"`
	Activities     ActivitySummary  `json:"activities" yaml:"activities"`
	Projects       ProjectStats     `json:"projects" yaml:"projects"`
	Researchers    *ResearcherStats `json:"researchers,omitempty" yaml:"researchers,omitempty"`
	TopResearchers []TopResearcher  `json:"top_researchers,omitempty" yaml:"top_researchers,omitempty"`
}
