// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
	"time"
)

// VisitScope classifies how far a field visit reaches.
type VisitScope string

const (
	ScopeLocal         VisitScope = "LOCAL"
	ScopeNational      VisitScope = "NATIONAL"
	ScopeInternational VisitScope = "INTERNATIONAL"
)

// Valid reports whether s is a known scope.
func (s VisitScope) Valid() bool {
	switch s {
	case ScopeLocal, ScopeNational, ScopeInternational:
		return true
	}
	return false
}

// FieldVisit is a scored academic-service visit.
type FieldVisit struct {
	ID           string     `json:"id" yaml:"id"`
	ResearcherID string     `json:"researcher_id" yaml:"researcher_id"`
	Title        string     `json:"title" yaml:"title"`
	Destination  string     `json:"destination" yaml:"destination"`
	Scope        VisitScope `json:"scope" yaml:"scope"`
	Purpose      string     `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	StartDate    Date       `json:"start_date" yaml:"start_date"`
	EndDate      Date       `json:"end_date" yaml:"end_date"`
	Notes        string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Points       int        `json:"points" yaml:"points"`
	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" yaml:"updated_at"`
}

// FieldVisitInput holds the client-editable fields of a field visit. A zero
// EndDate means a single-day visit.
type FieldVisitInput struct {
	Title       string     `json:"title"`
	Destination string     `json:"destination"`
	Scope       VisitScope `json:"scope"`
	Purpose     string     `json:"purpose"`
	StartDate   Date       `json:"start_date"`
	EndDate     Date       `json:"end_date"`
	Notes       string     `json:"notes"`
}

// Duration is an inclusive calendar span between two dates.
type Duration struct {
	TotalDays int `json:"total_days" yaml:"total_days"`
	Years     int `json:"years" yaml:"years"`
	Months    int `json:"months" yaml:"months"`
	Days      int `json:"days" yaml:"days"`
}

// String renders d as e.g. "1 year 2 months 3 days", omitting zero parts.
func (d Duration) String() string {
	var parts []string
	add := func(n int, unit string) {
		if n == 0 {
			return
		}
		if n != 1 {
			unit += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, unit))
	}
	add(d.Years, "year")
	add(d.Months, "month")
	add(d.Days, "day")
	if len(parts) == 0 {
		return "0 days"
	}
	return strings.Join(parts, " ")
}

// Volunteering is a scored volunteering activity. A nil EndDate marks it
// as ongoing.
type Volunteering struct {
	ID           string    `json:"id" yaml:"id"`
	ResearcherID string    `json:"researcher_id" yaml:"researcher_id"`
	Title        string    `json:"title" yaml:"title"`
	Organization string    `json:"organization" yaml:"organization"`
	Role         string    `json:"role,omitempty" yaml:"role,omitempty"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	StartDate    Date      `json:"start_date" yaml:"start_date"`
	EndDate      *Date     `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Hours        int       `json:"hours" yaml:"hours"`
	Ongoing      bool      `json:"ongoing" yaml:"ongoing"`
	Duration     Duration  `json:"duration" yaml:"duration"`
	Points       int       `json:"points" yaml:"points"`
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" yaml:"updated_at"`
}

// VolunteeringInput holds the client-editable fields of a volunteering record.
type VolunteeringInput struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	Role         string `json:"role"`
	Description  string `json:"description"`
	StartDate    Date   `json:"start_date"`
	EndDate      *Date  `json:"end_date"`
	Hours        int    `json:"hours"`
}

// ActivitySummary totals a researcher's activities.
type ActivitySummary struct {
	FieldVisits        int `json:"field_visits" yaml:"field_visits"`
	Volunteering       int `json:"volunteering" yaml:"volunteering"`
	FieldVisitPoints   int `json:"field_visit_points" yaml:"field_visit_points"`
	VolunteeringPoints int `json:"volunteering_points" yaml:"volunteering_points"`
	TotalPoints        int `json:"total_points" yaml:"total_points"`
	VolunteeringDays   int `json:"volunteering_days" yaml:"volunteering_days"`
}
