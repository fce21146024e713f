// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package activity

import "github.com/pdiddy/research-portal/pkg/types"

// Point tables.
const (
	LocalVisitPoints         = 5
	NationalVisitPoints      = 10
	InternationalVisitPoints = 20

	// MaxExtraDayPoints caps the per-day bonus of a single visit.
	MaxExtraDayPoints = 10

	volunteeringPointsPerPeriod = 2
	volunteeringPeriodDays      = 30
	minVolunteeringPoints       = 1
	maxVolunteeringPoints       = 24
)

// FieldVisitPoints scores a visit: a base by scope plus one point per day
// after the first, the bonus capped at MaxExtraDayPoints.
func FieldVisitPoints(scope types.VisitScope, d types.Duration) int {
	var base int
	switch scope {
	case types.ScopeLocal:
		base = LocalVisitPoints
	case types.ScopeNational:
		base = NationalVisitPoints
	case types.ScopeInternational:
		base = InternationalVisitPoints
	default:
		return 0
	}
	extra := d.TotalDays - 1
	if extra < 0 {
		extra = 0
	}
	if extra > MaxExtraDayPoints {
		extra = MaxExtraDayPoints
	}
	return base + extra
}

// VolunteeringPoints awards 2 points per full 30 days, at least 1 and at
// most 24.
func VolunteeringPoints(d types.Duration) int {
	p := d.TotalDays / volunteeringPeriodDays * volunteeringPointsPerPeriod
	if p < minVolunteeringPoints {
		p = minVolunteeringPoints
	}
	if p > maxVolunteeringPoints {
		p = maxVolunteeringPoints
	}
	return p
}
