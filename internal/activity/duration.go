// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package activity manages field visits and volunteering: validation,
// calendar duration arithmetic, and activity points.
package activity

import (
	"time"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/pkg/types"
)

// Between returns the inclusive calendar span from start to end. Whole
// months are counted from the start day, clamped to shorter month ends;
// the remainder is days.
func Between(start, end types.Date) (types.Duration, error) {
	var v apperr.Validation
	v.Check(!start.IsZero(), "start_date", "start date is required")
	v.Check(!end.IsZero(), "end_date", "end date is required")
	if err := v.Err(); err != nil {
		return types.Duration{}, err
	}
	if end.Before(start) {
		v.Add("end_date", "end date must not be before start date")
		return types.Duration{}, v.Err()
	}

	after := end.AddDays(1)
	months := (after.Year()-start.Year())*12 + int(after.Month()-start.Month())
	if after.Day() < start.Day() {
		months--
	}
	anchor := addMonths(start, months)

	return types.Duration{
		TotalDays: daysBetween(start, after),
		Years:     months / 12,
		Months:    months % 12,
		Days:      daysBetween(anchor, after),
	}, nil
}

// addMonths moves d forward n months, clamping the day to the target
// month's last day.
func addMonths(d types.Date, n int) types.Date {
	y, m := d.Year(), int(d.Month())-1+n
	y += m / 12
	m = m%12 + 1
	day := d.Day()
	if last := daysIn(y, time.Month(m)); day > last {
		day = last
	}
	return types.NewDate(y, time.Month(m), day)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func daysBetween(from, to types.Date) int {
	return int(to.Sub(from.Time).Hours() / 24)
}
