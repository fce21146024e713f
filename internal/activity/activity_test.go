// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package activity

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/internal/store"
	"github.com/pdiddy/research-portal/pkg/types"
)

func d(y int, m time.Month, day int) types.Date { return types.NewDate(y, m, day) }

func TestBetween(t *testing.T) {
	tests := []struct {
		name       string
		start, end types.Date
		want       types.Duration
		text       string
	}{
		{"same day", d(2024, 1, 1), d(2024, 1, 1),
			types.Duration{TotalDays: 1, Days: 1}, "1 day"},
		{"whole january", d(2024, 1, 1), d(2024, 1, 31),
			types.Duration{TotalDays: 31, Months: 1}, "1 month"},
		{"month end clamp", d(2024, 1, 31), d(2024, 2, 28),
			types.Duration{TotalDays: 29, Days: 29}, "29 days"},
		{"month end into leap day", d(2024, 1, 31), d(2024, 2, 29),
			types.Duration{TotalDays: 30, Months: 1, Days: 1}, "1 month 1 day"},
		{"full year", d(2023, 6, 1), d(2024, 5, 31),
			types.Duration{TotalDays: 366, Years: 1}, "1 year"},
		{"mixed", d(2022, 3, 10), d(2023, 5, 12),
			types.Duration{TotalDays: 429, Years: 1, Months: 2, Days: 3}, "1 year 2 months 3 days"},
		{"across year end", d(2023, 12, 15), d(2024, 1, 14),
			types.Duration{TotalDays: 31, Months: 1}, "1 month"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Between(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.text, got.String())
		})
	}
}

func TestBetweenRejectsReversedDates(t *testing.T) {
	_, err := Between(d(2024, 2, 1), d(2024, 1, 31))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
	assert.Contains(t, apperr.FieldsOf(err), "end_date")

	_, err = Between(types.Date{}, d(2024, 1, 31))
	assert.Contains(t, apperr.FieldsOf(err), "start_date")
}

func TestDurationStringZero(t *testing.T) {
	assert.Equal(t, "0 days", types.Duration{}.String())
	assert.Equal(t, "2 years 1 month", types.Duration{Years: 2, Months: 1}.String())
}

func TestFieldVisitPoints(t *testing.T) {
	tests := []struct {
		scope types.VisitScope
		days  int
		want  int
	}{
		{types.ScopeLocal, 1, 5},
		{types.ScopeLocal, 3, 7},
		{types.ScopeNational, 1, 10},
		{types.ScopeInternational, 5, 24},
		{types.ScopeInternational, 40, 30},
		{types.VisitScope("ORBITAL"), 3, 0},
	}
	for _, tt := range tests {
		got := FieldVisitPoints(tt.scope, types.Duration{TotalDays: tt.days})
		assert.Equal(t, tt.want, got, "%s over %d days", tt.scope, tt.days)
	}
}

func TestVolunteeringPoints(t *testing.T) {
	tests := []struct {
		days int
		want int
	}{
		{1, 1},
		{29, 1},
		{30, 2},
		{95, 6},
		{365, 24},
		{2000, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, VolunteeringPoints(types.Duration{TotalDays: tt.days}), "%d days", tt.days)
	}
}

// --- service ---

var fixedNow = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func testService(t *testing.T) (*Service, types.User) {
	t.Helper()
	st, err := store.Open(types.DatabaseConfig{Path: filepath.Join(t.TempDir(), "portal.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	u := types.User{Email: "r@uni.example", FullName: "Rana", Role: types.RoleResearcher, Active: true, PasswordHash: "x"}
	require.NoError(t, st.CreateUser(context.Background(), &u))
	return NewService(st, nil, func() time.Time { return fixedNow }), u
}

func TestFieldVisitLifecycle(t *testing.T) {
	svc, u := testService(t)
	ctx := context.Background()
	owner := types.Actor{UserID: u.ID, Role: types.RoleResearcher}

	v, err := svc.CreateFieldVisit(ctx, owner, types.FieldVisitInput{
		Title: " Dam survey ", Destination: "Mosul", Scope: types.ScopeNational,
		StartDate: d(2024, 4, 1), EndDate: d(2024, 4, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dam survey", v.Title)
	assert.Equal(t, 12, v.Points)

	stranger := types.Actor{UserID: "someone-else", Role: types.RoleResearcher}
	_, err = svc.UpdateFieldVisit(ctx, stranger, v.ID, types.FieldVisitInput{})
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	admin := types.Actor{UserID: "admin", Role: types.RoleAdmin}
	v, err = svc.UpdateFieldVisit(ctx, admin, v.ID, types.FieldVisitInput{
		Title: "Dam survey", Destination: "Erbil", Scope: types.ScopeInternational,
		StartDate: d(2024, 4, 1), EndDate: d(2024, 4, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, 20, v.Points)
	assert.Equal(t, u.ID, v.ResearcherID)

	assert.True(t, errors.Is(svc.DeleteFieldVisit(ctx, stranger, v.ID), apperr.ErrForbidden))
	require.NoError(t, svc.DeleteFieldVisit(ctx, owner, v.ID))
}

func TestFieldVisitSingleDay(t *testing.T) {
	svc, u := testService(t)
	v, err := svc.CreateFieldVisit(context.Background(), types.Actor{UserID: u.ID}, types.FieldVisitInput{
		Title: "Day trip", Destination: "Basra", Scope: types.ScopeLocal,
		StartDate: d(2024, 4, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, d(2024, 4, 1), v.EndDate)
	assert.Equal(t, 5, v.Points)
}

func TestFieldVisitValidation(t *testing.T) {
	svc, u := testService(t)
	_, err := svc.CreateFieldVisit(context.Background(), types.Actor{UserID: u.ID}, types.FieldVisitInput{
		Scope:     "NOWHERE",
		StartDate: d(2024, 7, 2),
		EndDate:   d(2024, 7, 1),
	})
	require.Error(t, err)
	fields := apperr.FieldsOf(err)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "destination")
	assert.Contains(t, fields, "scope")
	assert.Equal(t, "start date must not be in the future", fields["start_date"])
	assert.Contains(t, fields, "end_date")
}

func TestVolunteeringOngoingMeasuredToToday(t *testing.T) {
	svc, u := testService(t)
	ctx := context.Background()
	actor := types.Actor{UserID: u.ID, Role: types.RoleResearcher}

	ongoing, err := svc.CreateVolunteering(ctx, actor, types.VolunteeringInput{
		Title: "Literacy classes", Organization: "Red Crescent", StartDate: d(2024, 1, 1), Hours: 40,
	})
	require.NoError(t, err)
	assert.True(t, ongoing.Ongoing)
	// 2024-01-01 through 2024-06-30 inclusive.
	assert.Equal(t, types.Duration{TotalDays: 182, Months: 6}, ongoing.Duration)
	assert.Equal(t, 12, ongoing.Points)

	end := d(2024, 1, 10)
	finished, err := svc.CreateVolunteering(ctx, actor, types.VolunteeringInput{
		Title: "Blood drive", Organization: "Hospital", StartDate: d(2024, 1, 1), EndDate: &end,
	})
	require.NoError(t, err)
	assert.False(t, finished.Ongoing)
	assert.Equal(t, 10, finished.Duration.TotalDays)
	assert.Equal(t, 1, finished.Points)

	list, err := svc.ListVolunteering(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	sum, err := svc.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ActivitySummary{
		Volunteering:       2,
		VolunteeringPoints: 13,
		TotalPoints:        13,
		VolunteeringDays:   192,
	}, sum)
}

func TestVolunteeringValidation(t *testing.T) {
	svc, u := testService(t)
	end := d(2023, 12, 31)
	_, err := svc.CreateVolunteering(context.Background(), types.Actor{UserID: u.ID}, types.VolunteeringInput{
		StartDate: d(2024, 1, 1), EndDate: &end, Hours: -1,
	})
	fields := apperr.FieldsOf(err)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "organization")
	assert.Contains(t, fields, "hours")
	assert.Contains(t, fields, "end_date")
}

func TestPreviewDuration(t *testing.T) {
	svc, _ := testService(t)

	got, points, err := svc.PreviewDuration(d(2024, 6, 1), nil)
	require.NoError(t, err)
	assert.Equal(t, types.Duration{TotalDays: 30, Months: 1}, got)
	assert.Equal(t, 2, points)

	end := d(2024, 5, 1)
	_, _, err = svc.PreviewDuration(d(2024, 6, 1), &end)
	assert.True(t, errors.Is(err, apperr.ErrInvalid))
}
