// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/pkg/types"
)

// Store is the persistence the activity service needs.
type Store interface {
	CreateFieldVisit(ctx context.Context, v *types.FieldVisit) error
	UpdateFieldVisit(ctx context.Context, v *types.FieldVisit) error
	DeleteFieldVisit(ctx context.Context, id string) error
	GetFieldVisit(ctx context.Context, id string) (types.FieldVisit, error)
	ListFieldVisits(ctx context.Context, researcherID string) ([]types.FieldVisit, error)

	CreateVolunteering(ctx context.Context, v *types.Volunteering) error
	UpdateVolunteering(ctx context.Context, v *types.Volunteering) error
	DeleteVolunteering(ctx context.Context, id string) error
	GetVolunteering(ctx context.Context, id string) (types.Volunteering, error)
	ListVolunteering(ctx context.Context, researcherID string) ([]types.Volunteering, error)
}

// Service applies activity rules on top of a Store.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService returns a Service. now supplies "today" for ongoing
// volunteering and future-date checks; nil means time.Now.
func NewService(store Store, logger *zap.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, logger: logger, now: now}
}

func (s *Service) today() types.Date { return types.DateOf(s.now()) }

// --- field visits ---

// CreateFieldVisit validates in, scores it, and stores it for the actor.
func (s *Service) CreateFieldVisit(ctx context.Context, actor types.Actor, in types.FieldVisitInput) (types.FieldVisit, error) {
	v := types.FieldVisit{ResearcherID: actor.UserID}
	if err := s.applyFieldVisit(&v, in); err != nil {
		return types.FieldVisit{}, err
	}
	if err := s.store.CreateFieldVisit(ctx, &v); err != nil {
		return types.FieldVisit{}, fmt.Errorf("creating field visit: %w", err)
	}
	s.logger.Info("field visit created",
		zap.String("id", v.ID), zap.String("researcher", v.ResearcherID), zap.Int("points", v.Points))
	return v, nil
}

// GetFieldVisit returns one visit. Activities are readable by any user.
func (s *Service) GetFieldVisit(ctx context.Context, id string) (types.FieldVisit, error) {
	return s.store.GetFieldVisit(ctx, id)
}

// UpdateFieldVisit replaces a visit owned by the actor, or any visit for
// an admin.
func (s *Service) UpdateFieldVisit(ctx context.Context, actor types.Actor, id string, in types.FieldVisitInput) (types.FieldVisit, error) {
	v, err := s.store.GetFieldVisit(ctx, id)
	if err != nil {
		return types.FieldVisit{}, err
	}
	if !actor.CanModify(v.ResearcherID) {
		return types.FieldVisit{}, apperr.Forbidden("only the owner can change this field visit")
	}
	if err := s.applyFieldVisit(&v, in); err != nil {
		return types.FieldVisit{}, err
	}
	if err := s.store.UpdateFieldVisit(ctx, &v); err != nil {
		return types.FieldVisit{}, fmt.Errorf("updating field visit: %w", err)
	}
	return v, nil
}

// DeleteFieldVisit removes a visit owned by the actor.
func (s *Service) DeleteFieldVisit(ctx context.Context, actor types.Actor, id string) error {
	v, err := s.store.GetFieldVisit(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(v.ResearcherID) {
		return apperr.Forbidden("only the owner can delete this field visit")
	}
	return s.store.DeleteFieldVisit(ctx, id)
}

// ListFieldVisits returns a researcher's visits, latest start first.
func (s *Service) ListFieldVisits(ctx context.Context, researcherID string) ([]types.FieldVisit, error) {
	return s.store.ListFieldVisits(ctx, researcherID)
}

func (s *Service) applyFieldVisit(v *types.FieldVisit, in types.FieldVisitInput) error {
	var val apperr.Validation
	title := strings.TrimSpace(in.Title)
	destination := strings.TrimSpace(in.Destination)
	val.Check(title != "", "title", "title is required")
	val.Check(destination != "", "destination", "destination is required")
	val.Check(in.Scope.Valid(), "scope", "scope must be LOCAL, NATIONAL, or INTERNATIONAL")
	if in.EndDate.IsZero() {
		in.EndDate = in.StartDate
	}
	s.checkDates(&val, in.StartDate, &in.EndDate)
	if err := val.Err(); err != nil {
		return err
	}

	d, err := Between(in.StartDate, in.EndDate)
	if err != nil {
		return err
	}
	v.Title = title
	v.Destination = destination
	v.Scope = in.Scope
	v.Purpose = strings.TrimSpace(in.Purpose)
	v.StartDate = in.StartDate
	v.EndDate = in.EndDate
	v.Notes = strings.TrimSpace(in.Notes)
	v.Points = FieldVisitPoints(in.Scope, d)
	return nil
}

// checkDates records date failures. A nil or zero end is allowed here;
// callers that need an end check for it separately.
func (s *Service) checkDates(val *apperr.Validation, start types.Date, end *types.Date) {
	if start.IsZero() {
		val.Add("start_date", "start date is required")
		return
	}
	val.Check(!start.After(s.today()), "start_date", "start date must not be in the future")
	if end == nil {
		return
	}
	if end.IsZero() {
		val.Add("end_date", "end date is required")
		return
	}
	val.Check(!end.Before(start), "end_date", "end date must not be before start date")
}

// --- volunteering ---

// CreateVolunteering validates in and stores it for the actor.
func (s *Service) CreateVolunteering(ctx context.Context, actor types.Actor, in types.VolunteeringInput) (types.Volunteering, error) {
	v := types.Volunteering{ResearcherID: actor.UserID}
	if err := s.applyVolunteering(&v, in); err != nil {
		return types.Volunteering{}, err
	}
	if err := s.store.CreateVolunteering(ctx, &v); err != nil {
		return types.Volunteering{}, fmt.Errorf("creating volunteering: %w", err)
	}
	s.logger.Info("volunteering created", zap.String("id", v.ID), zap.String("researcher", v.ResearcherID))
	return s.withDerived(v), nil
}

// GetVolunteering returns one record with duration and points computed
// as of today.
func (s *Service) GetVolunteering(ctx context.Context, id string) (types.Volunteering, error) {
	v, err := s.store.GetVolunteering(ctx, id)
	if err != nil {
		return types.Volunteering{}, err
	}
	return s.withDerived(v), nil
}

// UpdateVolunteering replaces a record owned by the actor.
func (s *Service) UpdateVolunteering(ctx context.Context, actor types.Actor, id string, in types.VolunteeringInput) (types.Volunteering, error) {
	v, err := s.store.GetVolunteering(ctx, id)
	if err != nil {
		return types.Volunteering{}, err
	}
	if !actor.CanModify(v.ResearcherID) {
		return types.Volunteering{}, apperr.Forbidden("only the owner can change this volunteering record")
	}
	if err := s.applyVolunteering(&v, in); err != nil {
		return types.Volunteering{}, err
	}
	if err := s.store.UpdateVolunteering(ctx, &v); err != nil {
		return types.Volunteering{}, fmt.Errorf("updating volunteering: %w", err)
	}
	return s.withDerived(v), nil
}

// DeleteVolunteering removes a record owned by the actor.
func (s *Service) DeleteVolunteering(ctx context.Context, actor types.Actor, id string) error {
	v, err := s.store.GetVolunteering(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(v.ResearcherID) {
		return apperr.Forbidden("only the owner can delete this volunteering record")
	}
	return s.store.DeleteVolunteering(ctx, id)
}

// ListVolunteering returns a researcher's records, latest start first.
func (s *Service) ListVolunteering(ctx context.Context, researcherID string) ([]types.Volunteering, error) {
	list, err := s.store.ListVolunteering(ctx, researcherID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = s.withDerived(list[i])
	}
	return list, nil
}

// PreviewDuration computes the span and points of an unsaved record. A nil
// end measures up to today.
func (s *Service) PreviewDuration(start types.Date, end *types.Date) (types.Duration, int, error) {
	stop := s.today()
	if end != nil && !end.IsZero() {
		stop = *end
	}
	d, err := Between(start, stop)
	if err != nil {
		return types.Duration{}, 0, err
	}
	return d, VolunteeringPoints(d), nil
}

func (s *Service) applyVolunteering(v *types.Volunteering, in types.VolunteeringInput) error {
	var val apperr.Validation
	title := strings.TrimSpace(in.Title)
	org := strings.TrimSpace(in.Organization)
	val.Check(title != "", "title", "title is required")
	val.Check(org != "", "organization", "organization is required")
	val.Check(in.Hours >= 0, "hours", "hours must not be negative")
	end := in.EndDate
	if end != nil && end.IsZero() {
		end = nil
	}
	s.checkDates(&val, in.StartDate, end)
	if err := val.Err(); err != nil {
		return err
	}

	v.Title = title
	v.Organization = org
	v.Role = strings.TrimSpace(in.Role)
	v.Description = strings.TrimSpace(in.Description)
	v.StartDate = in.StartDate
	v.EndDate = end
	v.Hours = in.Hours
	return nil
}

// withDerived fills Ongoing, Duration, and Points. Ongoing records are
// measured to today; a start after today yields a zero duration.
func (s *Service) withDerived(v types.Volunteering) types.Volunteering {
	stop := s.today()
	v.Ongoing = v.EndDate == nil
	if !v.Ongoing {
		stop = *v.EndDate
	}
	d, err := Between(v.StartDate, stop)
	if err != nil {
		v.Duration = types.Duration{}
		v.Points = 0
		return v
	}
	v.Duration = d
	v.Points = VolunteeringPoints(d)
	return v
}

// Summary counts a researcher's activities and totals their points.
func (s *Service) Summary(ctx context.Context, researcherID string) (types.ActivitySummary, error) {
	visits, err := s.store.ListFieldVisits(ctx, researcherID)
	if err != nil {
		return types.ActivitySummary{}, fmt.Errorf("listing field visits: %w", err)
	}
	vols, err := s.ListVolunteering(ctx, researcherID)
	if err != nil {
		return types.ActivitySummary{}, fmt.Errorf("listing volunteering: %w", err)
	}
	return Summarize(visits, vols), nil
}

// Summarize totals already-derived activities.
func Summarize(visits []types.FieldVisit, vols []types.Volunteering) types.ActivitySummary {
	sum := types.ActivitySummary{FieldVisits: len(visits), Volunteering: len(vols)}
	for _, v := range visits {
		sum.FieldVisitPoints += v.Points
	}
	for _, v := range vols {
		sum.VolunteeringPoints += v.Points
		sum.VolunteeringDays += v.Duration.TotalDays
	}
	sum.TotalPoints = sum.FieldVisitPoints + sum.VolunteeringPoints
	return sum
}
