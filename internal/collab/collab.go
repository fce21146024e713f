// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collab manages collaboration projects: membership, join
// requests, and researcher suggestions.
package collab

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/internal/research"
	"github.com/pdiddy/research-portal/pkg/types"
)

// Store is the persistence the collaboration service needs.
type Store interface {
	CreateProject(ctx context.Context, p *types.Project) error
	UpdateProject(ctx context.Context, p *types.Project) error
	DeleteProject(ctx context.Context, id string) error
	GetProject(ctx context.Context, id string) (types.Project, error)
	ListProjects(ctx context.Context, f types.ProjectFilter) (types.Page[types.Project], error)

	Members(ctx context.Context, projectID string) ([]types.Member, error)
	MemberIDs(ctx context.Context, projectID string) ([]string, error)
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
	RemoveMember(ctx context.Context, projectID, userID string) error

	CreateJoinRequest(ctx context.Context, r *types.JoinRequest) error
	GetJoinRequest(ctx context.Context, id string) (types.JoinRequest, error)
	ListJoinRequests(ctx context.Context, projectID, userID string, status types.JoinStatus) ([]types.JoinRequest, error)
	ResolveJoinRequest(ctx context.Context, id string, status types.JoinStatus) (types.JoinRequest, error)

	CandidateProfiles(ctx context.Context, exclude []string, pendingProjectID string) ([]types.CandidateProfile, error)
}

// Service applies collaboration rules on top of a Store.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService returns a Service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// CreateProject validates in and creates a project owned by the actor.
func (s *Service) CreateProject(ctx context.Context, actor types.Actor, in types.ProjectInput) (types.Project, error) {
	p := types.Project{OwnerID: actor.UserID}
	if in.Status == "" {
		in.Status = types.ProjectOpen
	}
	if err := apply(&p, in); err != nil {
		return types.Project{}, err
	}
	if err := s.store.CreateProject(ctx, &p); err != nil {
		return types.Project{}, fmt.Errorf("creating project: %w", err)
	}
	s.logger.Info("project created", zap.String("id", p.ID), zap.String("owner", p.OwnerID))
	return p, nil
}

// GetProject returns one project with its member count.
func (s *Service) GetProject(ctx context.Context, id string) (types.Project, error) {
	return s.store.GetProject(ctx, id)
}

// UpdateProject replaces the fields of a project the actor owns, or any
// project for an admin. MaxMembers may not drop below the current count.
func (s *Service) UpdateProject(ctx context.Context, actor types.Actor, id string, in types.ProjectInput) (types.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return types.Project{}, err
	}
	if !actor.CanModify(p.OwnerID) {
		return types.Project{}, apperr.Forbidden("only the project owner can change this project")
	}
	if in.Status == "" {
		in.Status = p.Status
	}
	if err := apply(&p, in); err != nil {
		return types.Project{}, err
	}
	if p.MaxMembers > 0 && p.MaxMembers < p.MemberCount {
		var v apperr.Validation
		v.Add("max_members", fmt.Sprintf("project already has %d members", p.MemberCount))
		return types.Project{}, v.Err()
	}
	if err := s.store.UpdateProject(ctx, &p); err != nil {
		return types.Project{}, fmt.Errorf("updating project: %w", err)
	}
	return p, nil
}

// DeleteProject removes a project the actor owns.
func (s *Service) DeleteProject(ctx context.Context, actor types.Actor, id string) error {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(p.OwnerID) {
		return apperr.Forbidden("only the project owner can delete this project")
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", zap.String("id", id), zap.String("by", actor.UserID))
	return nil
}

// ListProjects returns one page of projects matching f.
func (s *Service) ListProjects(ctx context.Context, f types.ProjectFilter) (types.Page[types.Project], error) {
	if f.Status != "" && !f.Status.Valid() {
		var v apperr.Validation
		v.Add("status", "unknown project status")
		return types.Page[types.Project]{}, v.Err()
	}
	return s.store.ListProjects(ctx, f)
}

// Members returns the members of a project, owner first.
func (s *Service) Members(ctx context.Context, projectID string) ([]types.Member, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.Members(ctx, projectID)
}

// LeaveProject removes the actor from a project. Owners cannot leave.
func (s *Service) LeaveProject(ctx context.Context, actor types.Actor, projectID string) error {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID == actor.UserID {
		return apperr.Conflict("the project owner cannot leave the project")
	}
	return s.store.RemoveMember(ctx, projectID, actor.UserID)
}

// RemoveMember removes userID from a project the actor owns. The owner
// cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, actor types.Actor, projectID, userID string) error {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if !actor.CanModify(p.OwnerID) {
		return apperr.Forbidden("only the project owner can remove members")
	}
	if userID == p.OwnerID {
		return apperr.Forbidden("the project owner cannot be removed")
	}
	if err := s.store.RemoveMember(ctx, projectID, userID); err != nil {
		return err
	}
	s.logger.Info("member removed", zap.String("project", projectID), zap.String("user", userID), zap.String("by", actor.UserID))
	return nil
}

func apply(p *types.Project, in types.ProjectInput) error {
	var v apperr.Validation
	title := strings.Join(strings.Fields(in.Title), " ")
	field := strings.Join(strings.Fields(in.Field), " ")
	v.Check(title != "", "title", "title is required")
	v.Check(field != "", "field", "research field is required")
	v.Check(in.Status.Valid(), "status", "unknown project status")
	v.Check(in.MaxMembers == 0 || in.MaxMembers >= 2, "max_members", "max members must be 0 (unlimited) or at least 2")

	start, end := in.StartDate, in.EndDate
	if start != nil && start.IsZero() {
		start = nil
	}
	if end != nil && end.IsZero() {
		end = nil
	}
	if start != nil && end != nil {
		v.Check(!end.Before(*start), "end_date", "end date must not be before start date")
	}
	if err := v.Err(); err != nil {
		return err
	}

	p.Title = title
	p.Field = field
	p.Description = strings.TrimSpace(in.Description)
	p.Keywords = research.NormalizeKeywords(in.Keywords)
	p.Status = in.Status
	p.MaxMembers = in.MaxMembers
	p.StartDate = start
	p.EndDate = end
	return nil
}
