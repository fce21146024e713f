// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collab

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/pkg/types"
)

// MaxJoinMessageLength caps the note attached to a join request, in bytes.
const MaxJoinMessageLength = 1000

// RequestJoin files a PENDING request by the actor to join projectID.
// The project must be OPEN and not full, and the actor must not be a
// member or already have a pending request.
func (s *Service) RequestJoin(ctx context.Context, actor types.Actor, projectID, message string) (types.JoinRequest, error) {
	message = strings.TrimSpace(message)
	if len(message) > MaxJoinMessageLength {
		var v apperr.Validation
		v.Add("message", "message is too long")
		return types.JoinRequest{}, v.Err()
	}

	r := types.JoinRequest{ProjectID: projectID, UserID: actor.UserID, Message: message}
	if err := s.store.CreateJoinRequest(ctx, &r); err != nil {
		return types.JoinRequest{}, err
	}
	s.logger.Info("join requested", zap.String("project", projectID), zap.String("user", actor.UserID))
	return r, nil
}

// RespondJoinRequest accepts or rejects a PENDING request. Only the project
// owner or an admin may respond; accepting re-checks capacity.
func (s *Service) RespondJoinRequest(ctx context.Context, actor types.Actor, requestID string, accept bool) (types.JoinRequest, error) {
	r, err := s.store.GetJoinRequest(ctx, requestID)
	if err != nil {
		return types.JoinRequest{}, err
	}
	p, err := s.store.GetProject(ctx, r.ProjectID)
	if err != nil {
		return types.JoinRequest{}, err
	}
	if !actor.CanModify(p.OwnerID) {
		return types.JoinRequest{}, apperr.Forbidden("only the project owner can respond to join requests")
	}

	status := types.JoinRejected
	if accept {
		status = types.JoinAccepted
	}
	out, err := s.store.ResolveJoinRequest(ctx, requestID, status)
	if err != nil {
		return types.JoinRequest{}, err
	}
	s.logger.Info("join request resolved",
		zap.String("request", requestID), zap.String("status", string(status)), zap.String("by", actor.UserID))
	return out, nil
}

// CancelJoinRequest withdraws the actor's own PENDING request.
func (s *Service) CancelJoinRequest(ctx context.Context, actor types.Actor, requestID string) (types.JoinRequest, error) {
	r, err := s.store.GetJoinRequest(ctx, requestID)
	if err != nil {
		return types.JoinRequest{}, err
	}
	if r.UserID != actor.UserID {
		return types.JoinRequest{}, apperr.Forbidden("only the requester can cancel a join request")
	}
	return s.store.ResolveJoinRequest(ctx, requestID, types.JoinCancelled)
}

// ListJoinRequests returns requests for a project. The owner and admins
// see every request; anyone else sees only their own.
func (s *Service) ListJoinRequests(ctx context.Context, actor types.Actor, projectID string, status types.JoinStatus) ([]types.JoinRequest, error) {
	if status != "" && !status.Valid() {
		var v apperr.Validation
		v.Add("status", "unknown join request status")
		return nil, v.Err()
	}
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	userID := ""
	if !actor.CanModify(p.OwnerID) {
		userID = actor.UserID
	}
	return s.store.ListJoinRequests(ctx, projectID, userID, status)
}
