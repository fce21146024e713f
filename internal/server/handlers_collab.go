// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/internal/httputil"
	"github.com/pdiddy/research-portal/pkg/types"
)

// handleListProjects lists projects. member=me narrows to projects the
// caller belongs to.
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	limit, offset, err := page(r)
	if err != nil {
		return err
	}
	f := types.ProjectFilter{
		Status:   types.ProjectStatus(query(r, "status")),
		Field:    query(r, "field"),
		Query:    query(r, "q"),
		MemberID: query(r, "member"),
		Limit:    limit,
		Offset:   offset,
	}
	if f.MemberID == "me" {
		f.MemberID = user.UserID
	}
	out, err := s.svc.Collab.ListProjects(r.Context(), f)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in types.ProjectInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Collab.CreateProject(r.Context(), user.Actor(), in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, out)
	return nil
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request, _ auth.Claims) error {
	out, err := s.svc.Collab.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in types.ProjectInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Collab.UpdateProject(r.Context(), user.Actor(), r.PathValue("id"), in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	if err := s.svc.Collab.DeleteProject(r.Context(), user.Actor(), r.PathValue("id")); err != nil {
		return err
	}
	noContent(w)
	return nil
}

func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request, _ auth.Claims) error {
	out, err := s.svc.Collab.Members(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	if err := s.svc.Collab.RemoveMember(r.Context(), user.Actor(), r.PathValue("id"), r.PathValue("userID")); err != nil {
		return err
	}
	noContent(w)
	return nil
}

func (s *Server) handleLeaveProject(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	if err := s.svc.Collab.LeaveProject(r.Context(), user.Actor(), r.PathValue("id")); err != nil {
		return err
	}
	noContent(w)
	return nil
}

// handleSuggestions ranks researchers for a project. Only the owner and
// admins see suggestions.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return err
	}
	p, err := s.svc.Collab.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	if !user.Actor().CanModify(p.OwnerID) {
		return apperr.Forbidden("only the project owner can see suggestions")
	}
	out, err := s.svc.Collab.SuggestResearchers(r.Context(), p.ID, limit)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleListJoinRequests(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	out, err := s.svc.Collab.ListJoinRequests(r.Context(), user.Actor(), r.PathValue("id"), types.JoinStatus(query(r, "status")))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

type joinRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleRequestJoin(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in joinRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(w, r, &in); err != nil {
			return err
		}
	}
	out, err := s.svc.Collab.RequestJoin(r.Context(), user.Actor(), r.PathValue("id"), in.Message)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, out)
	return nil
}

func (s *Server) handleRespondJoin(accept bool) userHandler {
	return func(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
		out, err := s.svc.Collab.RespondJoinRequest(r.Context(), user.Actor(), r.PathValue("id"), accept)
		if err != nil {
			return err
		}
		httputil.WriteJSON(w, http.StatusOK, out)
		return nil
	}
}

func (s *Server) handleCancelJoin(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	out, err := s.svc.Collab.CancelJoinRequest(r.Context(), user.Actor(), r.PathValue("id"))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}
