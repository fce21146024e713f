// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/internal/httputil"
	"github.com/pdiddy/research-portal/pkg/types"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	out, err := s.svc.Stats.ForResearcher(r.Context(), user.UserID)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleGlobalDashboard(w http.ResponseWriter, r *http.Request, _ auth.Claims) error {
	out, err := s.svc.Stats.Global(r.Context())
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	limit, offset, err := page(r)
	if err != nil {
		return err
	}
	out, err := s.svc.Auth.ListUsers(r.Context(), user.Actor(), types.Role(query(r, "role")), limit, offset)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

type roleRequest struct {
	Role types.Role `json:"role"`
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in roleRequest
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Auth.SetRole(r.Context(), user.Actor(), r.PathValue("id"), in.Role)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

type activeRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in activeRequest
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Auth.SetActive(r.Context(), user.Actor(), r.PathValue("id"), in.Active)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}
