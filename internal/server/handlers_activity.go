// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/internal/httputil"
	"github.com/pdiddy/research-portal/pkg/types"
)

// researcherParam returns the researcher_id query parameter, defaulting to
// the caller.
func researcherParam(r *http.Request, user auth.Claims) string {
	if id := query(r, "researcher_id"); id != "" && id != "me" {
		return id
	}
	return user.UserID
}

func (s *Server) handleListFieldVisits(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	out, err := s.svc.Activity.ListFieldVisits(r.Context(), researcherParam(r, user))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleCreateFieldVisit(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in types.FieldVisitInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Activity.CreateFieldVisit(r.Context(), user.Actor(), in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, out)
	return nil
}

func (s *Server) handleGetFieldVisit(w http.ResponseWriter, r *http.Request, _ auth.Claims) error {
	out, err := s.svc.Activity.GetFieldVisit(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleUpdateFieldVisit(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in types.FieldVisitInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Activity.UpdateFieldVisit(r.Context(), user.Actor(), r.PathValue("id"), in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleDeleteFieldVisit(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	if err := s.svc.Activity.DeleteFieldVisit(r.Context(), user.Actor(), r.PathValue("id")); err != nil {
		return err
	}
	noContent(w)
	return nil
}

func (s *Server) handleListVolunteering(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	out, err := s.svc.Activity.ListVolunteering(r.Context(), researcherParam(r, user))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleCreateVolunteering(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in types.VolunteeringInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Activity.CreateVolunteering(r.Context(), user.Actor(), in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, out)
	return nil
}

func (s *Server) handleGetVolunteering(w http.ResponseWriter, r *http.Request, _ auth.Claims) error {
	out, err := s.svc.Activity.GetVolunteering(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleUpdateVolunteering(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in types.VolunteeringInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Activity.UpdateVolunteering(r.Context(), user.Actor(), r.PathValue("id"), in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleDeleteVolunteering(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	if err := s.svc.Activity.DeleteVolunteering(r.Context(), user.Actor(), r.PathValue("id")); err != nil {
		return err
	}
	noContent(w)
	return nil
}

type durationRequest struct {
	StartDate types.Date  `json:"start_date"`
	EndDate   *types.Date `json:"end_date"`
}

type durationResponse struct {
	Duration types.Duration `json:"duration"`
	Text     string         `json:"text"`
	Points   int            `json:"points"`
}

// handleVolunteeringDuration previews the span and points of an unsaved
// volunteering record.
func (s *Server) handleVolunteeringDuration(w http.ResponseWriter, r *http.Request, _ auth.Claims) error {
	var in durationRequest
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	d, points, err := s.svc.Activity.PreviewDuration(in.StartDate, in.EndDate)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, durationResponse{Duration: d, Text: d.String(), Points: points})
	return nil
}
