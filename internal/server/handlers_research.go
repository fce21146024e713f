// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/internal/httputil"
	"github.com/pdiddy/research-portal/pkg/types"
)

// handleListResearch lists research records. researcher_id=me narrows to
// the caller's own records.
func (s *Server) handleListResearch(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	year, err := queryInt(r, "year")
	if err != nil {
		return err
	}
	limit, offset, err := page(r)
	if err != nil {
		return err
	}
	f := types.ResearchFilter{
		ResearcherID: query(r, "researcher_id"),
		Type:         types.ResearchType(query(r, "type")),
		Status:       types.ResearchStatus(query(r, "status")),
		Year:         year,
		Indexed:      types.IndexFilter(query(r, "indexed")),
		Query:        query(r, "q"),
		Limit:        limit,
		Offset:       offset,
	}
	if f.ResearcherID == "me" {
		f.ResearcherID = user.UserID
	}
	out, err := s.svc.Research.List(r.Context(), f)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleCreateResearch(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in types.ResearchInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Research.Create(r.Context(), user.Actor(), in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, out)
	return nil
}

type lookupRequest struct {
	DOI string `json:"doi"`
}

// handleLookupResearch returns a pre-filled record for a DOI; nothing is
// stored.
func (s *Server) handleLookupResearch(w http.ResponseWriter, r *http.Request, _ auth.Claims) error {
	var in lookupRequest
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Research.ImportDOI(r.Context(), in.DOI)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleGetResearch(w http.ResponseWriter, r *http.Request, _ auth.Claims) error {
	out, err := s.svc.Research.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleUpdateResearch(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in types.ResearchInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.Research.Update(r.Context(), user.Actor(), r.PathValue("id"), in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleDeleteResearch(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	if err := s.svc.Research.Delete(r.Context(), user.Actor(), r.PathValue("id")); err != nil {
		return err
	}
	noContent(w)
	return nil
}
