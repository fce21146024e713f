// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/internal/cv"
	"github.com/pdiddy/research-portal/internal/httputil"
	"github.com/pdiddy/research-portal/pkg/types"
)

// multipartOverhead is the room left for multipart headers and boundaries
// on top of the upload size limit.
const multipartOverhead = 64 << 10

func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	out, err := s.svc.CV.Get(r.Context(), user.UserID)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (s *Server) handleSaveCV(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in types.CV
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	out, err := s.svc.CV.Save(r.Context(), user.Actor(), in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, out)
	return nil
}

// handleExportCV downloads the caller's assembled CV as JSON or YAML.
func (s *Server) handleExportCV(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	format, err := cv.ParseFormat(query(r, "format"))
	if err != nil {
		return err
	}
	doc, err := s.svc.CV.Build(r.Context(), user.UserID)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", cv.ContentType(format))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": "cv." + format}))
	if err := cv.Export(doc, format, w); err != nil {
		s.logger.Error("cv export failed after headers were sent", zap.Error(err))
	}
	return nil
}

func (s *Server) handleResearcherCV(w http.ResponseWriter, r *http.Request, _ auth.Claims) error {
	doc, err := s.svc.CV.Build(r.Context(), r.PathValue("id"))
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
	return nil
}

// handleUploadCVFile accepts a multipart form with the document in the
// "file" field.
func (s *Server) handleUploadCVFile(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	if s.cfg.Storage.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Storage.MaxUploadBytes+multipartOverhead)
	}
	mr, err := r.MultipartReader()
	if err != nil {
		return apperr.Wrap(apperr.CodeInvalid, "expected a multipart/form-data upload", err)
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if tooLarge(err) {
				return uploadError(err)
			}
			return apperr.Wrap(apperr.CodeInvalid, "malformed multipart upload", err)
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}
		out, err := s.svc.CV.UploadFile(r.Context(), user.Actor(), part.FileName(), part.Header.Get("Content-Type"), part)
		part.Close()
		if err != nil {
			return uploadError(err)
		}
		httputil.WriteJSON(w, http.StatusCreated, out)
		return nil
	}
	var v apperr.Validation
	v.Add("file", "file is required")
	return v.Err()
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// uploadError reports a body over the request limit as a validation error.
func uploadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		var v apperr.Validation
		v.Add("file", fmt.Sprintf("upload exceeds %d bytes", maxErr.Limit))
		return v.Err()
	}
	return err
}

// handleDownloadCVFile serves a CV document: the caller's own, or another
// researcher's with researcher_id.
func (s *Server) handleDownloadCVFile(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	meta, fh, err := s.svc.CV.OpenFile(r.Context(), researcherParam(r, user))
	if err != nil {
		return err
	}
	defer fh.Close()
	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": meta.FileName}))
	http.ServeContent(w, r, meta.FileName, meta.UploadedAt, fh)
	return nil
}

func (s *Server) handleDeleteCVFile(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	if err := s.svc.CV.DeleteFile(r.Context(), user.Actor()); err != nil {
		return err
	}
	noContent(w)
	return nil
}
