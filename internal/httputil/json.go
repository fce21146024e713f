// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/apperr"
)

// MaxBodyBytes limits JSON request bodies.
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the code, message, and per-field validation messages.
type ErrorDetail struct {
	Code    apperr.Code       `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

// WriteError renders err using its apperr code. Internal errors are logged
// and replaced with a generic message.
func WriteError(w http.ResponseWriter, logger *zap.Logger, err error) {
	status := apperr.HTTPStatus(err)
	detail := ErrorDetail{Code: apperr.CodeOf(err), Message: err.Error(), Fields: apperr.FieldsOf(err)}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		detail.Message = ae.Message
	}
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		if detail.Code == apperr.CodeInternal {
			detail.Message = "internal error"
		}
	}
	WriteJSON(w, status, ErrorBody{Error: detail})
}

// DecodeJSON reads a single JSON object from r into v, rejecting unknown
// fields, trailing data, and bodies over MaxBodyBytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.New(apperr.CodeInvalid, "request body is empty")
		case errors.As(err, &maxErr):
			return apperr.New(apperr.CodeInvalid, fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
		default:
			return apperr.Wrap(apperr.CodeInvalid, "malformed JSON: "+err.Error(), err)
		}
	}
	if dec.More() {
		return apperr.New(apperr.CodeInvalid, "request body must contain a single JSON object")
	}
	return nil
}
