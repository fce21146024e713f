// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/research-portal/internal/apperr"
)

func TestWriteErrorValidation(t *testing.T) {
	var v apperr.Validation
	v.Add("title", "title is required")

	rec := httptest.NewRecorder()
	WriteError(rec, nil, v.Err())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeInvalid, body.Error.Code)
	assert.Equal(t, "validation failed", body.Error.Message)
	assert.Equal(t, map[string]string{"title": "title is required"}, body.Error.Fields)
}

func TestWriteErrorInternalIsHidden(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	rec := httptest.NewRecorder()
	WriteError(rec, zap.New(core), errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperr.CodeInternal, body.Error.Code)
	assert.Equal(t, "internal error", body.Error.Message)
	assert.Equal(t, 1, logs.Len())
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"name":"x"}`, ""},
		{"empty", ``, "request body is empty"},
		{"unknown field", `{"name":"x","extra":1}`, "malformed JSON"},
		{"trailing object", `{"name":"x"}{"name":"y"}`, "single JSON object"},
		{"too large", `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, "exceeds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := DecodeJSON(httptest.NewRecorder(), req, &p)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "x", p.Name)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrInvalid))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
