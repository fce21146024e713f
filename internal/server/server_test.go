// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/pdiddy/research-portal/internal/activity"
	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/internal/collab"
	"github.com/pdiddy/research-portal/internal/cv"
	"github.com/pdiddy/research-portal/internal/httputil"
	"github.com/pdiddy/research-portal/internal/lookup"
	"github.com/pdiddy/research-portal/internal/research"
	"github.com/pdiddy/research-portal/internal/stats"
	"github.com/pdiddy/research-portal/internal/store"
	"github.com/pdiddy/research-portal/pkg/types"
)

func TestMain(m *testing.M) {
	auth.HashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

const testSecret = "0123456789abcdef0123456789abcdef"

type env struct {
	t      *testing.T
	srv    *httptest.Server
	authn  *auth.Service
	logs   *observer.ObservedLogs
	upload string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := types.PortalConfig{
		Server:  types.ServerConfig{AllowedOrigins: []string{"*"}, ShutdownTimeout: time.Second},
		Auth:    types.AuthConfig{Secret: testSecret, Issuer: "research-portal", TokenTTL: time.Hour, CookieName: "portal_session"},
		Storage: types.StorageConfig{Dir: t.TempDir(), MaxUploadBytes: 4096},
		Lookup:  types.LookupConfig{Enabled: false},
	}
	st, err := store.Open(types.DatabaseConfig{Path: filepath.Join(t.TempDir(), "portal.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	tokens, err := auth.NewTokens(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, nil)
	require.NoError(t, err)
	authn := auth.NewService(st, tokens, logger)
	acts := activity.NewService(st, logger, nil)
	svc := Services{
		Auth:     authn,
		Research: research.NewService(st, lookup.New(cfg.Lookup, logger), logger, nil),
		Activity: acts,
		Collab:   collab.NewService(st, logger),
		CV:       cv.NewService(st, acts, cfg.Storage, logger, nil),
		Stats:    stats.NewService(st, acts, logger),
		Health:   st,
	}
	srv := httptest.NewServer(New(cfg, svc, logger).Handler())
	t.Cleanup(srv.Close)
	return &env{t: t, srv: srv, authn: authn, logs: logs, upload: cfg.Storage.Dir}
}

// do sends a JSON request and decodes a JSON response into out when set.
func (e *env) do(method, path, token string, body any, out any) *http.Response {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	require.NoError(e.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// signup registers a researcher and returns their id and session token.
func (e *env) signup(email, name string, extra func(*auth.RegisterInput)) (string, string) {
	e.t.Helper()
	in := auth.RegisterInput{Email: email, Password: "correct horse", FullName: name}
	if extra != nil {
		extra(&in)
	}
	var u types.User
	resp := e.do(http.MethodPost, "/api/auth/register", "", in, &u)
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)

	var sess auth.Session
	resp = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "correct horse"}, &sess)
	require.Equal(e.t, http.StatusOK, resp.StatusCode)
	return u.ID, sess.Token
}

func (e *env) admin() string {
	e.t.Helper()
	_, err := e.authn.CreateUser(context.Background(), auth.RegisterInput{
		Email: "admin@uni.example", Password: "correct horse", FullName: "Admin",
	}, types.RoleAdmin)
	require.NoError(e.t, err)
	sess, err := e.authn.Login(context.Background(), "admin@uni.example", "correct horse")
	require.NoError(e.t, err)
	return sess.Token
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	var body map[string]string
	resp := e.do(http.MethodGet, "/healthz", "", nil, &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)
	id, token := e.signup("alice@uni.example", "Alice", nil)

	var me types.User
	resp := e.do(http.MethodGet, "/api/me", token, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, me.ID)
	assert.Equal(t, types.RoleResearcher, me.Role)

	var errBody httputil.ErrorBody
	resp = e.do(http.MethodGet, "/api/me", "", nil, &errBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, apperr.CodeUnauthenticated, errBody.Error.Code)

	resp = e.do(http.MethodGet, "/api/me", "not-a-token", nil, &errBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@uni.example", "password": "wrong password"}, &errBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid email or password", errBody.Error.Message)

	resp = e.do(http.MethodPut, "/api/me/password", token, map[string]string{"old_password": "correct horse", "new_password": "battery staple"}, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCookieSession(t *testing.T) {
	e := newEnv(t)
	e.signup("alice@uni.example", "Alice", nil)

	resp := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "alice@uni.example", "password": "correct horse"}, nil)
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "portal_session" {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/me", nil)
	require.NoError(t, err)
	req.AddCookie(session)
	me, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	me.Body.Close()
	assert.Equal(t, http.StatusOK, me.StatusCode)

	out := e.do(http.MethodPost, "/api/auth/logout", "", nil, nil)
	assert.Equal(t, http.StatusNoContent, out.StatusCode)
	require.NotEmpty(t, out.Cookies())
	assert.Equal(t, -1, out.Cookies()[0].MaxAge)
}

func TestRequestValidation(t *testing.T) {
	e := newEnv(t)
	_, token := e.signup("alice@uni.example", "Alice", nil)

	var errBody httputil.ErrorBody
	resp := e.do(http.MethodPost, "/api/research", token, map[string]any{"title": "x", "bogus": 1}, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errBody.Error.Message, "malformed JSON")

	resp = e.do(http.MethodPost, "/api/research", token, map[string]any{"type": "ARTICLE", "status": "PUBLISHED"}, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperr.CodeInvalid, errBody.Error.Code)
	assert.Contains(t, errBody.Error.Fields, "title")
	assert.Contains(t, errBody.Error.Fields, "publication_date")

	resp = e.do(http.MethodGet, "/api/research?limit=abc", token, nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errBody.Error.Fields, "limit")
}

func TestResearchEndpoints(t *testing.T) {
	e := newEnv(t)
	aliceID, alice := e.signup("alice@uni.example", "Alice", nil)
	_, bob := e.signup("bob@uni.example", "Bob", nil)

	var created types.Research
	resp := e.do(http.MethodPost, "/api/research", alice, types.ResearchInput{
		Title: "Flood mapping with SAR", Type: types.ResearchArticle, Status: types.StatusInProgress,
		Keywords: []string{"Floods"},
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, aliceID, created.ResearcherID)

	var got types.Research
	resp = e.do(http.MethodGet, "/api/research/"+created.ID, bob, nil, &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.Title, got.Title)

	var page types.Page[types.Research]
	e.do(http.MethodGet, "/api/research?researcher_id=me", alice, nil, &page)
	assert.Equal(t, 1, page.Total)
	e.do(http.MethodGet, "/api/research?researcher_id=me", bob, nil, &page)
	assert.Equal(t, 0, page.Total)

	resp = e.do(http.MethodDelete, "/api/research/"+created.ID, bob, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = e.do(http.MethodDelete, "/api/research/"+created.ID, alice, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = e.do(http.MethodGet, "/api/research/"+created.ID, alice, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errBody httputil.ErrorBody
	resp = e.do(http.MethodPost, "/api/research/lookup", alice, map[string]string{"doi": "10.1000/xyz"}, &errBody)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, apperr.CodeUnavailable, errBody.Error.Code)
}

func TestVolunteeringDuration(t *testing.T) {
	e := newEnv(t)
	_, token := e.signup("alice@uni.example", "Alice", nil)

	var out durationResponse
	resp := e.do(http.MethodPost, "/api/volunteering/duration", token,
		map[string]string{"start_date": "2023-01-15", "end_date": "2024-03-14"}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.Duration{TotalDays: 425, Years: 1, Months: 2, Days: 0}, out.Duration)
	assert.Equal(t, "1 year 2 months", out.Text)
	assert.Equal(t, 24, out.Points)
}

func TestProjectCollaboration(t *testing.T) {
	e := newEnv(t)
	_, owner := e.signup("owner@uni.example", "Owner", nil)
	aliceID, alice := e.signup("alice@uni.example", "Alice", func(in *auth.RegisterInput) {
		in.Interests = []string{"hydrology"}
	})

	var p types.Project
	resp := e.do(http.MethodPost, "/api/projects", owner, types.ProjectInput{
		Title: "Water security", Field: "Hydrology", Keywords: []string{"hydrology"},
	}, &p)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var suggestions []types.SuggestedResearcher
	resp = e.do(http.MethodGet, "/api/projects/"+p.ID+"/suggestions", owner, nil, &suggestions)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, suggestions, 1)
	assert.Equal(t, aliceID, suggestions[0].UserID)

	resp = e.do(http.MethodGet, "/api/projects/"+p.ID+"/suggestions", alice, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var req types.JoinRequest
	resp = e.do(http.MethodPost, "/api/projects/"+p.ID+"/join-requests", alice, map[string]string{"message": "hi"}, &req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(http.MethodPost, "/api/join-requests/"+req.ID+"/accept", alice, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	var accepted types.JoinRequest
	resp = e.do(http.MethodPost, "/api/join-requests/"+req.ID+"/accept", owner, nil, &accepted)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.JoinAccepted, accepted.Status)

	var members []types.Member
	e.do(http.MethodGet, "/api/projects/"+p.ID+"/members", alice, nil, &members)
	assert.Len(t, members, 2)

	var mine types.Page[types.Project]
	e.do(http.MethodGet, "/api/projects?member=me", alice, nil, &mine)
	assert.Equal(t, 1, mine.Total)

	resp = e.do(http.MethodPost, "/api/projects/"+p.ID+"/leave", owner, nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp = e.do(http.MethodPost, "/api/projects/"+p.ID+"/leave", alice, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCVFileUpload(t *testing.T) {
	e := newEnv(t)
	aliceID, alice := e.signup("alice@uni.example", "Alice", nil)

	upload := func(name, content string) *http.Response {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
		h.Set("Content-Type", "application/pdf")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/cv/file", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+alice)
		resp, err := e.srv.Client().Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := upload("cv.pdf", "%PDF-1.4 my cv")
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = upload("cv.pdf", "%PDF-1.4 "+strings.Repeat("x", 5000))
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/cv/file?researcher_id="+aliceID, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+alice)
	dl, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer dl.Body.Close()
	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Equal(t, "application/pdf", dl.Header.Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4 my cv", string(body))
	assert.Contains(t, dl.Header.Get("Content-Disposition"), "cv.pdf")

	resp = e.do(http.MethodDelete, "/api/cv/file", alice, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCVExport(t *testing.T) {
	e := newEnv(t)
	_, alice := e.signup("alice@uni.example", "Alice", nil)

	resp := e.do(http.MethodPut, "/api/cv", alice, types.CV{Summary: "Hydrologist", Skills: []string{"GIS"}}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, e.srv.URL+"/api/cv/export?format=yaml", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+alice)
	out, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	defer out.Body.Close()
	body, err := io.ReadAll(out.Body)
	require.NoError(t, err)
	assert.Equal(t, "application/yaml", out.Header.Get("Content-Type"))
	assert.Contains(t, out.Header.Get("Content-Disposition"), "cv.yaml")
	assert.Contains(t, string(body), "summary: Hydrologist")

	resp = e.do(http.MethodGet, "/api/cv/export?format=pdf", alice, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminEndpoints(t *testing.T) {
	e := newEnv(t)
	aliceID, alice := e.signup("alice@uni.example", "Alice", nil)
	admin := e.admin()

	resp := e.do(http.MethodGet, "/api/admin/dashboard", alice, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var d types.Dashboard
	resp = e.do(http.MethodGet, "/api/admin/dashboard", admin, nil, &d)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, types.ScopeGlobal, d.Scope)
	require.NotNil(t, d.Researchers)
	assert.Equal(t, 1, d.Researchers.Total)

	var users types.Page[types.User]
	e.do(http.MethodGet, "/api/admin/users?role=RESEARCHER", admin, nil, &users)
	assert.Equal(t, 1, users.Total)

	var u types.User
	resp = e.do(http.MethodPut, "/api/admin/users/"+aliceID+"/active", admin, map[string]bool{"active": false}, &u)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, u.Active)

	resp = e.do(http.MethodGet, "/api/dashboard", alice, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "disabled accounts lose access at once")
}

func TestRequestLogging(t *testing.T) {
	e := newEnv(t)
	id, token := e.signup("alice@uni.example", "Alice", nil)
	e.do(http.MethodGet, "/api/dashboard", token, nil, nil)

	entries := e.logs.FilterMessage("request").FilterField(zap.String("path", "/api/dashboard")).All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, id, fields["user"])
}

func TestCORSPreflight(t *testing.T) {
	e := newEnv(t)
	req, err := http.NewRequest(http.MethodOptions, e.srv.URL+"/api/research", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://portal.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRecoverPanic(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := &Server{logger: zap.New(core)}
	h := s.wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("secret table users_v2 missing")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/research", nil)
	req.Header.Set("X-Request-ID", "req-42")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
	assert.NotContains(t, rec.Body.String(), "users_v2")

	panics := logs.FilterMessage("panic recovered").All()
	require.Len(t, panics, 1)
	assert.Equal(t, "req-42", panics[0].ContextMap()["request_id"])

	requests := logs.FilterMessage("request").All()
	require.Len(t, requests, 1)
	assert.Equal(t, int64(http.StatusInternalServerError), requests[0].ContextMap()["status"])
	assert.Equal(t, "/api/research", requests[0].ContextMap()["path"])
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := New(types.PortalConfig{Server: types.ServerConfig{ShutdownTimeout: time.Second}}, Services{}, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
