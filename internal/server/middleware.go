// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/internal/httputil"
)

type middleware func(http.Handler) http.Handler

// chain applies mw in declaration order: the first wraps all the others.
func chain(h http.Handler, mw ...middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// requestState is shared by the middleware of one request. Handlers deeper
// in the chain fill it in for the logging middleware.
type requestState struct {
	id      string
	userID  string
	authErr error
}

type requestStateKey struct{}

func stateFrom(ctx context.Context) *requestState {
	st, _ := ctx.Value(requestStateKey{}).(*requestState)
	if st == nil {
		return &requestState{}
	}
	return st
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
	wrote  bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wrote {
		r.status = code
		r.wrote = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	n, err := r.ResponseWriter.Write(b)
	r.bytes += int64(n)
	return n, err
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// logRequests writes one log line per request and assigns the request id.
func (s *Server) logRequests() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			st := &requestState{id: strings.TrimSpace(r.Header.Get("X-Request-ID"))}
			if st.id == "" {
				st.id = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", st.id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestStateKey{}, st)))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Int64("bytes", rec.bytes),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", st.id),
			}
			if st.userID != "" {
				fields = append(fields, zap.String("user", st.userID))
			}
			if rec.status >= http.StatusInternalServerError {
				s.logger.Warn("request", fields...)
				return
			}
			s.logger.Info("request", fields...)
		})
	}
}

// recoverPanic turns a handler panic into a 500 response.
func (s *Server) recoverPanic() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					s.logger.Error("panic recovered",
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.String("request_id", stateFrom(r.Context()).id),
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()))
					httputil.WriteError(w, nil, apperr.New(apperr.CodeInternal, "internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate resolves the session token from the Authorization header or
// the session cookie. A bad token does not fail the request here; handlers
// that need a user report it.
func (s *Server) authenticate() middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(s.cookieName()); err == nil {
					token = c.Value
				}
			}
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			st := stateFrom(r.Context())
			claims, err := s.svc.Auth.Authenticate(r.Context(), token)
			if err != nil {
				st.authErr = err
				next.ServeHTTP(w, r)
				return
			}
			st.userID = claims.UserID
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Server) cookieName() string {
	if s.cfg.Auth.CookieName != "" {
		return s.cfg.Auth.CookieName
	}
	return "portal_session"
}

// handlerFunc is an API handler that reports failures as errors.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// userHandler is an API handler for an authenticated user.
type userHandler func(w http.ResponseWriter, r *http.Request, user auth.Claims) error

func (s *Server) public(h handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			httputil.WriteError(w, s.logger, err)
		}
	})
}

func (s *Server) user(h userHandler) http.Handler {
	return s.public(func(w http.ResponseWriter, r *http.Request) error {
		claims, ok := auth.UserFrom(r.Context())
		if !ok {
			if err := stateFrom(r.Context()).authErr; err != nil {
				return err
			}
			return apperr.New(apperr.CodeUnauthenticated, "authentication required")
		}
		return h(w, r, claims)
	})
}

func (s *Server) admin(h userHandler) http.Handler {
	return s.user(func(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
		if !user.Actor().IsAdmin() {
			return apperr.Forbidden("admin access required")
		}
		return h(w, r, user)
	})
}
