// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/auth"
	"github.com/pdiddy/research-portal/internal/httputil"
	"github.com/pdiddy/research-portal/pkg/types"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) error {
	if s.svc.Health != nil {
		if err := s.svc.Health.Ping(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return nil
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var in auth.RegisterInput
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	u, err := s.svc.Auth.Register(r.Context(), in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusCreated, u)
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var in loginRequest
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	sess, err := s.svc.Auth.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(),
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, sess)
	return nil
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	noContent(w)
	return nil
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	u, err := s.svc.Auth.Me(r.Context(), user.UserID)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, u)
	return nil
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in types.Profile
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	u, err := s.svc.Auth.UpdateProfile(r.Context(), user.UserID, in)
	if err != nil {
		return err
	}
	httputil.WriteJSON(w, http.StatusOK, u)
	return nil
}

type passwordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, user auth.Claims) error {
	var in passwordRequest
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		return err
	}
	if err := s.svc.Auth.ChangePassword(r.Context(), user.UserID, in.OldPassword, in.NewPassword); err != nil {
		return err
	}
	noContent(w)
	return nil
}
