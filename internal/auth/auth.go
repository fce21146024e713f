// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package auth registers and authenticates portal users, issues session
// tokens, and manages accounts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/internal/research"
	"github.com/pdiddy/research-portal/pkg/types"
)

// Store is the persistence the auth service needs.
type Store interface {
	CreateUser(ctx context.Context, u *types.User) error
	GetUser(ctx context.Context, id string) (types.User, error)
	GetUserByEmail(ctx context.Context, email string) (types.User, error)
	UpdateProfile(ctx context.Context, id string, p types.Profile) (types.User, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	SetRole(ctx context.Context, id string, role types.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	ListUsers(ctx context.Context, role types.Role, limit, offset int) (types.Page[types.User], error)
}

// RegisterInput is a self-service signup.
type RegisterInput struct {
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	FullName       string   `json:"full_name"`
	Department     string   `json:"department"`
	College        string   `json:"college"`
	AcademicTitle  string   `json:"academic_title"`
	Specialization string   `json:"specialization"`
	Interests      []string `json:"interests"`
}

// Session is the result of a successful login.
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      types.User `json:"user"`
}

// errBadCredentials is shared by unknown-email and wrong-password paths.
var errBadCredentials = apperr.New(apperr.CodeUnauthenticated, "invalid email or password")

// Service manages accounts and sessions.
type Service struct {
	store  Store
	tokens *Tokens
	logger *zap.Logger
}

// NewService returns a Service.
func NewService(store Store, tokens *Tokens, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, tokens: tokens, logger: logger}
}

// NormalizeEmail trims and lowercases email. ok is false when it is not of
// the form local@domain.
func NormalizeEmail(email string) (string, bool) {
	e := strings.ToLower(strings.TrimSpace(email))
	local, domain, found := strings.Cut(e, "@")
	if !found || local == "" || domain == "" || strings.Contains(domain, "@") || strings.ContainsAny(e, " \t") {
		return e, false
	}
	return e, true
}

// Register creates an active RESEARCHER account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	return s.create(ctx, in, types.RoleResearcher)
}

// CreateUser creates an account with an explicit role. It backs the
// operator CLI used to bootstrap the first admin.
func (s *Service) CreateUser(ctx context.Context, in RegisterInput, role types.Role) (types.User, error) {
	if !role.Valid() {
		var v apperr.Validation
		v.Add("role", "role must be RESEARCHER or ADMIN")
		return types.User{}, v.Err()
	}
	return s.create(ctx, in, role)
}

func (s *Service) create(ctx context.Context, in RegisterInput, role types.Role) (types.User, error) {
	var v apperr.Validation
	email, ok := NormalizeEmail(in.Email)
	v.Check(ok, "email", "a valid email address is required")
	if msg := CheckPasswordPolicy(in.Password); msg != "" {
		v.Add("password", msg)
	}
	name := strings.Join(strings.Fields(in.FullName), " ")
	v.Check(name != "", "full_name", "full name is required")
	if err := v.Err(); err != nil {
		return types.User{}, err
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return types.User{}, err
	}
	u := types.User{
		Email:          email,
		FullName:       name,
		Role:           role,
		Department:     strings.TrimSpace(in.Department),
		College:        strings.TrimSpace(in.College),
		AcademicTitle:  strings.TrimSpace(in.AcademicTitle),
		Specialization: strings.TrimSpace(in.Specialization),
		Interests:      research.NormalizeKeywords(in.Interests),
		Active:         true,
		PasswordHash:   hash,
	}
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return types.User{}, err
	}
	s.logger.Info("user registered", zap.String("id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email, _ = NormalizeEmail(email)
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		// Spend the same bcrypt time as a known account.
		_, _ = VerifyPassword(dummyHash(), password)
		return Session{}, errBadCredentials
	}
	if err != nil {
		return Session{}, err
	}

	match, err := VerifyPassword(u.PasswordHash, password)
	if err != nil {
		return Session{}, err
	}
	if !match {
		s.logger.Info("login failed", zap.String("user", u.ID))
		return Session{}, errBadCredentials
	}
	if !u.Active {
		return Session{}, apperr.Forbidden("account is disabled")
	}

	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, User: u}, nil
}

// Authenticate verifies token and confirms the account is still active.
// The role in the returned claims is the current one, so role changes take
// effect before the token expires.
func (s *Service) Authenticate(ctx context.Context, token string) (Claims, error) {
	c, err := s.tokens.Authenticate(token)
	if err != nil {
		return Claims{}, err
	}
	u, err := s.store.GetUser(ctx, c.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Claims{}, apperr.New(apperr.CodeUnauthenticated, "account no longer exists")
	}
	if err != nil {
		return Claims{}, err
	}
	if !u.Active {
		return Claims{}, apperr.Forbidden("account is disabled")
	}
	c.Role = u.Role
	return c, nil
}

// Me returns the account of id.
func (s *Service) Me(ctx context.Context, id string) (types.User, error) {
	return s.store.GetUser(ctx, id)
}

// UpdateProfile replaces the profile of id.
func (s *Service) UpdateProfile(ctx context.Context, id string, p types.Profile) (types.User, error) {
	p.FullName = strings.Join(strings.Fields(p.FullName), " ")
	if p.FullName == "" {
		var v apperr.Validation
		v.Add("full_name", "full name is required")
		return types.User{}, v.Err()
	}
	p.Department = strings.TrimSpace(p.Department)
	p.College = strings.TrimSpace(p.College)
	p.AcademicTitle = strings.TrimSpace(p.AcademicTitle)
	p.Specialization = strings.TrimSpace(p.Specialization)
	p.Interests = research.NormalizeKeywords(p.Interests)
	return s.store.UpdateProfile(ctx, id, p)
}

// ChangePassword replaces the password of id after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	u, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	match, err := VerifyPassword(u.PasswordHash, oldPassword)
	if err != nil {
		return err
	}
	var v apperr.Validation
	v.Check(match, "old_password", "current password is incorrect")
	if msg := CheckPasswordPolicy(newPassword); msg != "" {
		v.Add("new_password", msg)
	}
	if err := v.Err(); err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.SetPasswordHash(ctx, id, hash); err != nil {
		return fmt.Errorf("storing password: %w", err)
	}
	s.logger.Info("password changed", zap.String("user", id))
	return nil
}

// ListUsers returns accounts, optionally filtered by role. Admin only.
func (s *Service) ListUsers(ctx context.Context, actor types.Actor, role types.Role, limit, offset int) (types.Page[types.User], error) {
	if !actor.IsAdmin() {
		return types.Page[types.User]{}, apperr.Forbidden("admin access required")
	}
	if role != "" && !role.Valid() {
		var v apperr.Validation
		v.Add("role", "role must be RESEARCHER or ADMIN")
		return types.Page[types.User]{}, v.Err()
	}
	return s.store.ListUsers(ctx, role, limit, offset)
}

// SetRole changes the role of user id. Admins cannot demote themselves.
func (s *Service) SetRole(ctx context.Context, actor types.Actor, id string, role types.Role) (types.User, error) {
	if !actor.IsAdmin() {
		return types.User{}, apperr.Forbidden("admin access required")
	}
	if !role.Valid() {
		var v apperr.Validation
		v.Add("role", "role must be RESEARCHER or ADMIN")
		return types.User{}, v.Err()
	}
	if id == actor.UserID && role != types.RoleAdmin {
		return types.User{}, apperr.Forbidden("admins cannot remove their own admin role")
	}
	if err := s.store.SetRole(ctx, id, role); err != nil {
		return types.User{}, err
	}
	s.logger.Info("role changed", zap.String("user", id), zap.String("role", string(role)), zap.String("by", actor.UserID))
	return s.store.GetUser(ctx, id)
}

// SetActive enables or disables user id. Admins cannot disable themselves.
func (s *Service) SetActive(ctx context.Context, actor types.Actor, id string, active bool) (types.User, error) {
	if !actor.IsAdmin() {
		return types.User{}, apperr.Forbidden("admin access required")
	}
	if id == actor.UserID && !active {
		return types.User{}, apperr.Forbidden("admins cannot disable their own account")
	}
	if err := s.store.SetActive(ctx, id, active); err != nil {
		return types.User{}, err
	}
	s.logger.Info("account status changed", zap.String("user", id), zap.Bool("active", active), zap.String("by", actor.UserID))
	return s.store.GetUser(ctx, id)
}
