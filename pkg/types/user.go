// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the domain records shared by the research portal:
// users, research records, academic activities, collaboration projects,
// CVs, dashboard statistics, and configuration.
package types

import "time"

// Role controls what a user may do in the portal.
type Role string

const (
	RoleResearcher Role = "RESEARCHER"
	RoleAdmin      Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleResearcher || r == RoleAdmin
}

// User is a portal account. Researchers own research records, activities,
// and a CV; admins manage accounts and see global statistics.
type User struct {
	ID string `json:"id" yaml:"id"`

	// Email is unique and stored lowercased.
	Email string `json:"email" yaml:"email"`

	FullName string `json:"full_name" yaml:"full_name"`
	Role     Role   `json:"role" yaml:"role"`

	// Department and College locate the researcher in the university.
	Department string `json:"department,omitempty" yaml:"department,omitempty"`
	College    string `json:"college,omitempty" yaml:"college,omitempty"`

	// AcademicTitle is the rank, e.g. "Lecturer" or "Assistant Professor".
	AcademicTitle string `json:"academic_title,omitempty" yaml:"academic_title,omitempty"`

	// Specialization is the researcher's field, used for project matching.
	Specialization string `json:"specialization,omitempty" yaml:"specialization,omitempty"`

	// Interests are normalised research-interest keywords.
	Interests []string `json:"interests" yaml:"interests"`

	Active    bool      `json:"active" yaml:"active"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`

	// PasswordHash is the bcrypt hash; it never leaves the server.
	PasswordHash string `json:"-" yaml:"-"`
}

// IsAdmin reports whether the user has the ADMIN role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Profile holds the user-editable profile fields.
type Profile struct {
	FullName       string   `json:"full_name"`
	Department     string   `json:"department"`
	College        string   `json:"college"`
	AcademicTitle  string   `json:"academic_title"`
	Specialization string   `json:"specialization"`
	Interests      []string `json:"interests"`
}

// Actor identifies who performs an operation. Services use it for
// ownership checks.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor has the ADMIN role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanModify reports whether the actor may change a record owned by ownerID.
func (a Actor) CanModify(ownerID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == ownerID)
}

// Page is one page of a listing with the total number of matches.
type Page[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
