// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ProjectStatus tracks a collaboration project's lifecycle. Only OPEN
// projects accept join requests.
type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "OPEN"
	ProjectInProgress ProjectStatus = "IN_PROGRESS"
	ProjectCompleted  ProjectStatus = "COMPLETED"
	ProjectClosed     ProjectStatus = "CLOSED"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectOpen, ProjectInProgress, ProjectCompleted, ProjectClosed:
		return true
	}
	return false
}

// Project is a shared research project.
type Project struct {
	ID          string        `json:"id" yaml:"id"`
	OwnerID     string        `json:"owner_id" yaml:"owner_id"`
	Title       string        `json:"title" yaml:"title"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Field       string        `json:"field" yaml:"field"`
	Keywords    []string      `json:"keywords" yaml:"keywords"`
	Status      ProjectStatus `json:"status" yaml:"status"`

	// MaxMembers caps membership including the owner; zero is unlimited.
	MaxMembers int `json:"max_members" yaml:"max_members"`

	StartDate   *Date     `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate     *Date     `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	MemberCount int       `json:"member_count" yaml:"member_count"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// Full reports whether the project has reached MaxMembers.
func (p Project) Full() bool {
	return p.MaxMembers > 0 && p.MemberCount >= p.MaxMembers
}

// ProjectInput holds the client-editable fields of a project.
type ProjectInput struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Field       string        `json:"field"`
	Keywords    []string      `json:"keywords"`
	Status      ProjectStatus `json:"status"`
	MaxMembers  int           `json:"max_members"`
	StartDate   *Date         `json:"start_date"`
	EndDate     *Date         `json:"end_date"`
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Status   ProjectStatus
	Field    string
	Query    string
	MemberID string
	Limit    int
	Offset   int
}

// MemberRole distinguishes the project owner from other members.
type MemberRole string

const (
	MemberOwner   MemberRole = "OWNER"
	MemberRegular MemberRole = "MEMBER"
)

// Member is one researcher's membership in a project.
type Member struct {
	ProjectID string     `json:"project_id" yaml:"project_id"`
	UserID    string     `json:"user_id" yaml:"user_id"`
	FullName  string     `json:"full_name" yaml:"full_name"`
	Role      MemberRole `json:"role" yaml:"role"`
	JoinedAt  time.Time  `json:"joined_at" yaml:"joined_at"`
}

// JoinStatus tracks a join request.
type JoinStatus string

const (
	JoinPending   JoinStatus = "PENDING"
	JoinAccepted  JoinStatus = "ACCEPTED"
	JoinRejected  JoinStatus = "REJECTED"
	JoinCancelled JoinStatus = "CANCELLED"
)

// Valid reports whether s is a known join status.
func (s JoinStatus) Valid() bool {
	switch s {
	case JoinPending, JoinAccepted, JoinRejected, JoinCancelled:
		return true
	}
	return false
}

// JoinRequest is a researcher's request to join a project.
type JoinRequest struct {
	ID          string     `json:"id" yaml:"id"`
	ProjectID   string     `json:"project_id" yaml:"project_id"`
	UserID      string     `json:"user_id" yaml:"user_id"`
	FullName    string     `json:"full_name" yaml:"full_name"`
	Message     string     `json:"message,omitempty" yaml:"message,omitempty"`
	Status      JoinStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty" yaml:"responded_at,omitempty"`
}

// SuggestedResearcher is one ranked recommendation for a project.
type SuggestedResearcher struct {
	UserID          string   `json:"user_id"`
	FullName        string   `json:"full_name"`
	Department      string   `json:"department,omitempty"`
	Specialization  string   `json:"specialization,omitempty"`
	Score           float64  `json:"score"`
	MatchedKeywords []string `json:"matched_keywords"`
	FieldMatch      bool     `json:"field_match"`
	Publications    int      `json:"publications"`
	IndexedWeight   int      `json:"indexed_weight"`
	PendingRequest  bool     `json:"pending_request"`
}

// CandidateProfile is the raw data the recommender scores for one researcher.
type CandidateProfile struct {
	User             User
	ResearchKeywords []string
	Publications     int
	IndexedWeight    int
	PendingRequest   bool
}
