// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/pkg/types"
)

const projectSelect = `SELECT p.id, p.owner_id, p.title, p.description, p.field, p.keywords,
	p.status, p.max_members, p.start_date, p.end_date, p.created_at, p.updated_at,
	(SELECT count(*) FROM project_members m WHERE m.project_id = p.id)
	FROM projects p`

// CreateProject inserts p and registers its owner as the OWNER member in
// the same transaction.
func (s *Store) CreateProject(ctx context.Context, p *types.Project) error {
	now := s.timestamp()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt, p.UpdatedAt = now, now

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO projects (id, owner_id, title, description, field, keywords, status,
				max_members, start_date, end_date, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.OwnerID, p.Title, p.Description, p.Field, encodeJSON(p.Keywords),
			string(p.Status), p.MaxMembers, nullDate(p.StartDate), nullDate(p.EndDate),
			formatTime(now), formatTime(now),
		)
		if err != nil {
			return translate(err, "owner", "project already exists")
		}
		if err := insertMember(ctx, tx, p.ID, p.OwnerID, types.MemberOwner, now); err != nil {
			return err
		}
		p.MemberCount = 1
		return nil
	})
}

// UpdateProject replaces the editable fields of p.
func (s *Store) UpdateProject(ctx context.Context, p *types.Project) error {
	p.UpdatedAt = s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET title = ?, description = ?, field = ?, keywords = ?, status = ?,
			max_members = ?, start_date = ?, end_date = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Description, p.Field, encodeJSON(p.Keywords), string(p.Status),
		p.MaxMembers, nullDate(p.StartDate), nullDate(p.EndDate), formatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return requireAffected(res, "project")
}

// DeleteProject removes the project; members and requests cascade.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return requireAffected(res, "project")
}

// GetProject returns the project with id and its member count.
func (s *Store) GetProject(ctx context.Context, id string) (types.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx, projectSelect+` WHERE p.id = ?`, id))
	if err != nil {
		return types.Project{}, translate(err, "project", "")
	}
	return p, nil
}

// ListProjects returns one page of projects matching f, newest first.
func (s *Store) ListProjects(ctx context.Context, f types.ProjectFilter) (types.Page[types.Project], error) {
	limit, offset := clampPage(f.Limit, f.Offset)

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(` WHERE 1=1`)
	if f.Status != "" {
		qb.WriteString(` AND p.status = ?`)
		args = append(args, string(f.Status))
	}
	if field := strings.TrimSpace(f.Field); field != "" {
		qb.WriteString(` AND lower(p.field) = lower(?)`)
		args = append(args, field)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := likePattern(q)
		qb.WriteString(` AND (p.title LIKE ? ESCAPE '\' OR p.description LIKE ? ESCAPE '\' OR p.keywords LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if f.MemberID != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = ?)`)
		args = append(args, f.MemberID)
	}
	where := qb.String()

	page := types.Page[types.Project]{Items: []types.Project{}, Limit: limit, Offset: offset}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM projects p`+where, args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("counting projects: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		projectSelect+where+` ORDER BY p.created_at DESC, p.id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return page, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return page, fmt.Errorf("scanning project: %w", err)
		}
		page.Items = append(page.Items, p)
	}
	return page, rows.Err()
}

// Members returns the members of projectID, owner first.
func (s *Store) Members(ctx context.Context, projectID string) ([]types.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.project_id, m.user_id, u.full_name, m.role, m.joined_at
		 FROM project_members m JOIN users u ON u.id = m.user_id
		 WHERE m.project_id = ?
		 ORDER BY m.role = 'OWNER' DESC, m.joined_at, u.full_name`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	out := []types.Member{}
	for rows.Next() {
		var (
			m              types.Member
			role, joinedAt string
		)
		if err := rows.Scan(&m.ProjectID, &m.UserID, &m.FullName, &role, &joinedAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		m.Role = types.MemberRole(role)
		m.JoinedAt = parseTime(joinedAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

// MemberIDs returns the user ids of all members of projectID.
func (s *Store) MemberIDs(ctx context.Context, projectID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM project_members WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing member ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning member id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// IsMember reports whether userID belongs to projectID.
func (s *Store) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	return isMember(ctx, s.db, projectID, userID)
}

// RemoveMember deletes a non-owner membership.
func (s *Store) RemoveMember(ctx context.Context, projectID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = ? AND user_id = ? AND role != ?`,
		projectID, userID, string(types.MemberOwner))
	if err != nil {
		return fmt.Errorf("removing member: %w", err)
	}
	return requireAffected(res, "member")
}

// CreateJoinRequest inserts a PENDING request. The project must be OPEN and
// not full, and userID must not already be a member; all checks run in the
// insert transaction.
func (s *Store) CreateJoinRequest(ctx context.Context, r *types.JoinRequest) error {
	now := s.timestamp()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Status = types.JoinPending
	r.CreatedAt = now

	return s.inTx(ctx, func(tx *sql.Tx) error {
		p, err := scanProject(tx.QueryRowContext(ctx, projectSelect+` WHERE p.id = ?`, r.ProjectID))
		if err != nil {
			return translate(err, "project", "")
		}
		if p.Status != types.ProjectOpen {
			return apperr.Conflict("project is not open for join requests")
		}
		member, err := isMember(ctx, tx, r.ProjectID, r.UserID)
		if err != nil {
			return err
		}
		if member {
			return apperr.Conflict("already a member of this project")
		}
		if p.Full() {
			return apperr.Conflict("project is full")
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO join_requests (id, project_id, user_id, message, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.ProjectID, r.UserID, r.Message, string(r.Status), formatTime(now))
		if err != nil {
			return translate(err, "user", "a pending join request already exists")
		}
		return nil
	})
}

// GetJoinRequest returns the request with id.
func (s *Store) GetJoinRequest(ctx context.Context, id string) (types.JoinRequest, error) {
	r, err := scanJoinRequest(s.db.QueryRowContext(ctx, joinRequestSelect+` WHERE r.id = ?`, id))
	if err != nil {
		return types.JoinRequest{}, translate(err, "join request", "")
	}
	return r, nil
}

// ListJoinRequests returns requests for projectID, newest first. userID and
// status narrow the result when non-empty.
func (s *Store) ListJoinRequests(ctx context.Context, projectID, userID string, status types.JoinStatus) ([]types.JoinRequest, error) {
	query := joinRequestSelect + ` WHERE r.project_id = ?`
	args := []any{projectID}
	if userID != "" {
		query += ` AND r.user_id = ?`
		args = append(args, userID)
	}
	if status != "" {
		query += ` AND r.status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY r.created_at DESC, r.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing join requests: %w", err)
	}
	defer rows.Close()

	out := []types.JoinRequest{}
	for rows.Next() {
		r, err := scanJoinRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning join request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ResolveJoinRequest moves a PENDING request to status. Accepting adds the
// requester as a MEMBER after re-checking capacity; both writes share one
// transaction.
func (s *Store) ResolveJoinRequest(ctx context.Context, id string, status types.JoinStatus) (types.JoinRequest, error) {
	now := s.timestamp()
	var out types.JoinRequest

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		r, err := scanJoinRequest(tx.QueryRowContext(ctx, joinRequestSelect+` WHERE r.id = ?`, id))
		if err != nil {
			return translate(err, "join request", "")
		}
		if r.Status != types.JoinPending {
			return apperr.Conflict("join request is no longer pending")
		}

		if status == types.JoinAccepted {
			p, err := scanProject(tx.QueryRowContext(ctx, projectSelect+` WHERE p.id = ?`, r.ProjectID))
			if err != nil {
				return translate(err, "project", "")
			}
			if p.Full() {
				return apperr.Conflict("project is full")
			}
			if err := insertMember(ctx, tx, r.ProjectID, r.UserID, types.MemberRegular, now); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE join_requests SET status = ?, responded_at = ? WHERE id = ?`,
			string(status), formatTime(now), id); err != nil {
			return fmt.Errorf("updating join request: %w", err)
		}
		r.Status = status
		r.RespondedAt = &now
		out = r
		return nil
	})
	return out, err
}

const joinRequestSelect = `SELECT r.id, r.project_id, r.user_id, u.full_name, r.message,
	r.status, r.created_at, r.responded_at
	FROM join_requests r JOIN users u ON u.id = r.user_id`

func insertMember(ctx context.Context, q queryer, projectID, userID string, role types.MemberRole, joined time.Time) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO project_members (project_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		projectID, userID, string(role), formatTime(joined))
	if err != nil {
		return translate(err, "user", "already a member of this project")
	}
	return nil
}

func isMember(ctx context.Context, q queryer, projectID, userID string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM project_members WHERE project_id = ? AND user_id = ?`,
		projectID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking membership: %w", err)
	}
	return true, nil
}

func scanProject(row rowScanner) (types.Project, error) {
	var (
		p                    types.Project
		keywords, status     string
		start, end           sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Field, &keywords,
		&status, &p.MaxMembers, &start, &end, &createdAt, &updatedAt, &p.MemberCount)
	if err != nil {
		return types.Project{}, err
	}
	p.Keywords = decodeStrings(keywords)
	p.Status = types.ProjectStatus(status)
	p.StartDate = parseNullDate(start)
	p.EndDate = parseNullDate(end)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}

func scanJoinRequest(row rowScanner) (types.JoinRequest, error) {
	var (
		r                 types.JoinRequest
		status, createdAt string
		respondedAt       sql.NullString
	)
	err := row.Scan(&r.ID, &r.ProjectID, &r.UserID, &r.FullName, &r.Message,
		&status, &createdAt, &respondedAt)
	if err != nil {
		return types.JoinRequest{}, err
	}
	r.Status = types.JoinStatus(status)
	r.CreatedAt = parseTime(createdAt)
	r.RespondedAt = parseNullTime(respondedAt)
	return r, nil
}
