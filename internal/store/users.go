// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdiddy/research-portal/pkg/types"
)

const userColumns = `id, email, password_hash, full_name, role, department, college,
	academic_title, specialization, interests, active, created_at, updated_at`

// CreateUser inserts u, assigning ID and timestamps. A duplicate email is a
// CONFLICT.
func (s *Store) CreateUser(ctx context.Context, u *types.User) error {
	now := s.timestamp()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Interests == nil {
		u.Interests = []string{}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, string(u.Role), u.Department, u.College,
		u.AcademicTitle, u.Specialization, encodeJSON(u.Interests), boolInt(u.Active),
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return translate(err, "user", "email already registered")
	}
	return nil
}

// GetUser returns the user with id.
func (s *Store) GetUser(ctx context.Context, id string) (types.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return types.User{}, translate(err, "user", "")
	}
	return u, nil
}

// GetUserByEmail returns the user with the given (already normalised) email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (types.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return types.User{}, translate(err, "user", "")
	}
	return u, nil
}

// UpdateProfile replaces the profile fields of user id.
func (s *Store) UpdateProfile(ctx context.Context, id string, p types.Profile) (types.User, error) {
	if p.Interests == nil {
		p.Interests = []string{}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET full_name = ?, department = ?, college = ?, academic_title = ?,
			specialization = ?, interests = ?, updated_at = ?
		 WHERE id = ?`,
		p.FullName, p.Department, p.College, p.AcademicTitle, p.Specialization,
		encodeJSON(p.Interests), formatTime(s.timestamp()), id,
	)
	if err != nil {
		return types.User{}, fmt.Errorf("updating profile: %w", err)
	}
	if err := requireAffected(res, "user"); err != nil {
		return types.User{}, err
	}
	return s.GetUser(ctx, id)
}

// SetPasswordHash replaces the password hash of user id.
func (s *Store) SetPasswordHash(ctx context.Context, id, hash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, formatTime(s.timestamp()), id)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return requireAffected(res, "user")
}

// SetRole changes the role of user id.
func (s *Store) SetRole(ctx context.Context, id string, role types.Role) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), formatTime(s.timestamp()), id)
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}
	return requireAffected(res, "user")
}

// SetActive enables or disables user id.
func (s *Store) SetActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET active = ?, updated_at = ? WHERE id = ?`,
		boolInt(active), formatTime(s.timestamp()), id)
	if err != nil {
		return fmt.Errorf("updating active flag: %w", err)
	}
	return requireAffected(res, "user")
}

// ListUsers returns users ordered by full name. An empty role lists all.
func (s *Store) ListUsers(ctx context.Context, role types.Role, limit, offset int) (types.Page[types.User], error) {
	limit, offset = clampPage(limit, offset)
	where := `WHERE 1=1`
	var args []any
	if role != "" {
		where += ` AND role = ?`
		args = append(args, string(role))
	}

	page := types.Page[types.User]{Items: []types.User{}, Limit: limit, Offset: offset}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM users `+where, args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("counting users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users `+where+` ORDER BY full_name, id LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return page, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return page, fmt.Errorf("scanning user: %w", err)
		}
		page.Items = append(page.Items, u)
	}
	return page, rows.Err()
}

// CountAdmins returns the number of active admins.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM users WHERE role = ? AND active = 1`, string(types.RoleAdmin)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return n, nil
}

// CandidateProfiles returns, for every active researcher not in exclude,
// the data the project recommender scores: research keywords, published
// record count, and summed best-quartile weight of indexed records.
// pendingProjectID marks candidates with a pending join request there.
func (s *Store) CandidateProfiles(ctx context.Context, exclude []string, pendingProjectID string) ([]types.CandidateProfile, error) {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? AND active = 1 ORDER BY id`,
		string(types.RoleResearcher))
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	var candidates []types.CandidateProfile
	index := make(map[string]int)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		if skip[u.ID] {
			continue
		}
		index[u.ID] = len(candidates)
		candidates = append(candidates, types.CandidateProfile{User: u, ResearchKeywords: []string{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return candidates, nil
	}

	rrows, err := s.db.QueryContext(ctx,
		`SELECT r.researcher_id, r.status, r.keywords, r.scopus, r.scopus_quartile, r.isi, r.isi_quartile
		 FROM research r JOIN users u ON u.id = r.researcher_id
		 WHERE u.role = ? AND u.active = 1`, string(types.RoleResearcher))
	if err != nil {
		return nil, fmt.Errorf("loading candidate research: %w", err)
	}
	defer rrows.Close()

	for rrows.Next() {
		var (
			researcherID, status, keywords, scopusQ, isiQ string
			scopus, isi                                   int
		)
		if err := rrows.Scan(&researcherID, &status, &keywords, &scopus, &scopusQ, &isi, &isiQ); err != nil {
			return nil, fmt.Errorf("scanning candidate research: %w", err)
		}
		i, ok := index[researcherID]
		if !ok {
			continue
		}
		c := &candidates[i]
		c.ResearchKeywords = append(c.ResearchKeywords, decodeStrings(keywords)...)
		if types.ResearchStatus(status) == types.StatusPublished {
			c.Publications++
		}
		idx := types.Indexing{
			Scopus: scopus == 1, ScopusQuartile: types.Quartile(scopusQ),
			ISI: isi == 1, ISIQuartile: types.Quartile(isiQ),
		}
		c.IndexedWeight += idx.BestWeight()
	}
	if err := rrows.Err(); err != nil {
		return nil, err
	}

	if pendingProjectID != "" {
		prows, err := s.db.QueryContext(ctx,
			`SELECT user_id FROM join_requests WHERE project_id = ? AND status = ?`,
			pendingProjectID, string(types.JoinPending))
		if err != nil {
			return nil, fmt.Errorf("loading pending requests: %w", err)
		}
		defer prows.Close()
		for prows.Next() {
			var userID string
			if err := prows.Scan(&userID); err != nil {
				return nil, fmt.Errorf("scanning pending request: %w", err)
			}
			if i, ok := index[userID]; ok {
				candidates[i].PendingRequest = true
			}
		}
		if err := prows.Err(); err != nil {
			return nil, err
		}
	}

	return candidates, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (types.User, error) {
	var (
		u                    types.User
		role, interests      string
		active               int
		createdAt, updatedAt string
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &role, &u.Department,
		&u.College, &u.AcademicTitle, &u.Specialization, &interests, &active, &createdAt, &updatedAt)
	if err != nil {
		return types.User{}, err
	}
	u.Role = types.Role(role)
	u.Interests = decodeStrings(interests)
	u.Active = active == 1
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return u, nil
}
