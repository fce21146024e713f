// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdiddy/research-portal/pkg/types"
)

const fieldVisitColumns = `id, researcher_id, title, destination, scope, purpose, start_date,
	end_date, notes, points, created_at, updated_at`

// CreateFieldVisit inserts v.
func (s *Store) CreateFieldVisit(ctx context.Context, v *types.FieldVisit) error {
	now := s.timestamp()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.CreatedAt, v.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO field_visits (`+fieldVisitColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.ResearcherID, v.Title, v.Destination, string(v.Scope), v.Purpose,
		v.StartDate.String(), v.EndDate.String(), v.Notes, v.Points,
		formatTime(now), formatTime(now),
	)
	if err != nil {
		return translate(err, "researcher", "field visit already exists")
	}
	return nil
}

// UpdateFieldVisit replaces the editable fields of v.
func (s *Store) UpdateFieldVisit(ctx context.Context, v *types.FieldVisit) error {
	v.UpdatedAt = s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`UPDATE field_visits SET title = ?, destination = ?, scope = ?, purpose = ?,
			start_date = ?, end_date = ?, notes = ?, points = ?, updated_at = ?
		 WHERE id = ?`,
		v.Title, v.Destination, string(v.Scope), v.Purpose, v.StartDate.String(),
		v.EndDate.String(), v.Notes, v.Points, formatTime(v.UpdatedAt), v.ID,
	)
	if err != nil {
		return fmt.Errorf("updating field visit: %w", err)
	}
	return requireAffected(res, "field visit")
}

// DeleteFieldVisit removes the visit with id.
func (s *Store) DeleteFieldVisit(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM field_visits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting field visit: %w", err)
	}
	return requireAffected(res, "field visit")
}

// GetFieldVisit returns the visit with id.
func (s *Store) GetFieldVisit(ctx context.Context, id string) (types.FieldVisit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+fieldVisitColumns+` FROM field_visits WHERE id = ?`, id)
	v, err := scanFieldVisit(row)
	if err != nil {
		return types.FieldVisit{}, translate(err, "field visit", "")
	}
	return v, nil
}

// ListFieldVisits returns the visits of researcherID, latest first. An
// empty researcherID lists all visits.
func (s *Store) ListFieldVisits(ctx context.Context, researcherID string) ([]types.FieldVisit, error) {
	query := `SELECT ` + fieldVisitColumns + ` FROM field_visits`
	var args []any
	if researcherID != "" {
		query += ` WHERE researcher_id = ?`
		args = append(args, researcherID)
	}
	query += ` ORDER BY start_date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing field visits: %w", err)
	}
	defer rows.Close()

	out := []types.FieldVisit{}
	for rows.Next() {
		v, err := scanFieldVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning field visit: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanFieldVisit(row rowScanner) (types.FieldVisit, error) {
	var (
		v                    types.FieldVisit
		scope, start, end    string
		createdAt, updatedAt string
	)
	err := row.Scan(&v.ID, &v.ResearcherID, &v.Title, &v.Destination, &scope, &v.Purpose,
		&start, &end, &v.Notes, &v.Points, &createdAt, &updatedAt)
	if err != nil {
		return types.FieldVisit{}, err
	}
	v.Scope = types.VisitScope(scope)
	v.StartDate = parseDate(start)
	v.EndDate = parseDate(end)
	v.CreatedAt = parseTime(createdAt)
	v.UpdatedAt = parseTime(updatedAt)
	return v, nil
}

const volunteeringColumns = `id, researcher_id, title, organization, role, description,
	start_date, end_date, hours, created_at, updated_at`

// CreateVolunteering inserts v. Duration and points are derived on read
// and not stored.
func (s *Store) CreateVolunteering(ctx context.Context, v *types.Volunteering) error {
	now := s.timestamp()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.CreatedAt, v.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO volunteering (`+volunteeringColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.ResearcherID, v.Title, v.Organization, v.Role, v.Description,
		v.StartDate.String(), nullDate(v.EndDate), v.Hours, formatTime(now), formatTime(now),
	)
	if err != nil {
		return translate(err, "researcher", "volunteering record already exists")
	}
	return nil
}

// UpdateVolunteering replaces the editable fields of v.
func (s *Store) UpdateVolunteering(ctx context.Context, v *types.Volunteering) error {
	v.UpdatedAt = s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`UPDATE volunteering SET title = ?, organization = ?, role = ?, description = ?,
			start_date = ?, end_date = ?, hours = ?, updated_at = ?
		 WHERE id = ?`,
		v.Title, v.Organization, v.Role, v.Description, v.StartDate.String(),
		nullDate(v.EndDate), v.Hours, formatTime(v.UpdatedAt), v.ID,
	)
	if err != nil {
		return fmt.Errorf("updating volunteering: %w", err)
	}
	return requireAffected(res, "volunteering record")
}

// DeleteVolunteering removes the record with id.
func (s *Store) DeleteVolunteering(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM volunteering WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting volunteering: %w", err)
	}
	return requireAffected(res, "volunteering record")
}

// GetVolunteering returns the record with id.
func (s *Store) GetVolunteering(ctx context.Context, id string) (types.Volunteering, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+volunteeringColumns+` FROM volunteering WHERE id = ?`, id)
	v, err := scanVolunteering(row)
	if err != nil {
		return types.Volunteering{}, translate(err, "volunteering record", "")
	}
	return v, nil
}

// ListVolunteering returns the records of researcherID, latest first. An
// empty researcherID lists all records.
func (s *Store) ListVolunteering(ctx context.Context, researcherID string) ([]types.Volunteering, error) {
	query := `SELECT ` + volunteeringColumns + ` FROM volunteering`
	var args []any
	if researcherID != "" {
		query += ` WHERE researcher_id = ?`
		args = append(args, researcherID)
	}
	query += ` ORDER BY start_date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing volunteering: %w", err)
	}
	defer rows.Close()

	out := []types.Volunteering{}
	for rows.Next() {
		v, err := scanVolunteering(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning volunteering: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVolunteering(row rowScanner) (types.Volunteering, error) {
	var (
		v                    types.Volunteering
		start                string
		end                  sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&v.ID, &v.ResearcherID, &v.Title, &v.Organization, &v.Role, &v.Description,
		&start, &end, &v.Hours, &createdAt, &updatedAt)
	if err != nil {
		return types.Volunteering{}, err
	}
	v.StartDate = parseDate(start)
	v.EndDate = parseNullDate(end)
	v.CreatedAt = parseTime(createdAt)
	v.UpdatedAt = parseTime(updatedAt)
	return v, nil
}
