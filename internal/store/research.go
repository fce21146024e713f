// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/research-portal/pkg/types"
)

const researchColumns = `id, researcher_id, title, abstract, type, status, journal, publisher,
	doi, volume, issue, pages, issn, url, publication_date, authors, keywords,
	scopus, scopus_quartile, isi, isi_quartile, impact_factor, created_at, updated_at`

const researchConflict = "a research record with this title or DOI already exists"

// CreateResearch inserts r. titleKey is the normalised title used for
// per-researcher duplicate detection.
func (s *Store) CreateResearch(ctx context.Context, r *types.Research, titleKey string) error {
	now := s.timestamp()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt, r.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO research (`+researchColumns+`, title_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append(researchArgs(r), formatTime(now), formatTime(now), titleKey)...,
	)
	if err != nil {
		return translate(err, "researcher", researchConflict)
	}
	return nil
}

// UpdateResearch replaces the editable fields of r.
func (s *Store) UpdateResearch(ctx context.Context, r *types.Research, titleKey string) error {
	r.UpdatedAt = s.timestamp()
	res, err := s.db.ExecContext(ctx,
		`UPDATE research SET title = ?, abstract = ?, type = ?, status = ?, journal = ?,
			publisher = ?, doi = ?, volume = ?, issue = ?, pages = ?, issn = ?, url = ?,
			publication_date = ?, authors = ?, keywords = ?, scopus = ?, scopus_quartile = ?,
			isi = ?, isi_quartile = ?, impact_factor = ?, title_key = ?, updated_at = ?
		 WHERE id = ?`,
		r.Title, r.Abstract, string(r.Type), string(r.Status), r.Journal,
		r.Publisher, r.DOI, r.Volume, r.Issue, r.Pages, r.ISSN, r.URL,
		nullDate(r.PublicationDate), encodeJSON(r.Authors), encodeJSON(r.Keywords),
		boolInt(r.Indexing.Scopus), string(r.Indexing.ScopusQuartile),
		boolInt(r.Indexing.ISI), string(r.Indexing.ISIQuartile), r.Indexing.ImpactFactor,
		titleKey, formatTime(r.UpdatedAt), r.ID,
	)
	if err != nil {
		return translate(err, "research record", researchConflict)
	}
	return requireAffected(res, "research record")
}

// DeleteResearch removes the record with id.
func (s *Store) DeleteResearch(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM research WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting research: %w", err)
	}
	return requireAffected(res, "research record")
}

// GetResearch returns the record with id.
func (s *Store) GetResearch(ctx context.Context, id string) (types.Research, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+researchColumns+` FROM research WHERE id = ?`, id)
	r, err := scanResearch(row)
	if err != nil {
		return types.Research{}, translate(err, "research record", "")
	}
	return r, nil
}

// DuplicateResearch reports which uniqueness rule another record of the
// same researcher violates: "doi", "title", or "" when none. excludeID skips
// the record being updated.
func (s *Store) DuplicateResearch(ctx context.Context, researcherID, titleKey, doi, excludeID string) (string, error) {
	if doi != "" {
		var id string
		err := s.db.QueryRowContext(ctx,
			`SELECT id FROM research WHERE researcher_id = ? AND doi = ? AND id != ? LIMIT 1`,
			researcherID, doi, excludeID).Scan(&id)
		if err == nil {
			return "doi", nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("checking duplicate DOI: %w", err)
		}
	}
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM research WHERE researcher_id = ? AND title_key = ? AND id != ? LIMIT 1`,
		researcherID, titleKey, excludeID).Scan(&id)
	if err == nil {
		return "title", nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("checking duplicate title: %w", err)
	}
	return "", nil
}

// ListResearch returns one page of records matching f, newest publications
// first; undated records sort last.
func (s *Store) ListResearch(ctx context.Context, f types.ResearchFilter) (types.Page[types.Research], error) {
	limit, offset := clampPage(f.Limit, f.Offset)
	where, args := researchWhere(f)

	page := types.Page[types.Research]{Items: []types.Research{}, Limit: limit, Offset: offset}
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM research`+where, args...).Scan(&page.Total); err != nil {
		return page, fmt.Errorf("counting research: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+researchColumns+` FROM research`+where+`
		 ORDER BY publication_date IS NULL, publication_date DESC, created_at DESC, id
		 LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return page, fmt.Errorf("querying research: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanResearch(rows)
		if err != nil {
			return page, fmt.Errorf("scanning research: %w", err)
		}
		page.Items = append(page.Items, r)
	}
	return page, rows.Err()
}

// AllResearch returns every record of researcherID with the given status
// (empty for any), newest publications first.
func (s *Store) AllResearch(ctx context.Context, researcherID string, status types.ResearchStatus) ([]types.Research, error) {
	where, args := researchWhere(types.ResearchFilter{ResearcherID: researcherID, Status: status})
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+researchColumns+` FROM research`+where+`
		 ORDER BY publication_date IS NULL, publication_date DESC, created_at DESC, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying research: %w", err)
	}
	defer rows.Close()

	out := []types.Research{}
	for rows.Next() {
		r, err := scanResearch(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning research: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func researchWhere(f types.ResearchFilter) (string, []any) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(` WHERE 1=1`)

	if f.ResearcherID != "" {
		qb.WriteString(` AND researcher_id = ?`)
		args = append(args, f.ResearcherID)
	}
	if f.Type != "" {
		qb.WriteString(` AND type = ?`)
		args = append(args, string(f.Type))
	}
	if f.Status != "" {
		qb.WriteString(` AND status = ?`)
		args = append(args, string(f.Status))
	}
	if f.Year > 0 {
		qb.WriteString(` AND substr(publication_date, 1, 4) = ?`)
		args = append(args, fmt.Sprintf("%04d", f.Year))
	}
	switch f.Indexed {
	case types.IndexScopus:
		qb.WriteString(` AND scopus = 1`)
	case types.IndexISI:
		qb.WriteString(` AND isi = 1`)
	case types.IndexAny:
		qb.WriteString(` AND (scopus = 1 OR isi = 1)`)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		pattern := likePattern(q)
		qb.WriteString(` AND (title LIKE ? ESCAPE '\' OR abstract LIKE ? ESCAPE '\' OR keywords LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	return qb.String(), args
}

func researchArgs(r *types.Research) []any {
	return []any{
		r.ID, r.ResearcherID, r.Title, r.Abstract, string(r.Type), string(r.Status),
		r.Journal, r.Publisher, r.DOI, r.Volume, r.Issue, r.Pages, r.ISSN, r.URL,
		nullDate(r.PublicationDate), encodeJSON(r.Authors), encodeJSON(r.Keywords),
		boolInt(r.Indexing.Scopus), string(r.Indexing.ScopusQuartile),
		boolInt(r.Indexing.ISI), string(r.Indexing.ISIQuartile), r.Indexing.ImpactFactor,
	}
}

func scanResearch(row rowScanner) (types.Research, error) {
	var (
		r                    types.Research
		rtype, status        string
		pubDate              sql.NullString
		authors, keywords    string
		scopus, isi          int
		scopusQ, isiQ        string
		createdAt, updatedAt string
	)
	err := row.Scan(&r.ID, &r.ResearcherID, &r.Title, &r.Abstract, &rtype, &status,
		&r.Journal, &r.Publisher, &r.DOI, &r.Volume, &r.Issue, &r.Pages, &r.ISSN, &r.URL,
		&pubDate, &authors, &keywords, &scopus, &scopusQ, &isi, &isiQ,
		&r.Indexing.ImpactFactor, &createdAt, &updatedAt)
	if err != nil {
		return types.Research{}, err
	}
	r.Type = types.ResearchType(rtype)
	r.Status = types.ResearchStatus(status)
	r.PublicationDate = parseNullDate(pubDate)
	r.Authors = decodeStrings(authors)
	r.Keywords = decodeStrings(keywords)
	r.Indexing.Scopus = scopus == 1
	r.Indexing.ScopusQuartile = types.Quartile(scopusQ)
	r.Indexing.ISI = isi == 1
	r.Indexing.ISIQuartile = types.Quartile(isiQ)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return r, nil
}
