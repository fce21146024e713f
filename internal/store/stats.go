// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/pdiddy/research-portal/pkg/types"
)

// ResearchStats aggregates research records of researcherID, or of every
// researcher when researcherID is empty.
func (s *Store) ResearchStats(ctx context.Context, researcherID string) (types.ResearchStats, error) {
	st := types.ResearchStats{
		ByStatus:        map[types.ResearchStatus]int{},
		ByType:          map[types.ResearchType]int{},
		ByYear:          []types.YearCount{},
		ScopusQuartiles: map[types.Quartile]int{},
		ISIQuartiles:    map[types.Quartile]int{},
	}
	where, args := researchWhere(types.ResearchFilter{ResearcherID: researcherID})

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, type, count(*) FROM research`+where+` GROUP BY status, type`, args...)
	if err != nil {
		return st, fmt.Errorf("aggregating research by status: %w", err)
	}
	for rows.Next() {
		var status, rtype string
		var n int
		if err := rows.Scan(&status, &rtype, &n); err != nil {
			rows.Close()
			return st, fmt.Errorf("scanning research aggregate: %w", err)
		}
		st.Total += n
		st.ByStatus[types.ResearchStatus(status)] += n
		st.ByType[types.ResearchType(rtype)] += n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT substr(publication_date, 1, 4) AS year, count(*) FROM research`+where+`
		 AND publication_date IS NOT NULL GROUP BY year ORDER BY year`, args...)
	if err != nil {
		return st, fmt.Errorf("aggregating research by year: %w", err)
	}
	for rows.Next() {
		var year string
		var n int
		if err := rows.Scan(&year, &n); err != nil {
			rows.Close()
			return st, fmt.Errorf("scanning year aggregate: %w", err)
		}
		y, err := strconv.Atoi(year)
		if err != nil {
			continue
		}
		st.ByYear = append(st.ByYear, types.YearCount{Year: y, Count: n})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT scopus, scopus_quartile, isi, isi_quartile, count(*) FROM research`+where+`
		 AND (scopus = 1 OR isi = 1)
		 GROUP BY scopus, scopus_quartile, isi, isi_quartile`, args...)
	if err != nil {
		return st, fmt.Errorf("aggregating indexing: %w", err)
	}
	for rows.Next() {
		var scopus, isi, n int
		var scopusQ, isiQ string
		if err := rows.Scan(&scopus, &scopusQ, &isi, &isiQ, &n); err != nil {
			rows.Close()
			return st, fmt.Errorf("scanning indexing aggregate: %w", err)
		}
		if scopus == 1 {
			st.Scopus += n
			if scopusQ != "" {
				st.ScopusQuartiles[types.Quartile(scopusQ)] += n
			}
		}
		if isi == 1 {
			st.ISI += n
			if isiQ != "" {
				st.ISIQuartiles[types.Quartile(isiQ)] += n
			}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return st, err
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		`SELECT avg(impact_factor) FROM research`+where+` AND impact_factor > 0`, args...,
	).Scan(&avg); err != nil {
		return st, fmt.Errorf("averaging impact factor: %w", err)
	}
	if avg.Valid {
		st.AvgImpactFactor = avg.Float64
	}

	return st, nil
}

// ProjectStats aggregates collaboration data for userID. With an empty
// userID it counts across the portal: Owned is the number of projects and
// Member the number of non-owner memberships.
func (s *Store) ProjectStats(ctx context.Context, userID string) (types.ProjectStats, error) {
	var st types.ProjectStats

	type countQuery struct {
		dest  *int
		query string
		args  []any
	}
	queries := []countQuery{
		{&st.Open, `SELECT count(*) FROM projects WHERE status = ?`, []any{string(types.ProjectOpen)}},
	}
	if userID == "" {
		queries = append(queries,
			countQuery{&st.Owned, `SELECT count(*) FROM projects`, nil},
			countQuery{&st.Member, `SELECT count(*) FROM project_members WHERE role != ?`,
				[]any{string(types.MemberOwner)}},
			countQuery{&st.PendingRequests, `SELECT count(*) FROM join_requests WHERE status = ?`,
				[]any{string(types.JoinPending)}},
		)
	} else {
		queries = append(queries,
			countQuery{&st.Owned, `SELECT count(*) FROM projects WHERE owner_id = ?`, []any{userID}},
			countQuery{&st.Member, `SELECT count(*) FROM project_members WHERE user_id = ? AND role != ?`,
				[]any{userID, string(types.MemberOwner)}},
			countQuery{&st.PendingRequests, `SELECT count(*) FROM join_requests r
				JOIN projects p ON p.id = r.project_id
				WHERE p.owner_id = ? AND r.status = ?`,
				[]any{userID, string(types.JoinPending)}},
		)
	}

	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dest); err != nil {
			return st, fmt.Errorf("aggregating projects: %w", err)
		}
	}
	return st, nil
}

// ResearcherCounts returns the number of active and total RESEARCHER accounts.
func (s *Store) ResearcherCounts(ctx context.Context) (types.ResearcherStats, error) {
	var st types.ResearcherStats
	err := s.db.QueryRowContext(ctx,
		`SELECT coalesce(sum(active), 0), count(*) FROM users WHERE role = ?`,
		string(types.RoleResearcher)).Scan(&st.Active, &st.Total)
	if err != nil {
		return st, fmt.Errorf("counting researchers: %w", err)
	}
	return st, nil
}

// PublicationCounts returns every active researcher with their number of
// PUBLISHED records, including researchers with none.
func (s *Store) PublicationCounts(ctx context.Context) ([]types.TopResearcher, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.full_name,
			(SELECT count(*) FROM research r WHERE r.researcher_id = u.id AND r.status = ?)
		 FROM users u WHERE u.role = ? AND u.active = 1`,
		string(types.StatusPublished), string(types.RoleResearcher))
	if err != nil {
		return nil, fmt.Errorf("counting publications: %w", err)
	}
	defer rows.Close()

	out := []types.TopResearcher{}
	for rows.Next() {
		var t types.TopResearcher
		if err := rows.Scan(&t.ID, &t.FullName, &t.Publications); err != nil {
			return nil, fmt.Errorf("scanning publication count: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
