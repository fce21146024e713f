// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pdiddy/research-portal/pkg/types"
)

// GetCV returns the stored CV of researcherID, or an empty CV when none
// has been saved.
func (s *Store) GetCV(ctx context.Context, researcherID string) (types.CV, error) {
	var (
		cv                                       types.CV
		education, experience, skills, languages string
		updatedAt                                string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT researcher_id, summary, phone, website, orcid, education, experience,
			skills, languages, updated_at
		 FROM cvs WHERE researcher_id = ?`, researcherID,
	).Scan(&cv.ResearcherID, &cv.Summary, &cv.Phone, &cv.Website, &cv.ORCID,
		&education, &experience, &skills, &languages, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return emptyCV(researcherID), nil
	}
	if err != nil {
		return types.CV{}, fmt.Errorf("loading CV: %w", err)
	}
	cv.Education = decodeJSON[types.Education](education)
	cv.Experience = decodeJSON[types.Experience](experience)
	cv.Skills = decodeStrings(skills)
	cv.Languages = decodeJSON[types.Language](languages)
	cv.UpdatedAt = parseTime(updatedAt)
	return cv, nil
}

// SaveCV upserts cv.
func (s *Store) SaveCV(ctx context.Context, cv *types.CV) error {
	cv.UpdatedAt = s.timestamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cvs (researcher_id, summary, phone, website, orcid, education,
			experience, skills, languages, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(researcher_id) DO UPDATE SET
			summary=excluded.summary, phone=excluded.phone, website=excluded.website,
			orcid=excluded.orcid, education=excluded.education, experience=excluded.experience,
			skills=excluded.skills, languages=excluded.languages, updated_at=excluded.updated_at`,
		cv.ResearcherID, cv.Summary, cv.Phone, cv.Website, cv.ORCID,
		encodeJSON(cv.Education), encodeJSON(cv.Experience), encodeJSON(cv.Skills),
		encodeJSON(cv.Languages), formatTime(cv.UpdatedAt),
	)
	if err != nil {
		return translate(err, "researcher", "CV already exists")
	}
	return nil
}

// GetCVFile returns the uploaded CV document metadata of researcherID.
func (s *Store) GetCVFile(ctx context.Context, researcherID string) (types.CVFile, error) {
	var (
		f          types.CVFile
		uploadedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, researcher_id, file_name, content_type, size, storage_path, uploaded_at
		 FROM cv_files WHERE researcher_id = ?`, researcherID,
	).Scan(&f.ID, &f.ResearcherID, &f.FileName, &f.ContentType, &f.Size, &f.StoragePath, &uploadedAt)
	if err != nil {
		return types.CVFile{}, translate(err, "CV file", "")
	}
	f.UploadedAt = parseTime(uploadedAt)
	return f, nil
}

// ReplaceCVFile stores f as the researcher's CV document and returns the
// metadata it replaced, if any, so the caller can remove the old file.
func (s *Store) ReplaceCVFile(ctx context.Context, f *types.CVFile) (*types.CVFile, error) {
	f.UploadedAt = s.timestamp()
	var previous *types.CVFile

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var (
			old        types.CVFile
			uploadedAt string
		)
		err := tx.QueryRowContext(ctx,
			`SELECT id, researcher_id, file_name, content_type, size, storage_path, uploaded_at
			 FROM cv_files WHERE researcher_id = ?`, f.ResearcherID,
		).Scan(&old.ID, &old.ResearcherID, &old.FileName, &old.ContentType, &old.Size, &old.StoragePath, &uploadedAt)
		switch {
		case err == nil:
			old.UploadedAt = parseTime(uploadedAt)
			previous = &old
			if _, err := tx.ExecContext(ctx, `DELETE FROM cv_files WHERE id = ?`, old.ID); err != nil {
				return fmt.Errorf("removing previous CV file: %w", err)
			}
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("loading previous CV file: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO cv_files (id, researcher_id, file_name, content_type, size, storage_path, uploaded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.ResearcherID, f.FileName, f.ContentType, f.Size, f.StoragePath, formatTime(f.UploadedAt))
		if err != nil {
			return translate(err, "researcher", "CV file already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

// DeleteCVFile removes the CV document metadata of researcherID and returns
// what was removed.
func (s *Store) DeleteCVFile(ctx context.Context, researcherID string) (types.CVFile, error) {
	f, err := s.GetCVFile(ctx, researcherID)
	if err != nil {
		return types.CVFile{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cv_files WHERE id = ?`, f.ID); err != nil {
		return types.CVFile{}, fmt.Errorf("deleting CV file: %w", err)
	}
	return f, nil
}

func emptyCV(researcherID string) types.CV {
	return types.CV{
		ResearcherID: researcherID,
		Education:    []types.Education{},
		Experience:   []types.Experience{},
		Skills:       []string{},
		Languages:    []types.Language{},
	}
}
