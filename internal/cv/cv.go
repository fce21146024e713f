// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cv manages researcher CVs: the structured sections, the uploaded
// CV document, and the assembled CV with publications and activities.
package cv

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/pkg/types"
)

// MinYear is the earliest year accepted on education and experience entries.
const MinYear = 1950

// MaxFutureYears is how far ahead an expected graduation year may be.
const MaxFutureYears = 6

var orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)

// Store is the persistence the CV service needs.
type Store interface {
	GetCV(ctx context.Context, researcherID string) (types.CV, error)
	SaveCV(ctx context.Context, cv *types.CV) error
	GetCVFile(ctx context.Context, researcherID string) (types.CVFile, error)
	ReplaceCVFile(ctx context.Context, f *types.CVFile) (*types.CVFile, error)
	DeleteCVFile(ctx context.Context, researcherID string) (types.CVFile, error)

	GetUser(ctx context.Context, id string) (types.User, error)
	AllResearch(ctx context.Context, researcherID string, status types.ResearchStatus) ([]types.Research, error)
}

// Activities lists a researcher's activities with derived durations and
// points filled in.
type Activities interface {
	ListFieldVisits(ctx context.Context, researcherID string) ([]types.FieldVisit, error)
	ListVolunteering(ctx context.Context, researcherID string) ([]types.Volunteering, error)
}

// Service manages CVs.
type Service struct {
	store      Store
	activities Activities
	storage    types.StorageConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewService returns a Service that keeps uploaded documents under
// storage.Dir.
func NewService(store Store, activities Activities, storage types.StorageConfig, logger *zap.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, activities: activities, storage: storage, logger: logger, now: now}
}

// Get returns the CV of researcherID; an empty CV when none is stored.
func (s *Service) Get(ctx context.Context, researcherID string) (types.CV, error) {
	if _, err := s.store.GetUser(ctx, researcherID); err != nil {
		return types.CV{}, err
	}
	return s.store.GetCV(ctx, researcherID)
}

// Save validates cv and stores it as the actor's CV.
func (s *Service) Save(ctx context.Context, actor types.Actor, cv types.CV) (types.CV, error) {
	if cv.ResearcherID == "" {
		cv.ResearcherID = actor.UserID
	}
	if cv.ResearcherID != actor.UserID {
		return types.CV{}, apperr.Forbidden("a CV can only be edited by its owner")
	}
	cv = normalize(cv)
	if err := validate(cv, s.now().Year()); err != nil {
		return types.CV{}, err
	}
	if err := s.store.SaveCV(ctx, &cv); err != nil {
		return types.CV{}, fmt.Errorf("saving CV: %w", err)
	}
	s.logger.Info("cv saved", zap.String("researcher", cv.ResearcherID))
	return cv, nil
}

func normalize(cv types.CV) types.CV {
	cv.Summary = strings.TrimSpace(cv.Summary)
	cv.Phone = strings.TrimSpace(cv.Phone)
	cv.Website = strings.TrimSpace(cv.Website)
	cv.ORCID = strings.ToUpper(strings.TrimSpace(cv.ORCID))

	education := []types.Education{}
	for _, e := range cv.Education {
		e.Degree = collapse(e.Degree)
		e.Institution = collapse(e.Institution)
		e.Field = collapse(e.Field)
		education = append(education, e)
	}
	cv.Education = education

	experience := []types.Experience{}
	for _, e := range cv.Experience {
		e.Position = collapse(e.Position)
		e.Organization = collapse(e.Organization)
		experience = append(experience, e)
	}
	cv.Experience = experience

	skills := []string{}
	seen := map[string]bool{}
	for _, sk := range cv.Skills {
		sk = collapse(sk)
		key := strings.ToLower(sk)
		if sk == "" || seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, sk)
	}
	cv.Skills = skills

	languages := []types.Language{}
	for _, l := range cv.Languages {
		l.Name = collapse(l.Name)
		l.Level = collapse(l.Level)
		languages = append(languages, l)
	}
	cv.Languages = languages
	return cv
}

func validate(cv types.CV, year int) error {
	var v apperr.Validation
	if cv.ORCID != "" {
		v.Check(ValidORCID(cv.ORCID), "orcid", "ORCID must look like 0000-0002-1825-0097 with a valid check digit")
	}
	if cv.Website != "" {
		u, err := url.Parse(cv.Website)
		v.Check(err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "",
			"website", "website must be an http or https address")
	}

	for i, e := range cv.Education {
		key := fmt.Sprintf("education[%d]", i)
		v.Check(e.Degree != "", key+".degree", "degree is required")
		v.Check(e.Institution != "", key+".institution", "institution is required")
		if e.Year != 0 {
			v.Check(e.Year >= MinYear && e.Year <= year+MaxFutureYears, key+".year",
				fmt.Sprintf("year must be between %d and %d", MinYear, year+MaxFutureYears))
		}
	}
	for i, e := range cv.Experience {
		key := fmt.Sprintf("experience[%d]", i)
		v.Check(e.Position != "", key+".position", "position is required")
		v.Check(e.Organization != "", key+".organization", "organization is required")
		v.Check(e.StartYear >= MinYear && e.StartYear <= year, key+".start_year",
			fmt.Sprintf("start year must be between %d and %d", MinYear, year))
		if e.EndYear != 0 {
			v.Check(e.EndYear >= e.StartYear, key+".end_year", "end year must not be before start year")
		}
	}
	for i, l := range cv.Languages {
		v.Check(l.Name != "", fmt.Sprintf("languages[%d].name", i), "language name is required")
	}
	return v.Err()
}

// ValidORCID reports whether id is a well-formed ORCID iD whose last
// character is the ISO 7064 mod 11-2 check digit of the first fifteen.
func ValidORCID(id string) bool {
	if !orcidPattern.MatchString(id) {
		return false
	}
	digits := strings.ReplaceAll(id, "-", "")
	total := 0
	for _, c := range digits[:15] {
		total = (total + int(c-'0')) * 2
	}
	check := (12 - total%11) % 11
	want := byte('0' + check)
	if check == 10 {
		want = 'X'
	}
	return digits[15] == want
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
