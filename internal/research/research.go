// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research validates and manages research records and prefills
// new records from DOI metadata.
package research

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/internal/lookup"
	"github.com/pdiddy/research-portal/pkg/types"
)

// Store is the persistence the research service needs.
type Store interface {
	CreateResearch(ctx context.Context, r *types.Research, titleKey string) error
	UpdateResearch(ctx context.Context, r *types.Research, titleKey string) error
	DeleteResearch(ctx context.Context, id string) error
	GetResearch(ctx context.Context, id string) (types.Research, error)
	DuplicateResearch(ctx context.Context, researcherID, titleKey, doi, excludeID string) (string, error)
	ListResearch(ctx context.Context, f types.ResearchFilter) (types.Page[types.Research], error)
}

// Lookup resolves DOI metadata.
type Lookup interface {
	LookupDOI(ctx context.Context, doi string) (lookup.Work, error)
}

// Service applies research record rules on top of a Store.
type Service struct {
	store  Store
	lookup Lookup
	logger *zap.Logger
	now    func() time.Time
}

// NewService returns a Service. lookup may be nil, which disables
// ImportDOI; now nil means time.Now.
func NewService(store Store, lookup Lookup, logger *zap.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, lookup: lookup, logger: logger, now: now}
}

// Create validates in and stores it as a record of the actor.
func (s *Service) Create(ctx context.Context, actor types.Actor, in types.ResearchInput) (types.Research, error) {
	r := Normalize(in)
	r.ResearcherID = actor.UserID
	if err := Validate(r, s.now()); err != nil {
		return types.Research{}, err
	}

	key := TitleKey(r.Title)
	if err := s.checkDuplicate(ctx, r, key); err != nil {
		return types.Research{}, err
	}
	if err := s.store.CreateResearch(ctx, &r, key); err != nil {
		return types.Research{}, fmt.Errorf("creating research: %w", err)
	}
	s.logger.Info("research created",
		zap.String("id", r.ID), zap.String("researcher", r.ResearcherID), zap.String("status", string(r.Status)))
	return r, nil
}

// Get returns one record. Records are readable by every portal user.
func (s *Service) Get(ctx context.Context, id string) (types.Research, error) {
	return s.store.GetResearch(ctx, id)
}

// Update replaces the fields of a record owned by the actor, or of any
// record for an admin.
func (s *Service) Update(ctx context.Context, actor types.Actor, id string, in types.ResearchInput) (types.Research, error) {
	existing, err := s.store.GetResearch(ctx, id)
	if err != nil {
		return types.Research{}, err
	}
	if !actor.CanModify(existing.ResearcherID) {
		return types.Research{}, apperr.Forbidden("only the owner can change this research record")
	}

	r := Normalize(in)
	r.ID = existing.ID
	r.ResearcherID = existing.ResearcherID
	r.CreatedAt = existing.CreatedAt
	if err := Validate(r, s.now()); err != nil {
		return types.Research{}, err
	}

	key := TitleKey(r.Title)
	if err := s.checkDuplicate(ctx, r, key); err != nil {
		return types.Research{}, err
	}
	if err := s.store.UpdateResearch(ctx, &r, key); err != nil {
		return types.Research{}, fmt.Errorf("updating research: %w", err)
	}
	return r, nil
}

// Delete removes a record owned by the actor.
func (s *Service) Delete(ctx context.Context, actor types.Actor, id string) error {
	existing, err := s.store.GetResearch(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(existing.ResearcherID) {
		return apperr.Forbidden("only the owner can delete this research record")
	}
	if err := s.store.DeleteResearch(ctx, id); err != nil {
		return err
	}
	s.logger.Info("research deleted", zap.String("id", id), zap.String("by", actor.UserID))
	return nil
}

// List returns one page of records matching f.
func (s *Service) List(ctx context.Context, f types.ResearchFilter) (types.Page[types.Research], error) {
	var v apperr.Validation
	v.Check(f.Type == "" || f.Type.Valid(), "type", "unknown research type")
	v.Check(f.Status == "" || f.Status.Valid(), "status", "unknown research status")
	switch f.Indexed {
	case "", types.IndexAny, types.IndexScopus, types.IndexISI:
	default:
		v.Add("indexed", "indexed must be any, scopus, or isi")
	}
	if err := v.Err(); err != nil {
		return types.Page[types.Research]{}, err
	}
	return s.store.ListResearch(ctx, f)
}

// ImportDOI resolves doi and returns an unsaved, prefilled input.
func (s *Service) ImportDOI(ctx context.Context, raw string) (types.ResearchInput, error) {
	doi, ok := NormalizeDOI(raw)
	if !ok || doi == "" {
		var v apperr.Validation
		v.Add("doi", "DOI must look like 10.NNNN/suffix")
		return types.ResearchInput{}, v.Err()
	}
	if s.lookup == nil {
		return types.ResearchInput{}, apperr.New(apperr.CodeUnavailable, "DOI lookup is disabled")
	}

	w, err := s.lookup.LookupDOI(ctx, doi)
	if err != nil {
		return types.ResearchInput{}, err
	}

	in := types.ResearchInput{
		Title:           w.Title,
		Abstract:        w.Abstract,
		Type:            types.ResearchArticle,
		Status:          types.StatusSubmitted,
		Journal:         w.Venue,
		Publisher:       w.Publisher,
		DOI:             doi,
		Volume:          w.Volume,
		Issue:           w.Issue,
		Pages:           w.Pages,
		ISSN:            w.ISSN,
		URL:             "https://doi.org/" + doi,
		PublicationDate: w.PublicationDate,
		Authors:         NormalizeAuthors(w.Authors),
		Keywords:        NormalizeKeywords(w.Keywords),
	}
	if t, ok := workTypes[w.Type]; ok {
		in.Type = t
	}
	// PUBLISHED needs a venue to validate.
	if in.PublicationDate != nil && (in.Journal != "" || in.Publisher != "") {
		in.Status = types.StatusPublished
	}
	return in, nil
}

// workTypes maps OpenAlex work types to research types.
var workTypes = map[string]types.ResearchType{
	"article":             types.ResearchArticle,
	"book":                types.ResearchBook,
	"book-chapter":        types.ResearchBookChapter,
	"proceedings":         types.ResearchConferencePaper,
	"dissertation":        types.ResearchThesis,
	"report":              types.ResearchReport,
	"proceedings-article": types.ResearchConferencePaper,
}

func (s *Service) checkDuplicate(ctx context.Context, r types.Research, key string) error {
	kind, err := s.store.DuplicateResearch(ctx, r.ResearcherID, key, r.DOI, r.ID)
	if err != nil {
		return err
	}
	switch kind {
	case "doi":
		return apperr.Conflict("a research record with this DOI already exists")
	case "title":
		return apperr.Conflict("a research record with this title already exists")
	}
	return nil
}
