// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/internal/lookup"
	"github.com/pdiddy/research-portal/internal/store"
	"github.com/pdiddy/research-portal/pkg/types"
)

var now = time.Date(2024, 6, 30, 12, 0, 0, 0, time.UTC)

func datePtr(y int, m time.Month, d int) *types.Date {
	v := types.NewDate(y, m, d)
	return &v
}

func validInput() types.ResearchInput {
	return types.ResearchInput{
		Title:           "Groundwater recharge in semi-arid basins",
		Type:            types.ResearchArticle,
		Status:          types.StatusPublished,
		Journal:         "Journal of Hydrology",
		DOI:             "https://doi.org/10.1234/GW.2024",
		PublicationDate: datePtr(2024, 3, 1),
		Keywords:        []string{"Groundwater", "groundwater", "Recharge"},
		Indexing:        types.Indexing{Scopus: true, ScopusQuartile: types.Q1, ImpactFactor: 5.1},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.ResearchInput)
		fields []string
	}{
		{"valid", func(*types.ResearchInput) {}, nil},
		{"missing title", func(in *types.ResearchInput) { in.Title = "   " }, []string{"title"}},
		{"long title", func(in *types.ResearchInput) { in.Title = strings.Repeat("é", 501) }, []string{"title"}},
		{"title at limit", func(in *types.ResearchInput) { in.Title = strings.Repeat("é", 500) }, nil},
		{"bad enums", func(in *types.ResearchInput) { in.Type = "POEM"; in.Status = "DONE" }, []string{"type", "status"}},
		{"published without date or venue", func(in *types.ResearchInput) {
			in.PublicationDate = nil
			in.Journal = ""
		}, []string{"publication_date", "journal"}},
		{"publisher satisfies venue", func(in *types.ResearchInput) {
			in.Journal = ""
			in.Publisher = "Springer"
		}, nil},
		{"in progress needs no date", func(in *types.ResearchInput) {
			in.Status = types.StatusInProgress
			in.PublicationDate = nil
			in.Journal = ""
		}, nil},
		{"future date", func(in *types.ResearchInput) { in.PublicationDate = datePtr(2024, 7, 1) }, []string{"publication_date"}},
		{"bad doi", func(in *types.ResearchInput) { in.DOI = "doi:11.1/x" }, []string{"doi"}},
		{"bad url", func(in *types.ResearchInput) { in.URL = "ftp://example.org/x" }, []string{"url"}},
		{"quartile without index", func(in *types.ResearchInput) {
			in.Indexing = types.Indexing{ISIQuartile: types.Q2}
		}, []string{"indexing.isi_quartile"}},
		{"unknown quartile", func(in *types.ResearchInput) {
			in.Indexing = types.Indexing{Scopus: true, ScopusQuartile: "Q5"}
		}, []string{"indexing.scopus_quartile"}},
		{"negative impact factor", func(in *types.ResearchInput) { in.Indexing.ImpactFactor = -1 }, []string{"indexing.impact_factor"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := Validate(Normalize(in), now)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrInvalid))
			fields := apperr.FieldsOf(err)
			for _, f := range tt.fields {
				assert.Contains(t, fields, f)
			}
			assert.Len(t, fields, len(tt.fields))
		})
	}
}

func TestNormalizeInput(t *testing.T) {
	r := Normalize(validInput())
	assert.Equal(t, "10.1234/gw.2024", r.DOI)
	assert.Equal(t, []string{"groundwater", "recharge"}, r.Keywords)
	assert.Equal(t, []string{}, r.Authors)

	in := validInput()
	zero := types.Date{}
	in.PublicationDate = &zero
	assert.Nil(t, Normalize(in).PublicationDate)
}

// --- service ---

type fakeLookup struct {
	work lookup.Work
	err  error
	got  string
}

func (f *fakeLookup) LookupDOI(_ context.Context, doi string) (lookup.Work, error) {
	f.got = doi
	return f.work, f.err
}

func testService(t *testing.T, lk Lookup) (*Service, types.User, types.User) {
	t.Helper()
	st, err := store.Open(types.DatabaseConfig{Path: filepath.Join(t.TempDir(), "portal.db")})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	owner := types.User{Email: "r@uni.example", FullName: "Rana", Role: types.RoleResearcher, Active: true, PasswordHash: "x"}
	other := types.User{Email: "o@uni.example", FullName: "Omar", Role: types.RoleResearcher, Active: true, PasswordHash: "x"}
	require.NoError(t, st.CreateUser(ctx, &owner))
	require.NoError(t, st.CreateUser(ctx, &other))
	return NewService(st, lk, nil, func() time.Time { return now }), owner, other
}

func actorOf(u types.User) types.Actor { return types.Actor{UserID: u.ID, Role: u.Role} }

func TestServiceCreateAndDuplicates(t *testing.T) {
	svc, owner, other := testService(t, nil)
	ctx := context.Background()

	r, err := svc.Create(ctx, actorOf(owner), validInput())
	require.NoError(t, err)
	assert.Equal(t, owner.ID, r.ResearcherID)
	assert.Equal(t, "10.1234/gw.2024", r.DOI)

	dupDOI := validInput()
	dupDOI.Title = "A different title"
	dupDOI.DOI = "doi:10.1234/gw.2024"
	_, err = svc.Create(ctx, actorOf(owner), dupDOI)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Contains(t, err.Error(), "DOI")

	dupTitle := validInput()
	dupTitle.Title = "GROUNDWATER recharge, in semi-arid basins."
	dupTitle.DOI = ""
	_, err = svc.Create(ctx, actorOf(owner), dupTitle)
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.Contains(t, err.Error(), "title")

	// Another researcher may hold the same title and DOI.
	_, err = svc.Create(ctx, actorOf(other), validInput())
	require.NoError(t, err)
}

func TestServiceUpdateDeletePermissions(t *testing.T) {
	svc, owner, other := testService(t, nil)
	ctx := context.Background()

	r, err := svc.Create(ctx, actorOf(owner), validInput())
	require.NoError(t, err)

	in := validInput()
	in.Abstract = "Updated"
	_, err = svc.Update(ctx, actorOf(other), r.ID, in)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	// Re-saving a record does not collide with itself.
	updated, err := svc.Update(ctx, actorOf(owner), r.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Abstract)
	assert.Equal(t, owner.ID, updated.ResearcherID)

	got, err := svc.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Abstract)

	assert.True(t, errors.Is(svc.Delete(ctx, actorOf(other), r.ID), apperr.ErrForbidden))
	admin := types.Actor{UserID: "admin", Role: types.RoleAdmin}
	require.NoError(t, svc.Delete(ctx, admin, r.ID))
	_, err = svc.Get(ctx, r.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestServiceListRejectsUnknownFilters(t *testing.T) {
	svc, owner, _ := testService(t, nil)
	ctx := context.Background()

	_, err := svc.List(ctx, types.ResearchFilter{Indexed: "pubmed"})
	assert.Contains(t, apperr.FieldsOf(err), "indexed")

	_, err = svc.Create(ctx, actorOf(owner), validInput())
	require.NoError(t, err)
	page, err := svc.List(ctx, types.ResearchFilter{ResearcherID: owner.ID, Indexed: types.IndexScopus})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestImportDOI(t *testing.T) {
	fake := &fakeLookup{work: lookup.Work{
		Title: "Recharge", Venue: "Hydrology", Publisher: "Elsevier", Type: "book-chapter",
		Authors: []string{" Rana Ali "}, Keywords: []string{"Groundwater"},
		PublicationDate: datePtr(2023, 4, 12),
	}}
	svc, _, _ := testService(t, fake)

	in, err := svc.ImportDOI(context.Background(), "https://doi.org/10.1234/ABC")
	require.NoError(t, err)
	assert.Equal(t, "10.1234/abc", fake.got)
	assert.Equal(t, types.ResearchBookChapter, in.Type)
	assert.Equal(t, types.StatusPublished, in.Status)
	assert.Equal(t, "Hydrology", in.Journal)
	assert.Equal(t, []string{"Rana Ali"}, in.Authors)
	assert.Equal(t, []string{"groundwater"}, in.Keywords)
	assert.Equal(t, "https://doi.org/10.1234/abc", in.URL)

	fake.work.PublicationDate = nil
	in, err = svc.ImportDOI(context.Background(), "10.1234/abc")
	require.NoError(t, err)
	assert.Equal(t, types.StatusSubmitted, in.Status)

	fake.work.PublicationDate = datePtr(2023, 4, 12)
	fake.work.Venue, fake.work.Publisher = "", ""
	in, err = svc.ImportDOI(context.Background(), "10.1234/abc")
	require.NoError(t, err)
	assert.Equal(t, types.StatusSubmitted, in.Status)
	assert.NoError(t, Validate(Normalize(in), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err = svc.ImportDOI(context.Background(), "nonsense")
	assert.True(t, errors.Is(err, apperr.ErrInvalid))

	fake.err = apperr.NotFound("work")
	_, err = svc.ImportDOI(context.Background(), "10.1234/abc")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestImportDOIWithoutLookup(t *testing.T) {
	svc, _, _ := testService(t, nil)
	_, err := svc.ImportDOI(context.Background(), "10.1234/abc")
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))
}
