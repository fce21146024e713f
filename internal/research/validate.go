// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/pkg/types"
)

// MaxTitleLength is the longest title accepted, in runes.
const MaxTitleLength = 500

// Normalize returns the record described by in with whitespace trimmed and
// DOI, authors, and keywords normalised. A DOI that does not normalise is
// kept as typed so Validate can report it.
func Normalize(in types.ResearchInput) types.Research {
	r := types.Research{
		Title:           strings.Join(strings.Fields(in.Title), " "),
		Abstract:        strings.TrimSpace(in.Abstract),
		Type:            in.Type,
		Status:          in.Status,
		Journal:         strings.TrimSpace(in.Journal),
		Publisher:       strings.TrimSpace(in.Publisher),
		DOI:             strings.TrimSpace(in.DOI),
		Volume:          strings.TrimSpace(in.Volume),
		Issue:           strings.TrimSpace(in.Issue),
		Pages:           strings.TrimSpace(in.Pages),
		ISSN:            strings.TrimSpace(in.ISSN),
		URL:             strings.TrimSpace(in.URL),
		PublicationDate: in.PublicationDate,
		Authors:         NormalizeAuthors(in.Authors),
		Keywords:        NormalizeKeywords(in.Keywords),
		Indexing:        in.Indexing,
	}
	if r.PublicationDate != nil && r.PublicationDate.IsZero() {
		r.PublicationDate = nil
	}
	if doi, ok := NormalizeDOI(r.DOI); ok {
		r.DOI = doi
	}
	return r
}

// Validate checks r against the research record rules as of now, collecting
// every failure into one INVALID error.
func Validate(r types.Research, now time.Time) error {
	var v apperr.Validation

	switch n := utf8.RuneCountInString(r.Title); {
	case n == 0:
		v.Add("title", "title is required")
	case n > MaxTitleLength:
		v.Add("title", "title must be at most 500 characters")
	}
	v.Check(r.Type.Valid(), "type", "unknown research type")
	v.Check(r.Status.Valid(), "status", "unknown research status")

	if r.Status == types.StatusPublished {
		v.Check(r.PublicationDate != nil, "publication_date", "published research needs a publication date")
		v.Check(r.Journal != "" || r.Publisher != "", "journal", "published research needs a journal or publisher")
	}
	if r.PublicationDate != nil {
		v.Check(!r.PublicationDate.After(types.DateOf(now)), "publication_date", "publication date must not be in the future")
	}

	if _, ok := NormalizeDOI(r.DOI); !ok {
		v.Add("doi", "DOI must look like 10.NNNN/suffix")
	}
	if r.URL != "" {
		u, err := url.Parse(r.URL)
		v.Check(err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "",
			"url", "URL must be an http or https address")
	}

	idx := r.Indexing
	v.Check(idx.ScopusQuartile.Valid(), "indexing.scopus_quartile", "quartile must be Q1, Q2, Q3, or Q4")
	v.Check(idx.ISIQuartile.Valid(), "indexing.isi_quartile", "quartile must be Q1, Q2, Q3, or Q4")
	v.Check(idx.ScopusQuartile == types.QuartileNone || idx.Scopus,
		"indexing.scopus_quartile", "a Scopus quartile requires Scopus indexing")
	v.Check(idx.ISIQuartile == types.QuartileNone || idx.ISI,
		"indexing.isi_quartile", "an ISI quartile requires ISI indexing")
	v.Check(idx.ImpactFactor >= 0, "indexing.impact_factor", "impact factor must not be negative")

	return v.Err()
}
