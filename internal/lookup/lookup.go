// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lookup resolves DOI metadata through the OpenAlex API.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/internal/httputil"
	"github.com/pdiddy/research-portal/pkg/types"
)

// DefaultBaseURL is the OpenAlex API root.
const DefaultBaseURL = "https://api.openalex.org"

// Work is the subset of an OpenAlex work the portal uses to prefill a
// research record.
type Work struct {
	DOI             string
	Title           string
	Abstract        string
	Authors         []string
	Venue           string
	Publisher       string
	ISSN            string
	Volume          string
	Issue           string
	Pages           string
	PublicationDate *types.Date
	Type            string
	Keywords        []string
}

// Client queries OpenAlex for single works.
type Client struct {
	http       *http.Client
	baseURL    string
	email      string
	userAgent  string
	maxRetries int
	enabled    bool
	logger     *zap.Logger
}

// New returns a Client configured from cfg.
func New(cfg types.LookupConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		baseURL:    base,
		email:      cfg.Email,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		enabled:    cfg.Enabled,
		logger:     logger.Named("openalex"),
	}
}

// LookupDOI fetches the work registered under doi, which must already be
// normalised. A DOI OpenAlex does not know is NOT_FOUND; any other failure
// is UNAVAILABLE.
func (c *Client) LookupDOI(ctx context.Context, doi string) (Work, error) {
	if !c.enabled {
		return Work{}, apperr.New(apperr.CodeUnavailable, "DOI lookup is disabled")
	}

	apiURL := c.baseURL + "/works/https://doi.org/" + doi
	if c.email != "" {
		apiURL += "?" + url.Values{"mailto": {c.email}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return Work{}, fmt.Errorf("creating OpenAlex request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries, c.logger)
	if err != nil {
		return Work{}, apperr.Wrap(apperr.CodeUnavailable, "OpenAlex request failed", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("doi lookup",
		zap.String("doi", doi), zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return Work{}, apperr.New(apperr.CodeNotFound, "no work found for DOI "+doi)
	default:
		return Work{}, apperr.New(apperr.CodeUnavailable, fmt.Sprintf("OpenAlex returned HTTP %d", resp.StatusCode))
	}

	var w openAlexWork
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return Work{}, apperr.Wrap(apperr.CodeUnavailable, "parsing OpenAlex response", err)
	}
	return w.toWork(doi), nil
}

func (w openAlexWork) toWork(doi string) Work {
	out := Work{
		DOI:      doi,
		Title:    strings.TrimSpace(w.Title),
		Abstract: reconstructAbstract(w.AbstractInvertedIndex),
		Type:     w.Type,
		Volume:   w.Biblio.Volume,
		Issue:    w.Biblio.Issue,
		Authors:  []string{},
		Keywords: []string{},
	}
	if out.Title == "" {
		out.Title = strings.TrimSpace(w.DisplayName)
	}
	for _, a := range w.Authorships {
		if name := strings.TrimSpace(a.Author.DisplayName); name != "" {
			out.Authors = append(out.Authors, name)
		}
	}
	switch {
	case w.Biblio.FirstPage != "" && w.Biblio.LastPage != "" && w.Biblio.FirstPage != w.Biblio.LastPage:
		out.Pages = w.Biblio.FirstPage + "-" + w.Biblio.LastPage
	case w.Biblio.FirstPage != "":
		out.Pages = w.Biblio.FirstPage
	}
	if src := w.PrimaryLocation.Source; src != nil {
		out.Venue = src.DisplayName
		out.Publisher = src.HostOrganizationName
		out.ISSN = src.ISSNL
	}
	if w.PublicationDate != "" {
		if d, err := types.ParseDate(w.PublicationDate); err == nil {
			out.PublicationDate = &d
		}
	} else if w.PublicationYear > 0 {
		d := types.NewDate(w.PublicationYear, time.January, 1)
		out.PublicationDate = &d
	}
	for _, k := range w.Keywords {
		if name := strings.TrimSpace(k.DisplayName); name != "" {
			out.Keywords = append(out.Keywords, name)
		}
	}
	if len(out.Keywords) == 0 {
		for _, c := range w.Concepts {
			if c.Level <= 1 && c.DisplayName != "" {
				out.Keywords = append(out.Keywords, c.DisplayName)
			}
		}
	}
	return out
}

// reconstructAbstract rebuilds plain text from OpenAlex's
// abstract_inverted_index, which maps each word to its positions.
func reconstructAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range index {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexWork struct {
	ID                    string               `json:"id"`
	DOI                   string               `json:"doi"`
	Title                 string               `json:"title"`
	DisplayName           string               `json:"display_name"`
	Type                  string               `json:"type"`
	PublicationDate       string               `json:"publication_date"`
	PublicationYear       int                  `json:"publication_year"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	Biblio                openAlexBiblio       `json:"biblio"`
	PrimaryLocation       openAlexLocation     `json:"primary_location"`
	Keywords              []openAlexKeyword    `json:"keywords"`
	Concepts              []openAlexConcept    `json:"concepts"`
}

type openAlexAuthorship struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}

type openAlexBiblio struct {
	Volume    string `json:"volume"`
	Issue     string `json:"issue"`
	FirstPage string `json:"first_page"`
	LastPage  string `json:"last_page"`
}

type openAlexLocation struct {
	Source *openAlexSource `json:"source"`
}

type openAlexSource struct {
	DisplayName          string `json:"display_name"`
	ISSNL                string `json:"issn_l"`
	HostOrganizationName string `json:"host_organization_name"`
}

type openAlexKeyword struct {
	DisplayName string `json:"display_name"`
}

type openAlexConcept struct {
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
}
