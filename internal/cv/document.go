// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-portal/internal/activity"
	"github.com/pdiddy/research-portal/internal/apperr"
	"github.com/pdiddy/research-portal/pkg/types"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Build assembles the full CV of researcherID: profile, CV sections,
// published research, activities, and the uploaded document's metadata.
func (s *Service) Build(ctx context.Context, researcherID string) (types.CVDocument, error) {
	u, err := s.store.GetUser(ctx, researcherID)
	if err != nil {
		return types.CVDocument{}, err
	}
	cv, err := s.store.GetCV(ctx, researcherID)
	if err != nil {
		return types.CVDocument{}, err
	}
	pubs, err := s.store.AllResearch(ctx, researcherID, types.StatusPublished)
	if err != nil {
		return types.CVDocument{}, fmt.Errorf("loading publications: %w", err)
	}
	visits, err := s.activities.ListFieldVisits(ctx, researcherID)
	if err != nil {
		return types.CVDocument{}, fmt.Errorf("loading field visits: %w", err)
	}
	vols, err := s.activities.ListVolunteering(ctx, researcherID)
	if err != nil {
		return types.CVDocument{}, fmt.Errorf("loading volunteering: %w", err)
	}

	doc := types.CVDocument{
		Researcher:   u,
		CV:           cv,
		Publications: pubs,
		FieldVisits:  visits,
		Volunteering: vols,
		Activities:   activity.Summarize(visits, vols),
		GeneratedAt:  s.now().UTC(),
	}
	f, err := s.store.GetCVFile(ctx, researcherID)
	switch {
	case err == nil:
		doc.File = &f
	case !errors.Is(err, apperr.ErrNotFound):
		return types.CVDocument{}, fmt.Errorf("loading CV file: %w", err)
	}
	return doc, nil
}

// ParseFormat maps a user-supplied format name to FormatJSON or FormatYAML.
// Empty means JSON.
func ParseFormat(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	var v apperr.Validation
	v.Add("format", "format must be json or yaml")
	return "", v.Err()
}

// Export writes doc to w as indented JSON or YAML.
func Export(doc types.CVDocument, format string, w io.Writer) error {
	format, err := ParseFormat(format)
	if err != nil {
		return err
	}
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

// ContentType returns the MIME type for an export format.
func ContentType(format string) string {
	if format == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}
