// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Education is one degree on a CV.
type Education struct {
	Degree      string `json:"degree" yaml:"degree"`
	Institution string `json:"institution" yaml:"institution"`
	Field       string `json:"field,omitempty" yaml:"field,omitempty"`
	Year        int    `json:"year,omitempty" yaml:"year,omitempty"`
}

// Experience is one position on a CV. A zero EndYear means current.
type Experience struct {
	Position     string `json:"position" yaml:"position"`
	Organization string `json:"organization" yaml:"organization"`
	StartYear    int    `json:"start_year" yaml:"start_year"`
	EndYear      int    `json:"end_year,omitempty" yaml:"end_year,omitempty"`
}

// Language is a spoken language with a proficiency level.
type Language struct {
	Name  string `json:"name" yaml:"name"`
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
}

// CV holds the structured CV sections of a researcher.
type CV struct {
	ResearcherID string       `json:"researcher_id" yaml:"researcher_id"`
	Summary      string       `json:"summary,omitempty" yaml:"summary,omitempty"`
	Phone        string       `json:"phone,omitempty" yaml:"phone,omitempty"`
	Website      string       `json:"website,omitempty" yaml:"website,omitempty"`
	ORCID        string       `json:"orcid,omitempty" yaml:"orcid,omitempty"`
	Education    []Education  `json:"education" yaml:"education"`
	Experience   []Experience `json:"experience" yaml:"experience"`
	Skills       []string     `json:"skills" yaml:"skills"`
	Languages    []Language   `json:"languages" yaml:"languages"`
	UpdatedAt    time.Time    `json:"updated_at" yaml:"updated_at"`
}

// CVFile is the uploaded CV document of a researcher.
type CVFile struct {
	ID           string    `json:"id" yaml:"id"`
	ResearcherID string    `json:"researcher_id" yaml:"researcher_id"`
	FileName     string    `json:"file_name" yaml:"file_name"`
	ContentType  string    `json:"content_type" yaml:"content_type"`
	Size         int64     `json:"size" yaml:"size"`
	StoragePath  string    `json:"-" yaml:"-"`
	UploadedAt   time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

// CVDocument is the assembled CV: profile, structured sections, published
// research, and activities.
type CVDocument struct {
	Researcher   User            `json:"researcher" yaml:"researcher"`
	CV           CV              `json:"cv" yaml:"cv"`
	Publications []Research      `json:"publications" yaml:"publications"`
	FieldVisits  []FieldVisit    `json:"field_visits" yaml:"field_visits"`
	Volunteering []Volunteering  `json:"volunteering" yaml:"volunteering"`
	Activities   ActivitySummary `json:"activities" yaml:"activities"`
	File         *CVFile         `json:"file,omitempty" yaml:"file,omitempty"`
	GeneratedAt  time.Time       `json:"generated_at" yaml:"generated_at"`
}
