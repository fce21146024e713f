// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ResearchType classifies a unit of scholarly output.
type ResearchType string

const (
	ResearchArticle         ResearchType = "ARTICLE"
	ResearchBook            ResearchType = "BOOK"
	ResearchBookChapter     ResearchType = "BOOK_CHAPTER"
	ResearchConferencePaper ResearchType = "CONFERENCE_PAPER"
	ResearchThesis          ResearchType = "THESIS"
	ResearchPatent          ResearchType = "PATENT"
	ResearchReport          ResearchType = "REPORT"
)

// ResearchTypes lists every research type in display order.
var ResearchTypes = []ResearchType{
	ResearchArticle, ResearchBook, ResearchBookChapter, ResearchConferencePaper,
	ResearchThesis, ResearchPatent, ResearchReport,
}

// Valid reports whether t is a known research type.
func (t ResearchType) Valid() bool {
	for _, v := range ResearchTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ResearchStatus tracks a record from planning to publication.
type ResearchStatus string

const (
	StatusPlanned    ResearchStatus = "PLANNED"
	StatusInProgress ResearchStatus = "IN_PROGRESS"
	StatusSubmitted  ResearchStatus = "SUBMITTED"
	StatusAccepted   ResearchStatus = "ACCEPTED"
	StatusPublished  ResearchStatus = "PUBLISHED"
)

// ResearchStatuses lists every status in workflow order.
var ResearchStatuses = []ResearchStatus{
	StatusPlanned, StatusInProgress, StatusSubmitted, StatusAccepted, StatusPublished,
}

// Valid reports whether s is a known status.
func (s ResearchStatus) Valid() bool {
	for _, v := range ResearchStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Quartile is a journal ranking band within its subject category.
type Quartile string

const (
	QuartileNone Quartile = ""
	Q1           Quartile = "Q1"
	Q2           Quartile = "Q2"
	Q3           Quartile = "Q3"
	Q4           Quartile = "Q4"
)

// Quartiles lists the ranked quartiles, best first.
var Quartiles = []Quartile{Q1, Q2, Q3, Q4}

// Valid reports whether q is empty or one of Q1..Q4.
func (q Quartile) Valid() bool {
	switch q {
	case QuartileNone, Q1, Q2, Q3, Q4:
		return true
	}
	return false
}

// Weight returns the ranking weight used for recommendation scoring:
// Q1=4 down to Q4=1, and 0 for no quartile.
func (q Quartile) Weight() int {
	switch q {
	case Q1:
		return 4
	case Q2:
		return 3
	case Q3:
		return 2
	case Q4:
		return 1
	}
	return 0
}

// Indexing records where a publication is indexed.
type Indexing struct {
	// Scopus reports whether the venue is indexed in Scopus.
	Scopus         bool     `json:"scopus" yaml:"scopus"`
	ScopusQuartile Quartile `json:"scopus_quartile,omitempty" yaml:"scopus_quartile,omitempty"`

	// ISI reports whether the venue is indexed in Clarivate Web of Science.
	ISI         bool     `json:"isi" yaml:"isi"`
	ISIQuartile Quartile `json:"isi_quartile,omitempty" yaml:"isi_quartile,omitempty"`

	// ImpactFactor is the journal impact factor, zero when unknown.
	ImpactFactor float64 `json:"impact_factor,omitempty" yaml:"impact_factor,omitempty"`
}

// Indexed reports whether the record is in Scopus or ISI.
func (i Indexing) Indexed() bool { return i.Scopus || i.ISI }

// BestWeight returns the highest quartile weight across indexes, with 1 for
// an indexed record that has no quartile and 0 when not indexed.
func (i Indexing) BestWeight() int {
	if !i.Indexed() {
		return 0
	}
	best := 1
	if i.Scopus && i.ScopusQuartile.Weight() > best {
		best = i.ScopusQuartile.Weight()
	}
	if i.ISI && i.ISIQuartile.Weight() > best {
		best = i.ISIQuartile.Weight()
	}
	return best
}

// Research is a research record owned by one researcher.
type Research struct {
	ID           string         `json:"id" yaml:"id"`
	ResearcherID string         `json:"researcher_id" yaml:"researcher_id"`
	Title        string         `json:"title" yaml:"title"`
	Abstract     string         `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Type         ResearchType   `json:"type" yaml:"type"`
	Status       ResearchStatus `json:"status" yaml:"status"`

	// Publication metadata.
	Journal         string `json:"journal,omitempty" yaml:"journal,omitempty"`
	Publisher       string `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	DOI             string `json:"doi,omitempty" yaml:"doi,omitempty"`
	Volume          string `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue           string `json:"issue,omitempty" yaml:"issue,omitempty"`
	Pages           string `json:"pages,omitempty" yaml:"pages,omitempty"`
	ISSN            string `json:"issn,omitempty" yaml:"issn,omitempty"`
	URL             string `json:"url,omitempty" yaml:"url,omitempty"`
	PublicationDate *Date  `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	// Authors lists co-authors in byline order.
	Authors  []string `json:"authors" yaml:"authors"`
	Keywords []string `json:"keywords" yaml:"keywords"`

	Indexing Indexing `json:"indexing" yaml:"indexing"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// ResearchInput holds the client-editable fields of a research record.
type ResearchInput struct {
	Title           string         `json:"title"`
	Abstract        string         `json:"abstract"`
	Type            ResearchType   `json:"type"`
	Status          ResearchStatus `json:"status"`
	Journal         string         `json:"journal"`
	Publisher       string         `json:"publisher"`
	DOI             string         `json:"doi"`
	Volume          string         `json:"volume"`
	Issue           string         `json:"issue"`
	Pages           string         `json:"pages"`
	ISSN            string         `json:"issn"`
	URL             string         `json:"url"`
	PublicationDate *Date          `json:"publication_date"`
	Authors         []string       `json:"authors"`
	Keywords        []string       `json:"keywords"`
	Indexing        Indexing       `json:"indexing"`
}

// IndexFilter selects records by indexing.
type IndexFilter string

const (
	IndexAny    IndexFilter = "any"
	IndexScopus IndexFilter = "scopus"
	IndexISI    IndexFilter = "isi"
)

// ResearchFilter narrows research listings. Zero values mean no filter.
type ResearchFilter struct {
	ResearcherID string
	Type         ResearchType
	Status       ResearchStatus
	Year         int
	Indexed      IndexFilter
	Query        string
	Limit        int
	Offset       int
}
