// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"", "", true},
		{"10.1145/1234567.1234568", "10.1145/1234567.1234568", true},
		{"https://doi.org/10.1000/ABC", "10.1000/abc", true},
		{"http://dx.doi.org/10.1000/abc", "10.1000/abc", true},
		{"  doi:10.1000/abc  ", "10.1000/abc", true},
		{"DOI: 10.1000/abc", "10.1000/abc", true},
		{"10.12/abc", "", false},
		{"10.1000/", "", false},
		{"10.1000/has space", "", false},
		{"not a doi", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeDOI(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitleKey(t *testing.T) {
	assert.Equal(t, "deeplearning for rivers", TitleKey("  Deep-Learning   for RIVERS! "))
	assert.Equal(t, TitleKey("Straße Networks"), TitleKey("STRASSE networks"))
	assert.Equal(t, "", TitleKey("?!"))
	assert.Equal(t, "fine tuning", TitleKey("ﬁne tuning"), "ligatures are decomposed")
}

func TestNormalizeKeywords(t *testing.T) {
	got := NormalizeKeywords([]string{" Machine  Learning", "machine learning", "", "GIS", "gis ", "Hydrology"})
	assert.Equal(t, []string{"machine learning", "gis", "hydrology"}, got)

	many := make([]string, 30)
	for i := range many {
		many[i] = fmt.Sprintf("k%d", i)
	}
	assert.Len(t, NormalizeKeywords(many), MaxKeywords)
	assert.Equal(t, []string{}, NormalizeKeywords(nil))
}

func TestNormalizeAuthors(t *testing.T) {
	assert.Equal(t, []string{"Rana Ali", "O. Saleh"}, NormalizeAuthors([]string{" Rana  Ali ", "", "O. Saleh"}))
}
