// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxKeywords caps the keywords kept on one record or profile.
const MaxKeywords = 20

// doiPattern matches bare DOIs such as "10.1145/1234567.1234568".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

// NormalizeDOI strips resolver and "doi:" prefixes and lowercases the DOI.
// ok is false when the result is not a DOI. An empty input is valid and
// yields "".
func NormalizeDOI(raw string) (doi string, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", true
	}
	lower := strings.ToLower(s)
	for _, p := range doiPrefixes {
		if strings.HasPrefix(lower, p) {
			lower = strings.TrimSpace(lower[len(p):])
			break
		}
	}
	if !doiPattern.MatchString(lower) {
		return "", false
	}
	return lower, true
}

// fold returns the NFKC, case-folded form of s. Casers are stateful, so
// each call gets its own.
func fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// TitleKey returns the form of a title used for duplicate detection:
// case-folded, punctuation stripped, whitespace collapsed.
func TitleKey(title string) string {
	var b strings.Builder
	for _, r := range fold(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeKeywords trims, case-folds, and deduplicates keywords in first
// occurrence order, dropping empties and keeping at most MaxKeywords.
func NormalizeKeywords(in []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(in))
	for _, k := range in {
		k = FoldKeyword(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// FoldKeyword returns the comparison form of a keyword or field name:
// case-folded with whitespace collapsed.
func FoldKeyword(k string) string {
	return strings.Join(strings.Fields(fold(k)), " ")
}

// NormalizeAuthors trims author names and drops empties.
func NormalizeAuthors(in []string) []string {
	out := []string{}
	for _, a := range in {
		if a = strings.Join(strings.Fields(a), " "); a != "" {
			out = append(out, a)
		}
	}
	return out
}
