package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// combiningDiacriticalMarks is the U+0300..U+036F block. Other
// nonspacing marks are left in place and end up as separators.
var combiningDiacriticalMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036F, Stride: 1}},
}

// NormalizeSlug folds s into a lowercase ASCII slug. Accents are
// stripped, every other run of non-alphanumerics becomes one hyphen,
// and an input with nothing left yields a random UUID.
func NormalizeSlug(s string) string {
	if strings.TrimSpace(s) == "" {
		return uuid.NewString()
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacriticalMarks)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	slug := nonSlugChars.ReplaceAllString(strings.ToLower(folded), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return uuid.NewString()
	}
	return slug
}

// slugCandidate picks the explicit slug when present, else the title
func slugCandidate(slug, title string) string {
	if strings.TrimSpace(slug) != "" {
		return slug
	}
	return title
}
