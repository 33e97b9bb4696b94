package agent

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	multiBlankLines = regexp.MustCompile(`\n{3,}`)
	titleCaser      = cases.Title(language.English)
)

const generatedFooter = "\n\n---\n*Generated by AI Reporter*"

// FormatForPublication normalizes article text for the publication queue:
// collapses runs of blank lines and appends the generated-by footer unless
// the text already carries a source attribution.
func FormatForPublication(text string) string {
	out := multiBlankLines.ReplaceAllString(strings.TrimSpace(text), "\n\n")
	if !strings.Contains(strings.ToLower(out), "source:") {
		out += generatedFooter
	}
	return out
}

// NormalizeHeadline title-cases a headline that arrives in all caps, a
// common artifact of government feed titles. Mixed-case headlines pass
// through untouched.
func NormalizeHeadline(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return title
	}
	hasLower := strings.IndexFunc(title, func(r rune) bool {
		return r >= 'a' && r <= 'z'
	}) >= 0
	if hasLower {
		return title
	}
	return titleCaser.String(strings.ToLower(title))
}
