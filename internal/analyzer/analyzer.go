// Package analyzer enriches raw fetched items with derived metadata before
// scoring: HTML stripping, summary derivation, and tag/entity extraction.
// It performs no I/O.
package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

var multiSpace = regexp.MustCompile(`[ \t]{2,}`)

// tagVocabulary maps a canonical tag to the keywords that imply it. Feed
// bodies are matched case-insensitively against the keyword list.
var tagVocabulary = map[string][]string{
	"government":     {"government", "ministry", "municipality", "federal", "decree", "sheikh"},
	"transport":      {"metro", "rta", "traffic", "road", "taxi", "tram", "salik"},
	"real-estate":    {"property", "real estate", "villa", "apartment", "rent", "landlord"},
	"markets":        {"stock", "dfm", "index", "shares", "trading", "ipo", "dirham"},
	"tourism":        {"tourist", "visitor", "hotel", "resort", "attraction", "beach"},
	"events":         {"festival", "concert", "exhibition", "expo", "show", "fireworks"},
	"weather":        {"weather", "temperature", "forecast", "humidity", "rain", "sandstorm"},
	"dining":         {"restaurant", "cafe", "brunch", "menu", "chef", "cuisine"},
	"technology":     {"technology", "startup", "digital", "smart city", "ai"},
	"infrastructure": {"construction", "project", "development", "bridge", "tower"},
}

// knownEntities are Dubai landmarks and institutions worth tagging when they
// appear in an item.
var knownEntities = []string{
	"Burj Khalifa", "Burj Al Arab", "Dubai Mall", "Palm Jumeirah",
	"Dubai Marina", "Dubai Creek", "Expo City", "DIFC", "DXB", "Al Maktoum",
	"Jumeirah Beach", "Global Village", "Dubai Frame", "Museum of the Future",
	"RTA", "DEWA", "Dubai Police", "Emirates",
}

// Analyzer performs pre-scoring enrichment of content items.
type Analyzer struct{}

// New creates an Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Enrich normalizes an item in place: strips HTML from the body, derives a
// summary when the source supplied none, and merges extracted tags and
// entities into the tag set.
func (a *Analyzer) Enrich(item *model.ContentItem) {
	item.Content = StripHTML(item.Content)
	item.Title = strings.TrimSpace(StripHTML(item.Title))

	if item.Summary == "" {
		item.Summary = deriveSummary(item.Content)
	}

	item.Tags = mergeTags(item.Tags, extractTags(item.Text()))
	item.Tags = mergeTags(item.Tags, extractEntities(item.Text()))
}

// StripHTML removes markup from feed content. Non-HTML input passes through
// with whitespace normalized.
func StripHTML(s string) string {
	if strings.ContainsAny(s, "<>") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			doc.Find("script, style").Remove()
			s = doc.Text()
		}
	}
	s = multiSpace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// deriveSummary takes the first two sentences, capped at 240 characters.
func deriveSummary(content string) string {
	content = strings.ReplaceAll(content, "\n", " ")
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}

	var sentences []string
	rest := content
	for len(sentences) < 2 {
		idx := strings.IndexAny(rest, ".!?")
		if idx < 0 {
			sentences = append(sentences, rest)
			break
		}
		sentences = append(sentences, rest[:idx+1])
		rest = strings.TrimSpace(rest[idx+1:])
		if rest == "" {
			break
		}
	}

	summary := strings.TrimSpace(strings.Join(sentences, " "))
	if len(summary) > 240 {
		summary = strings.TrimSpace(summary[:240])
	}
	return summary
}

func extractTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for tag, keywords := range tagVocabulary {
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, tag)
				break
			}
		}
	}
	// Map iteration order would otherwise leak into the tag set.
	sort.Strings(tags)
	return tags
}

func extractEntities(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, e := range knownEntities {
		if strings.Contains(lower, strings.ToLower(e)) {
			tags = append(tags, e)
		}
	}
	return tags
}

func mergeTags(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	out := existing
	for _, t := range existing {
		seen[strings.ToLower(t)] = true
	}
	for _, t := range extra {
		if !seen[strings.ToLower(t)] {
			seen[strings.ToLower(t)] = true
			out = append(out, t)
		}
	}
	return out
}
