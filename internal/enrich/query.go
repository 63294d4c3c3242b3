package enrich

import (
	"regexp"
	"strings"
)

// maxQueryLen caps generated search queries. Long marketplace titles are
// mostly boilerplate past this point and degrade result quality.
const maxQueryLen = 150

// boilerplatePatterns strip warranty/service/bundle filler that marketplace
// listings pack into titles.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\|.*?warranty`),
	regexp.MustCompile(`(?i)\|.*?years?`),
	regexp.MustCompile(`(?i)\|.*?service`),
	regexp.MustCompile(`(?i)no service for.*?\|`),
	regexp.MustCompile(`(?i)\d+-year.*?\|`),
	regexp.MustCompile(`(?i)\d+-in-\d+.*?\|`),
	regexp.MustCompile(`(?i)smart iot.*?\|`),
	regexp.MustCompile(`(?i)ro\+uv\+.*?\|`),
}

// ShortenTitle reduces a long listing title to its meaningful parts for use
// as a search query.
func ShortenTitle(title string) string {
	shortened := title
	for _, p := range boilerplatePatterns {
		shortened = p.ReplaceAllString(shortened, "")
	}

	// Keep the first two substantial pipe-separated segments.
	var parts []string
	for _, p := range strings.Split(shortened, "|") {
		p = strings.TrimSpace(p)
		if len(p) > 10 {
			parts = append(parts, p)
		}
		if len(parts) == 2 {
			break
		}
	}

	result := strings.Join(parts, " ")
	if result == "" {
		result = title
		if len(result) > 100 {
			result = result[:100]
		}
	}
	return strings.Join(strings.Fields(result), " ")
}

// searchQuery returns query, falling back to a rebuilt query with a
// shortened title when the generated query is too long.
func searchQuery(build func(name string) string, title string) string {
	q := build(title)
	if len(q) > maxQueryLen {
		q = build(ShortenTitle(title))
	}
	return q
}
