package scrape

import "strings"

// blockMarkers are phrases marketplaces serve instead of product pages
// when they suspect automated access.
var blockMarkers = []string{
	"captcha",
	"robot check",
	"enter the characters you see",
	"type the characters",
	"sorry, we just need to make sure",
	"automated access",
}

// isBlockedContent reports whether fetched page content looks like an
// anti-bot challenge rather than a product page. Real product pages are
// long; only short responses are checked for markers.
func isBlockedContent(content string) bool {
	if len(content) >= 10000 {
		return false
	}
	lower := strings.ToLower(content)
	for _, marker := range blockMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
