package insight

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/shoplens/shoplens-cli/internal/model"
)

var (
	digitsPattern = regexp.MustCompile(`\d+`)
	jsonPattern   = regexp.MustCompile(`\{[^}]+\}`)
)

// parseKeepList extracts the 1-based indices named in a relevance filter
// response. A response containing "NONE" means the model kept nothing.
func parseKeepList(text string) (indices map[int]bool, none bool) {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if strings.Contains(upper, "NONE") {
		return nil, true
	}

	indices = make(map[int]bool)
	for _, m := range digitsPattern.FindAllString(upper, -1) {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		indices[n] = true
	}
	return indices, false
}

// parseKeyFindings extracts numbered or bulleted lines from a summary
// response, stripping the list markers.
func parseKeyFindings(text string) []string {
	var findings []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		first := line[0]
		if !(first >= '0' && first <= '9') && first != '-' && !strings.HasPrefix(line, "•") {
			continue
		}
		finding := strings.TrimSpace(strings.TrimLeft(line, "0123456789.-•) "))
		if finding != "" {
			findings = append(findings, finding)
		}
	}
	return findings
}

// parseRedFlags extracts warning lines from a red-flag response. A
// "no major/significant red flags" style answer yields an empty list.
func parseRedFlags(text string) []string {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "no major red flags") || strings.Contains(lower, "no significant red flags") {
		return []string{}
	}

	var flags []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lineLower := strings.ToLower(line)
		if !strings.Contains(line, "⚠️") &&
			!strings.Contains(lineLower, "warning") &&
			!strings.Contains(lineLower, "red flag") {
			continue
		}
		flag := strings.TrimSpace(strings.ReplaceAll(line, "⚠️", ""))
		if flag != "" && !strings.HasPrefix(strings.ToLower(flag), "no") {
			flags = append(flags, flag)
		}
	}
	if flags == nil {
		flags = []string{}
	}
	return flags
}

// parseSentiment parses the JSON object from a sentiment response, falling
// back to a keyword scan of the raw text when no object can be decoded.
func parseSentiment(text string) model.Sentiment {
	if m := jsonPattern.FindString(text); m != "" {
		var s model.Sentiment
		if err := json.Unmarshal([]byte(m), &s); err == nil {
			if s.Label == "" {
				s.Label = "mixed"
			}
			if s.Confidence == "" {
				s.Confidence = "medium"
			}
			if s.Summary == "" {
				s.Summary = "Mixed opinions found across sources"
			}
			return s
		}
	}

	lower := strings.ToLower(text)
	label := "mixed"
	if strings.Contains(lower, "positive") {
		label = "positive"
	} else if strings.Contains(lower, "negative") {
		label = "negative"
	}

	summary := strings.TrimSpace(text)
	if len(summary) > 200 {
		summary = summary[:200]
	}

	return model.Sentiment{
		Label:      label,
		Confidence: "medium",
		Summary:    summary,
	}
}
