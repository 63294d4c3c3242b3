package model

// FindingCategory identifies one of the five web-search categories.
type FindingCategory string

const (
	CategoryReviews     FindingCategory = "reviews"
	CategoryComparisons FindingCategory = "comparisons"
	CategoryIssues      FindingCategory = "issues"
	CategorySocial      FindingCategory = "social"
	CategoryNews        FindingCategory = "news"
)

// Categories lists all finding categories in their canonical order.
func Categories() []FindingCategory {
	return []FindingCategory{
		CategoryReviews,
		CategoryComparisons,
		CategoryIssues,
		CategorySocial,
		CategoryNews,
	}
}

// SearchFinding is one external web mention of a product.
type SearchFinding struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"link"`
	Source  string `json:"source"`
	Date    string `json:"date,omitempty"`
}

// VideoMention is a finding hosted on a known video platform.
type VideoMention struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Channel string `json:"channel"`
	Snippet string `json:"snippet"`
}

// Sentiment is the structured sentiment judgment over pooled findings.
type Sentiment struct {
	Label      string `json:"sentiment"`
	Confidence string `json:"confidence"`
	Summary    string `json:"summary"`
}

// InsightBundle is the output of relevance filtering plus synthesis over
// the five finding categories.
type InsightBundle struct {
	Reviews      []SearchFinding `json:"external_reviews"`
	Comparisons  []SearchFinding `json:"comparison_articles"`
	Issues       []SearchFinding `json:"issue_discussions"`
	Social       []SearchFinding `json:"social_discussions"`
	News         []SearchFinding `json:"news_articles"`
	Videos       []VideoMention  `json:"video_mentions"`
	KeyFindings  []string        `json:"key_findings"`
	RedFlags     []string        `json:"red_flags"`
	Overall      Sentiment       `json:"overall_sentiment"`
	TotalSources int             `json:"total_sources"`
	Degraded     []string        `json:"degraded,omitempty"`
}

// FindingsFor returns the filtered findings for a category.
func (b *InsightBundle) FindingsFor(cat FindingCategory) []SearchFinding {
	switch cat {
	case CategoryReviews:
		return b.Reviews
	case CategoryComparisons:
		return b.Comparisons
	case CategoryIssues:
		return b.Issues
	case CategorySocial:
		return b.Social
	case CategoryNews:
		return b.News
	}
	return nil
}
