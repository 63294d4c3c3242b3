package model

// SourceItem is the scraped base record for one catalog item. It is created
// once per scrape and not mutated afterwards.
type SourceItem struct {
	Platform     string   `json:"platform"`
	ProductID    string   `json:"product_id"`
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Brand        string   `json:"brand,omitempty"`
	Price        string   `json:"price,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Rating       string   `json:"rating,omitempty"`
	TotalReviews string   `json:"total_reviews,omitempty"`
	Category     string   `json:"category,omitempty"`
	Availability string   `json:"availability,omitempty"`
	Features     []string `json:"features,omitempty"`
}
