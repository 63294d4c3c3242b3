package model

// Offer is one normalized third-party price listing for a (possibly)
// matching product. URL is always a direct product URL, never a redirect.
type Offer struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	URL         string  `json:"url"`
	Seller      string  `json:"seller"`
	Platform    string  `json:"platform"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Delivery    string  `json:"delivery,omitempty"`
	InStock     bool    `json:"in_stock"`
}

// OfferGroup maps a platform tag to its offers in discovery order.
type OfferGroup map[string][]Offer

// PriceSummary holds statistics over the positively-priced offer subset.
// All fields are zero when that subset is empty.
type PriceSummary struct {
	Min    float64 `json:"min_price"`
	Max    float64 `json:"max_price"`
	Mean   float64 `json:"avg_price"`
	Median float64 `json:"median_price"`
	Count  int     `json:"total_results"`
}

// BestDeal is the lowest-priced offer, ties broken by higher rating.
type BestDeal struct {
	Platform       string  `json:"platform"`
	Title          string  `json:"title"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	URL            string  `json:"url"`
	Seller         string  `json:"seller"`
	Rating         float64 `json:"rating"`
	Savings        float64 `json:"savings"`
	SavingsPercent float64 `json:"savings_percent"`
}

// PriceReport is the full output of the price aggregation branch.
type PriceReport struct {
	Groups     OfferGroup   `json:"price_comparison"`
	Summary    PriceSummary `json:"price_stats"`
	BestDeal   *BestDeal    `json:"best_deal,omitempty"`
	TotalCount int          `json:"total_results"`
}

// CompetitorPrice is a flattened, display-ready competitor entry produced
// by the combine step.
type CompetitorPrice struct {
	Site         string  `json:"site"`
	Price        string  `json:"price"`
	PriceValue   float64 `json:"price_value"`
	URL          string  `json:"url"`
	Availability string  `json:"availability"`
}
