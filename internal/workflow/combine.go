package workflow

import (
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/shoplens/shoplens-cli/internal/model"
)

// maxCompetitors caps the flattened competitor list at the cheapest entries.
const maxCompetitors = 5

var pricePrinter = message.NewPrinter(language.English)

// flattenCompetitors turns the per-platform offer groups into a single
// display-ready list: cheapest first, unpriced entries last, at most
// maxCompetitors entries.
func flattenCompetitors(groups model.OfferGroup) []model.CompetitorPrice {
	all := make([]model.CompetitorPrice, 0)
	for platform, offers := range groups {
		for _, offer := range offers {
			all = append(all, model.CompetitorPrice{
				Site:         platform,
				Price:        formatPrice(offer.Price, offer.Currency),
				PriceValue:   offer.Price,
				URL:          offer.URL,
				Availability: availability(offer.InStock),
			})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i].PriceValue, all[j].PriceValue
		if a <= 0 {
			return false
		}
		if b <= 0 {
			return true
		}
		return a < b
	})

	if len(all) > maxCompetitors {
		all = all[:maxCompetitors]
	}
	return all
}

// formatPrice renders an offer price for display. Rupee amounts are shown
// whole ("₹64,900"); other currencies keep two decimals with an explicit
// currency code.
func formatPrice(price float64, currency string) string {
	if price <= 0 {
		return "N/A"
	}
	if currency == "" || currency == "INR" {
		return pricePrinter.Sprintf("₹%.0f", price)
	}
	return pricePrinter.Sprintf("%s %.2f", currency, price)
}

func availability(inStock bool) string {
	if inStock {
		return "In Stock"
	}
	return "Out of Stock"
}
