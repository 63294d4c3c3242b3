package insight

import (
	"fmt"
	"strings"

	"github.com/shoplens/shoplens-cli/internal/model"
)

// findingContext renders findings as a numbered block for relevance prompts.
// Indices are 1-based so the model's keep-list maps directly onto the slice.
func findingContext(productName, contentType string, findings []model.SearchFinding) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n\n", productName)
	fmt.Fprintf(&b, "Content Type: %s\n\n", contentType)
	b.WriteString("Content to evaluate:\n\n")
	for i, f := range findings {
		fmt.Fprintf(&b, "%d. Title: %s\n", i+1, f.Title)
		fmt.Fprintf(&b, "   Source: %s\n", f.Source)
		fmt.Fprintf(&b, "   Snippet: %s\n\n", f.Snippet)
	}
	return b.String()
}

// pooledContext renders a capped pool of findings for the synthesis prompts.
func pooledContext(productName string, findings []model.SearchFinding, limit int) string {
	if len(findings) > limit {
		findings = findings[:limit]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n\n", productName)
	b.WriteString("External Search Results:\n\n")
	for i, f := range findings {
		fmt.Fprintf(&b, "%d. Title: %s\n", i+1, f.Title)
		fmt.Fprintf(&b, "   Source: %s\n", f.Source)
		fmt.Fprintf(&b, "   Snippet: %s\n\n", f.Snippet)
	}
	return b.String()
}

// categoryFocus describes what counts as relevant for each filtered category.
var categoryFocus = map[model.FindingCategory]string{
	model.CategoryReviews:     "genuine reviews, hands-on impressions, or buyer experiences of this exact product",
	model.CategoryComparisons: "articles comparing this exact product against alternatives or competitors",
	model.CategorySocial:      "community discussions about this exact product (owner questions, experiences, recommendations)",
	model.CategoryNews:        "news coverage, launch announcements, or price/availability updates for this exact product",
}

func filterPrompt(category model.FindingCategory, productName string, findings []model.SearchFinding) string {
	ctx := findingContext(productName, string(category), findings)
	var b strings.Builder
	b.WriteString(ctx)
	fmt.Fprintf(&b, "You are checking search results for relevance to %q.\n", productName)
	fmt.Fprintf(&b, "Keep only entries that are %s.\n", categoryFocus[category])
	b.WriteString("Discard accessories, different models, unrelated products, and generic listicles.\n\n")
	b.WriteString("Respond with only the numbers of the relevant entries, comma-separated (e.g. 1, 3, 4).\n")
	b.WriteString("If none are relevant, respond with exactly: NONE\n")
	return b.String()
}

func keyFindingsPrompt(productName string, findings []model.SearchFinding) string {
	ctx := pooledContext(productName, findings, poolLimit)
	var b strings.Builder
	b.WriteString(ctx)
	fmt.Fprintf(&b, "Summarize the most important factual observations about %q from these sources.\n", productName)
	b.WriteString("Return 3-7 distinct findings as a numbered list, one finding per line.\n")
	b.WriteString("Each finding should be a short, specific statement grounded in the sources.\n")
	return b.String()
}

func redFlagsPrompt(productName string, findings []model.SearchFinding) string {
	ctx := pooledContext(productName, findings, poolLimit)
	var b strings.Builder
	b.WriteString(ctx)
	fmt.Fprintf(&b, "Identify warning signs a buyer of %q should know about: recurring defects, service complaints, safety issues, or misleading claims.\n", productName)
	b.WriteString("List each as a separate line starting with \"Warning:\".\n")
	b.WriteString("If the sources show no significant problems, respond with exactly: No major red flags found.\n")
	return b.String()
}

func sentimentPrompt(productName string, findings []model.SearchFinding) string {
	if len(findings) > sentimentPoolLimit {
		findings = findings[:sentimentPoolLimit]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Product: %s\n\n", productName)
	for _, f := range findings {
		fmt.Fprintf(&b, "- %s: %s\n", f.Title, f.Snippet)
	}
	fmt.Fprintf(&b, "\nJudge the overall sentiment toward %q across these sources.\n", productName)
	b.WriteString("Respond with a single JSON object and nothing else:\n")
	b.WriteString(`{"sentiment": "positive|negative|mixed", "confidence": "high|medium|low", "summary": "<one sentence>"}` + "\n")
	return b.String()
}
