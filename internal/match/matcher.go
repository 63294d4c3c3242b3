// Package match decides whether two product titles denote the same product.
package match

import (
	"regexp"
	"strings"
)

// DefaultThreshold is the similarity score at or above which two titles
// are considered the same product.
const DefaultThreshold = 0.65

var (
	nonWordPattern = regexp.MustCompile(`[^\w\s]`)
	storagePattern = regexp.MustCompile(`(\d+)\s*(gb|tb)`)
	ramPattern     = regexp.MustCompile(`(\d+)\s*gb\s*ram`)
	modelPattern   = regexp.MustCompile(`(pro max|pro|plus|ultra|lite|mini|\d+[a-z]?)`)
)

// Attributes is the structured attribute set extracted from a title.
type Attributes struct {
	Brand   string
	Storage string
	RAM     string
	Color   string
	Model   string
}

// Matcher compares product titles using attribute agreement weighted with
// character-sequence similarity. Attribute agreement dominates because two
// sellers phrase the same SKU very differently, but brand/storage/model
// rarely drift.
type Matcher struct {
	vocab Vocab
}

// New creates a Matcher with the given vocabularies.
func New(vocab Vocab) *Matcher {
	return &Matcher{vocab: vocab}
}

// NewDefault creates a Matcher with the built-in vocabularies.
func NewDefault() *Matcher {
	return New(DefaultVocab())
}

// ExtractAttributes pulls brand, storage, RAM, color and a coarse model
// token out of a product title.
func (m *Matcher) ExtractAttributes(title string) Attributes {
	lower := strings.ToLower(title)
	var attrs Attributes

	for _, brand := range m.vocab.Brands {
		if strings.Contains(lower, brand) {
			attrs.Brand = brand
			break
		}
	}

	if sm := storagePattern.FindStringSubmatch(lower); sm != nil {
		attrs.Storage = sm[1] + sm[2]
	}
	if rm := ramPattern.FindStringSubmatch(lower); rm != nil {
		attrs.RAM = rm[1] + "gb"
	}

	for _, color := range m.vocab.Colors {
		if strings.Contains(lower, color) {
			attrs.Color = color
			break
		}
	}

	if mm := modelPattern.FindStringSubmatch(lower); mm != nil {
		attrs.Model = mm[1]
	}

	return attrs
}

// Similarity scores two titles in [0,1]: 0.7 x attribute agreement plus
// 0.3 x normalized sequence similarity. With no extractable attributes on
// either side the score degenerates to pure sequence similarity.
func (m *Matcher) Similarity(title1, title2 string) float64 {
	t1 := normalizeTitle(title1)
	t2 := normalizeTitle(title2)

	seqSim := sequenceRatio(t1, t2)

	a1 := m.ExtractAttributes(title1)
	a2 := m.ExtractAttributes(title2)

	matches, total := 0, 0
	for _, pair := range [][2]string{
		{a1.Brand, a2.Brand},
		{a1.Storage, a2.Storage},
		{a1.RAM, a2.RAM},
		{a1.Model, a2.Model},
	} {
		if pair[0] == "" && pair[1] == "" {
			continue
		}
		total++
		if pair[0] != "" && pair[0] == pair[1] {
			matches++
		}
	}

	if total == 0 {
		return seqSim
	}

	attrSim := float64(matches) / float64(total)
	return attrSim*0.7 + seqSim*0.3
}

// IsSameProduct reports whether two titles denote the same product at the
// given threshold. A threshold <= 0 uses DefaultThreshold.
func (m *Matcher) IsSameProduct(referenceTitle, candidateTitle string, threshold float64) bool {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return m.Similarity(referenceTitle, candidateTitle) >= threshold
}

func normalizeTitle(title string) string {
	return nonWordPattern.ReplaceAllString(strings.ToLower(title), "")
}

// sequenceRatio computes 2*LCS(a,b) / (len(a)+len(b)), a longest common
// subsequence ratio in [0,1].
func sequenceRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}
