package match

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAttributes(t *testing.T) {
	m := NewDefault()

	attrs := m.ExtractAttributes("Apple iPhone 15 Pro Max 256GB Natural Titanium")
	assert.Equal(t, "apple", attrs.Brand)
	assert.Equal(t, "256gb", attrs.Storage)
	assert.Equal(t, "titanium", attrs.Color)
	assert.Equal(t, "pro max", attrs.Model)

	attrs = m.ExtractAttributes("Samsung Galaxy S24 Ultra 12GB RAM 512GB Black")
	assert.Equal(t, "samsung", attrs.Brand)
	assert.Equal(t, "512gb", attrs.Storage)
	assert.Equal(t, "12gb", attrs.RAM)
	assert.Equal(t, "black", attrs.Color)
}

func TestExtractAttributes_NoneFound(t *testing.T) {
	m := NewDefault()
	attrs := m.ExtractAttributes("Wooden Cutting Board")
	assert.Empty(t, attrs.Brand)
	assert.Empty(t, attrs.Storage)
	assert.Empty(t, attrs.RAM)
	assert.Empty(t, attrs.Color)
}

func TestIsSameProduct_CosmeticPhrasing(t *testing.T) {
	m := NewDefault()

	tests := []struct {
		name      string
		reference string
		candidate string
		want      bool
	}{
		{
			name:      "identical listing different seller phrasing",
			reference: "Apple iPhone 15 Pro 128GB Blue Titanium",
			candidate: "iPhone 15 Pro (128 GB) - Blue Titanium | Apple",
			want:      true,
		},
		{
			name:      "same phone reordered words",
			reference: "Samsung Galaxy S24 Ultra 256GB Titanium Gray",
			candidate: "Galaxy S24 Ultra (Titanium Gray, 256GB) by Samsung",
			want:      true,
		},
		{
			name:      "different model same brand",
			reference: "Apple iPhone 15 Pro",
			candidate: "Apple iPhone SE",
			want:      false,
		},
		{
			name:      "different line same brand",
			reference: "OnePlus 12 256GB Flowy Emerald",
			candidate: "OnePlus Nord CE 4 128GB Celadon Marble",
			want:      false,
		},
		{
			name:      "exact title",
			reference: "Phone X 128GB Black",
			candidate: "Phone X 128GB Black",
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.IsSameProduct(tt.reference, tt.candidate, 0)
			assert.Equal(t, tt.want, got,
				"similarity=%v", m.Similarity(tt.reference, tt.candidate))
		})
	}
}

func TestSimilarity_NoAttributesFallsBackToSequence(t *testing.T) {
	m := NewDefault()

	// Neither title yields attributes, so the score is pure sequence
	// similarity.
	same := m.Similarity("bamboo cutting board large", "bamboo cutting board large")
	assert.InDelta(t, 1.0, same, 1e-9)

	diff := m.Similarity("bamboo cutting board", "stainless steel kettle")
	assert.Less(t, diff, 0.65)
}

func TestSequenceRatio(t *testing.T) {
	assert.InDelta(t, 1.0, sequenceRatio("abc", "abc"), 1e-9)
	assert.InDelta(t, 0.0, sequenceRatio("abc", ""), 1e-9)
	assert.InDelta(t, 1.0, sequenceRatio("", ""), 1e-9)
	// LCS("abcd", "abed") = "abd" -> 2*3/8
	assert.InDelta(t, 0.75, sequenceRatio("abcd", "abed"), 1e-9)
}

func TestLoadVocab(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("brands:\n  - acme\ncolors: []\n"), 0o644))

	v, err := LoadVocab(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, v.Brands)
	// Empty color list falls back to defaults.
	assert.NotEmpty(t, v.Colors)
}

func TestLoadVocab_MissingFile(t *testing.T) {
	_, err := LoadVocab("/nonexistent/vocab.yaml")
	assert.Error(t, err)
}
