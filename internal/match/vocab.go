package match

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Vocab holds the fixed vocabularies used for attribute extraction.
type Vocab struct {
	Brands []string `yaml:"brands"`
	Colors []string `yaml:"colors"`
}

// DefaultVocab returns the built-in brand and color vocabularies.
func DefaultVocab() Vocab {
	return Vocab{
		Brands: []string{
			"apple", "samsung", "oneplus", "xiaomi", "realme", "oppo", "vivo",
			"google", "motorola", "nokia", "asus", "sony", "lg", "huawei",
			"iphone", "galaxy", "pixel", "redmi", "poco",
		},
		Colors: []string{
			"black", "white", "blue", "red", "green", "yellow", "pink", "purple",
			"gold", "silver", "grey", "gray", "titanium", "natural", "midnight",
			"starlight", "sierra", "alpine",
		},
	}
}

// LoadVocab reads vocabulary overrides from a YAML file. Empty lists fall
// back to the built-in defaults.
func LoadVocab(path string) (Vocab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocab{}, eris.Wrapf(err, "match: read vocab %s", path)
	}

	var v Vocab
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocab{}, eris.Wrap(err, "match: parse vocab")
	}

	def := DefaultVocab()
	if len(v.Brands) == 0 {
		v.Brands = def.Brands
	}
	if len(v.Colors) == 0 {
		v.Colors = def.Colors
	}
	return v, nil
}
