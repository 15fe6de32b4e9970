package quality

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds holds the tunable limits and penalty weights for the scorer.
// The values are empirically tuned, not derived from corpus statistics, so
// they live in configuration rather than code: operators can override any of
// them from a YAML file without a rebuild.
type Thresholds struct {
	// Hard rejections, applied regardless of the cumulative penalty.
	RejectCapsRatio float64 `yaml:"reject_caps_ratio"`
	RejectCapsLines int     `yaml:"reject_caps_lines"`

	// Ratio limits with their penalty weights.
	CapsRatio        float64 `yaml:"caps_ratio"`
	CapsWeight       float64 `yaml:"caps_weight"`
	DigitRatio       float64 `yaml:"digit_ratio"`
	DigitWeight      float64 `yaml:"digit_weight"`
	ShortRatio       float64 `yaml:"short_ratio"`
	ShortWeight      float64 `yaml:"short_weight"`
	PunctDensity     float64 `yaml:"punct_density"`
	PunctWeight      float64 `yaml:"punct_weight"`
	MinSentenceLen   float64 `yaml:"min_sentence_len"`
	MaxSentenceLen   float64 `yaml:"max_sentence_len"`
	SentenceWeight   float64 `yaml:"sentence_weight"`
	StructuralPer100 float64 `yaml:"structural_per_100"`
	StructuralWeight float64 `yaml:"structural_weight"`
	GlossaryPer100   float64 `yaml:"glossary_per_100"`
	GlossaryWeight   float64 `yaml:"glossary_weight"`

	// MaxPenalty is the acceptance ceiling for the cumulative score.
	MaxPenalty float64 `yaml:"max_penalty"`
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RejectCapsRatio:  0.30,
		RejectCapsLines:  2,
		CapsRatio:        0.10,
		CapsWeight:       1.5,
		DigitRatio:       0.05,
		DigitWeight:      1.0,
		ShortRatio:       0.55,
		ShortWeight:      1.0,
		PunctDensity:     0.08,
		PunctWeight:      1.0,
		MinSentenceLen:   5,
		MaxSentenceLen:   60,
		SentenceWeight:   1.0,
		StructuralPer100: 2.0,
		StructuralWeight: 1.5,
		GlossaryPer100:   1.5,
		GlossaryWeight:   1.5,
		MaxPenalty:       3.0,
	}
}

// LoadThresholds reads threshold overrides from a YAML file. Keys missing
// from the file keep their default values. An empty path returns the
// defaults unchanged.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read thresholds file: %w", err)
	}

	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("failed to parse thresholds file: %w", err)
	}

	return t, nil
}
