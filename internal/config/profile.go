package config

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed india_gst.yaml
var defaultProfile []byte

// Jurisdiction is the tax profile consumed by the validators, the
// reconciliation engine and the scorer. Values are passed explicitly at
// construction so several profiles can run side by side.
type Jurisdiction struct {
	Name             string             `yaml:"name"`
	TaxRates         []float64          `yaml:"tax_rates"`
	TaxRateTolerance float64            `yaml:"tax_rate_tolerance"`
	StateCodes       []string           `yaml:"state_codes"`
	Patterns         Patterns           `yaml:"patterns"`
	Tolerances       Tolerances         `yaml:"tolerances"`
	Thresholds       Thresholds         `yaml:"thresholds"`
	Penalties        Penalties          `yaml:"penalties"`
	ScoreWeights     map[string]float64 `yaml:"score_weights"`
}

// Patterns holds the regular expressions used by the format validators.
type Patterns struct {
	GST         string   `yaml:"gst"`
	GSTLength   int      `yaml:"gst_length"`
	Phone       string   `yaml:"phone"`
	PhoneDigits string   `yaml:"phone_digits"`
	IMEIDigits  int      `yaml:"imei_digits"`
	Dates       []string `yaml:"dates"`
	// DescriptionNoise is removed from item descriptions.
	DescriptionNoise []string `yaml:"description_noise"`
}

// Tolerances are relative differences expressed as fractions (0.05 = 5%).
type Tolerances struct {
	TaxInclusiveMatch float64 `yaml:"tax_inclusive_match"`
	TaxInclusiveShare float64 `yaml:"tax_inclusive_share"`
	TotalsAccept      float64 `yaml:"totals_accept"`
	AmountMismatch    float64 `yaml:"amount_mismatch"`
	AdjustCeiling     float64 `yaml:"adjust_ceiling"`
}

// Thresholds are confidence values on the 0-100 scale.
type Thresholds struct {
	ExtractAccept        int `yaml:"extract_accept"`
	CalculatedConfidence int `yaml:"calculated_confidence"`
	FallbackConfidence   int `yaml:"fallback_confidence"`
}

// Penalties are subtracted from an extracted amount's confidence.
type Penalties struct {
	AmountMismatch  int `yaml:"amount_mismatch"`
	BelowRate       int `yaml:"below_rate"`
	MissingFraction int `yaml:"missing_fraction"`
}

// DefaultJurisdiction returns the built-in Indian GST profile.
func DefaultJurisdiction() *Jurisdiction {
	j, err := parseJurisdiction(defaultProfile, nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded profile is invalid: %v", err))
	}
	return j
}

// LoadJurisdiction reads a YAML profile from path and overlays it on the
// built-in defaults. An empty path returns the defaults.
func LoadJurisdiction(path string) (*Jurisdiction, error) {
	if path == "" {
		return DefaultJurisdiction(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jurisdiction profile: %w", err)
	}
	return parseJurisdiction(data, DefaultJurisdiction())
}

// ParseJurisdiction decodes a YAML profile overlaid on the built-in defaults.
func ParseJurisdiction(data []byte) (*Jurisdiction, error) {
	return parseJurisdiction(data, DefaultJurisdiction())
}

func parseJurisdiction(data []byte, base *Jurisdiction) (*Jurisdiction, error) {
	j := &Jurisdiction{}
	if base != nil {
		*j = *base
		j.ScoreWeights = make(map[string]float64, len(base.ScoreWeights))
		for k, v := range base.ScoreWeights {
			j.ScoreWeights[k] = v
		}
	}
	if err := yaml.Unmarshal(data, j); err != nil {
		return nil, fmt.Errorf("decoding jurisdiction profile: %w", err)
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return j, nil
}

// Validate checks that the profile is usable.
func (j *Jurisdiction) Validate() error {
	if len(j.TaxRates) == 0 {
		return fmt.Errorf("jurisdiction %q: tax_rates must not be empty", j.Name)
	}
	if len(j.StateCodes) == 0 {
		return fmt.Errorf("jurisdiction %q: state_codes must not be empty", j.Name)
	}
	patterns := []string{j.Patterns.GST, j.Patterns.Phone, j.Patterns.PhoneDigits}
	patterns = append(patterns, j.Patterns.Dates...)
	patterns = append(patterns, j.Patterns.DescriptionNoise...)
	for _, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return fmt.Errorf("jurisdiction %q: invalid pattern %q: %w", j.Name, p, err)
		}
	}
	if j.Patterns.GSTLength <= 0 || j.Patterns.IMEIDigits <= 0 {
		return fmt.Errorf("jurisdiction %q: gst_length and imei_digits must be positive", j.Name)
	}
	t := j.Tolerances
	if t.TotalsAccept <= 0 || t.AdjustCeiling <= t.TotalsAccept {
		return fmt.Errorf("jurisdiction %q: totals_accept must be positive and below adjust_ceiling", j.Name)
	}
	for field, w := range j.ScoreWeights {
		if w < 0 {
			return fmt.Errorf("jurisdiction %q: score weight for %s must not be negative", j.Name, field)
		}
	}
	return nil
}

// Weight returns the overall-score weight for a field, defaulting to 1.
func (j *Jurisdiction) Weight(field string) float64 {
	if w, ok := j.ScoreWeights[field]; ok {
		return w
	}
	return 1
}
