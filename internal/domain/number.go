package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonNumeric = regexp.MustCompile(`[^\d.]`)

// Number is a numeric leaf read from an extraction. It keeps the text the
// extractor produced so that unparseable values survive a round trip.
type Number struct {
	Raw   string
	Value float64
	Valid bool
}

// ParseNumber strips everything except digits and the decimal point and
// parses what remains. Values that still do not parse are kept as Raw with
// Valid=false and Value=0.
func ParseNumber(raw string) Number {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Number{}
	}
	cleaned := strings.Trim(nonNumeric.ReplaceAllString(raw, ""), ".")
	if cleaned == "" {
		return Number{Raw: raw}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Number{Raw: raw}
	}
	return Number{Raw: raw, Value: d.InexactFloat64(), Valid: true}
}

// NumberOf wraps an already computed value.
func NumberOf(v float64) Number {
	return Number{Raw: decimal.NewFromFloat(v).String(), Value: v, Valid: true}
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// IsEmpty reports whether the extractor supplied nothing for this field.
func (n Number) IsEmpty() bool {
	return !n.Valid && n.Raw == ""
}

// Positive reports whether the value parsed and is greater than zero.
func (n Number) Positive() bool {
	return n.Valid && n.Value > 0
}

// HasFraction reports whether the value carries a non-zero fractional part.
func (n Number) HasFraction() bool {
	d := decimal.NewFromFloat(n.Value)
	return !d.Equal(d.Truncate(0))
}

func (n Number) String() string {
	if n.Valid {
		return decimal.NewFromFloat(n.Value).String()
	}
	return n.Raw
}

// MarshalJSON writes parsed values as JSON numbers, absent values as "" and
// unparseable values as their original text.
func (n Number) MarshalJSON() ([]byte, error) {
	if n.Valid {
		return []byte(decimal.NewFromFloat(n.Value).String()), nil
	}
	return json.Marshal(n.Raw)
}

// UnmarshalJSON accepts a JSON string, number, or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*n = Number{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = ParseNumber(s)
		return nil
	default:
		*n = ParseNumber(string(data))
		return nil
	}
}
