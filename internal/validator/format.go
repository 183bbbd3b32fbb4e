package validator

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"invoicerecon/internal/domain"
)

var (
	phoneSeparators = regexp.MustCompile(`[\s\-()]`)
	nonDigits       = regexp.MustCompile(`\D`)
	alphanumeric    = regexp.MustCompile(`[A-Za-z0-9]`)
)

// GST returns the normalized GSTIN (whitespace removed, upper-cased) or ""
// when the length, pattern, or state code prefix is wrong.
func (v *Validator) GST(raw string) string {
	if raw == "" {
		return ""
	}
	gst := strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw))

	switch {
	case len(gst) != v.profile.Patterns.GSTLength:
		v.log.Warn().Str("gst", raw).Int("length", len(gst)).Msg("invalid GST length")
		return ""
	case !v.gst.MatchString(gst):
		v.log.Warn().Str("gst", raw).Msg("invalid GST pattern")
		return ""
	case !v.stateCodes[gst[:2]]:
		v.log.Warn().Str("gst", raw).Str("state_code", gst[:2]).Msg("invalid GST state code")
		return ""
	}
	return gst
}

// Phone returns the trimmed input when it looks like a mobile number, or "".
func (v *Validator) Phone(raw string) string {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return ""
	}
	if v.phone.MatchString(phone) {
		return phone
	}
	if v.phoneDigits.MatchString(phoneSeparators.ReplaceAllString(phone, "")) {
		return phone
	}
	v.log.Warn().Str("phone", raw).Msg("invalid phone number format")
	return ""
}

// IMEI returns the digits of raw when there are exactly the profile's
// IMEI length of them, or "".
func (v *Validator) IMEI(raw string) string {
	if raw == "" {
		return ""
	}
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) != v.profile.Patterns.IMEIDigits {
		v.log.Warn().Str("imei", raw).Msg("invalid IMEI")
		return ""
	}
	return digits
}

// Date returns the trimmed input when it contains a recognizable date shape.
// The format is never rewritten.
func (v *Validator) Date(raw string) string {
	date := strings.TrimSpace(raw)
	if date == "" {
		return ""
	}
	for _, re := range v.dates {
		if re.MatchString(date) {
			return date
		}
	}
	v.log.Warn().Str("date", raw).Msg("invalid date format")
	return ""
}

// TaxPercentage returns the canonical member of the valid rate set that raw
// is within tolerance of.
func (v *Validator) TaxPercentage(raw string) (float64, bool) {
	n := domain.ParseNumber(raw)
	if !n.Valid {
		if !n.IsEmpty() {
			v.log.Warn().Str("tax", raw).Msg("unparseable tax percentage")
		}
		return 0, false
	}
	for _, rate := range v.profile.TaxRates {
		if math.Abs(n.Value-rate) < v.profile.TaxRateTolerance {
			return rate, true
		}
	}
	v.log.Warn().Str("tax", raw).Msg("tax percentage not in valid list")
	return 0, false
}

// InvoiceNumber returns the trimmed value when it has at least one
// alphanumeric character.
func (v *Validator) InvoiceNumber(raw string) string {
	inv := strings.TrimSpace(raw)
	if inv == "" {
		return ""
	}
	if !alphanumeric.MatchString(inv) {
		v.log.Warn().Str("invoice_number", raw).Msg("invalid invoice number")
		return ""
	}
	return inv
}

// CleanDescription removes configured noise such as embedded IMEI labels
// and collapses repeated whitespace.
func (v *Validator) CleanDescription(desc string) string {
	for _, re := range v.noise {
		desc = re.ReplaceAllString(desc, "")
	}
	return strings.Join(strings.Fields(desc), " ")
}
