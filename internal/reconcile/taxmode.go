package reconcile

import (
	"math"

	"invoicerecon/internal/domain"
)

// DetectTaxInclusive reports whether the printed rates already include tax.
// An item with both a rate and an amount matches when the two are within
// the match tolerance; the invoice is tax-inclusive when at least the
// configured share of those items match.
func (e *Engine) DetectTaxInclusive(items []domain.LineItem) bool {
	var matches, comparisons int
	for i := range items {
		rate := positive(items[i].Rate)
		amount := positive(items[i].ItemAmount)
		if rate <= 0 || amount <= 0 {
			continue
		}
		comparisons++
		if math.Abs(amount-rate)/rate < e.profile.Tolerances.TaxInclusiveMatch {
			matches++
		}
	}
	if comparisons == 0 {
		return false
	}
	return float64(matches)/float64(comparisons) >= e.profile.Tolerances.TaxInclusiveShare
}
