package reconcile

import (
	"math"

	"invoicerecon/internal/domain"
)

// ItemAmountConfidence scores how far an extracted line amount can be
// trusted, starting at 100 and subtracting the profile's penalties:
//   - the amount differs from the reference by more than the mismatch tolerance
//   - the amount is not above the rate while more than one unit is billed
//   - the amount is a whole number while the rate has a fraction
//
// A zero amount with a positive rate and quantity scores 0.
func (e *Engine) ItemAmountConfidence(extracted, rate, qty, reference float64) int {
	p := e.profile.Penalties
	confidence := 100

	if extracted > 0 && reference > 0 {
		if math.Abs(extracted-reference)/reference > e.profile.Tolerances.AmountMismatch {
			confidence -= p.AmountMismatch
		}
	}
	// Inclusive: three units at 500 billed as exactly 500 must fall back to
	// the calculated 1500.
	if extracted > 0 && rate > 0 && qty > 1 && extracted <= rate {
		confidence -= p.BelowRate
	}
	if extracted > 0 && !domain.NumberOf(extracted).HasFraction() && domain.NumberOf(rate).HasFraction() {
		confidence -= p.MissingFraction
	}
	if extracted == 0 && rate > 0 && qty > 0 {
		confidence = 0
	}

	if confidence < 0 {
		return 0
	}
	return confidence
}
