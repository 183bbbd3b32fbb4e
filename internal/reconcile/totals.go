package reconcile

import (
	"math"

	"invoicerecon/internal/domain"
)

// CheckTotals validates the item sum against the declared net total and,
// when validation fails on a multi-item invoice, attempts a proportional
// adjustment. The outcome is stored on rec.Totals.
func (e *Engine) CheckTotals(rec *domain.InvoiceRecord) {
	net := positive(rec.NetTotal)
	result := e.ValidateTotals(rec.Items, net)
	if !result.Valid && len(rec.Items) > 1 && net > 0 {
		result.Adjusted = e.AdjustProportionally(rec.Items, net)
	}
	rec.Totals = result
	e.log.Info().
		Str("invoice", rec.InvoiceNumber).
		Str("reason", string(result.Reason)).
		Float64("calculated_total", result.CalculatedTotal).
		Float64("net_total", result.NetTotal).
		Float64("difference_pct", result.DifferencePct).
		Bool("adjusted", result.Adjusted).
		Msg("totals validated")
}

// ValidateTotals compares the sum of item amounts with the declared total.
// The relative difference is measured against the item sum. Without a
// positive declared total there is nothing to check against.
func (e *Engine) ValidateTotals(items []domain.LineItem, netTotal float64) domain.TotalsValidation {
	if len(items) == 0 {
		return domain.TotalsValidation{Valid: false, Reason: domain.TotalsNoItems}
	}

	calculated := sumAmounts(items)
	if netTotal <= 0 {
		return domain.TotalsValidation{
			Valid:           true,
			Reason:          domain.TotalsNoNetTotal,
			CalculatedTotal: domain.Round2(calculated),
		}
	}

	difference := math.Abs(calculated - netTotal)
	result := domain.TotalsValidation{
		CalculatedTotal: domain.Round2(calculated),
		NetTotal:        domain.Round2(netTotal),
		Difference:      domain.Round2(difference),
		Reason:          domain.TotalsExceedsTolerance,
	}
	if calculated <= 0 {
		result.DifferencePct = 100
		return result
	}

	relative := difference / calculated
	result.DifferencePct = domain.Round2(relative * 100)
	if relative <= e.profile.Tolerances.TotalsAccept {
		result.Valid = true
		result.Reason = domain.TotalsWithinTolerance
	}
	return result
}

// AdjustProportionally rescales every item by netTotal/sum when the relative
// difference lies strictly between the accept tolerance and the adjustment
// ceiling. Outside that band items are left unchanged. It reports whether
// items changed.
func (e *Engine) AdjustProportionally(items []domain.LineItem, netTotal float64) bool {
	if len(items) < 2 || netTotal <= 0 {
		return false
	}
	current := sumAmounts(items)
	if current <= 0 {
		e.log.Warn().Msg("cannot apply proportional adjustment: current total is 0")
		return false
	}

	ratio := netTotal / current
	difference := math.Abs(netTotal-current) / current
	tol := e.profile.Tolerances

	switch {
	case difference > tol.TotalsAccept && difference < tol.AdjustCeiling:
		e.log.Info().Float64("difference_pct", difference*100).Float64("ratio", ratio).Msg("applying proportional adjustment")
		for i := range items {
			original := items[i].ItemAmount.Value
			items[i].ItemAmount = domain.NumberOf(domain.Round2(original * ratio))
			items[i].Adjusted = true
		}
		return true
	case difference >= tol.AdjustCeiling:
		e.log.Warn().Float64("difference_pct", difference*100).Msg("difference too large, skipping adjustment")
	default:
		e.log.Debug().Float64("difference_pct", difference*100).Msg("difference acceptable, no adjustment needed")
	}
	return false
}

func sumAmounts(items []domain.LineItem) float64 {
	var sum float64
	for i := range items {
		sum += items[i].ItemAmount.Value
	}
	return sum
}
