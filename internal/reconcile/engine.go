package reconcile

import (
	"github.com/rs/zerolog"

	"invoicerecon/internal/config"
	"invoicerecon/internal/domain"
	"invoicerecon/internal/logger"
)

// Engine decides each line item's final amount and checks the item sum
// against the declared invoice total. It holds no per-record state and is
// safe for concurrent use.
type Engine struct {
	profile *config.Jurisdiction
	log     zerolog.Logger
}

// NewEngine creates an Engine for the given jurisdiction profile.
func NewEngine(profile *config.Jurisdiction, log zerolog.Logger) *Engine {
	return &Engine{
		profile: profile,
		log:     logger.Component(log, "reconcile"),
	}
}

// Reconcile classifies the invoice as tax-inclusive or not and settles every
// item amount. A single-item invoice with a positive declared total takes
// that total as its line amount.
func (e *Engine) Reconcile(rec *domain.InvoiceRecord) {
	if len(rec.Items) == 0 {
		rec.TaxInclusive = false
		return
	}

	rec.TaxInclusive = e.DetectTaxInclusive(rec.Items)
	if rec.TaxInclusive {
		e.log.Info().Str("invoice", rec.InvoiceNumber).Msg("tax-inclusive invoice detected")
	}

	if len(rec.Items) == 1 && rec.NetTotal.Positive() {
		item := &rec.Items[0]
		item.Tax = domain.NumberOf(CombinedTax(item))
		setAmount(item, rec.NetTotal.Value, domain.AmountSourceNetTotal, 100)
		e.log.Debug().Float64("net_total", rec.NetTotal.Value).Msg("single item: using net total")
		return
	}

	if len(rec.Items) > 1 {
		e.log.Info().Str("invoice", rec.InvoiceNumber).Int("items", len(rec.Items)).Msg("multi-line invoice")
	}
	for i := range rec.Items {
		e.ReconcileItem(&rec.Items[i], rec.TaxInclusive)
	}
}

// ReconcileItem runs the three passes for one item:
//  1. accept the extracted amount when its confidence reaches the threshold,
//  2. otherwise compute rate x quantity x tax factor when a rate exists,
//  3. otherwise fall back to the extracted amount.
//
// With no usable rate or amount the item settles at zero.
func (e *Engine) ReconcileItem(item *domain.LineItem, taxInclusive bool) {
	rate := positive(item.Rate)
	extracted := positive(item.ItemAmount)
	qty := item.Units()
	reference := e.ReferenceAmount(item, taxInclusive)
	item.Tax = domain.NumberOf(CombinedTax(item))

	if extracted > 0 {
		confidence := e.ItemAmountConfidence(extracted, rate, qty, reference)
		if confidence >= e.profile.Thresholds.ExtractAccept {
			setAmount(item, extracted, domain.AmountSourceExtracted, confidence)
			return
		}
		e.log.Debug().Float64("extracted", extracted).Int("confidence", confidence).Msg("low confidence in extracted amount")
	}

	if rate > 0 {
		// Same inclusive boundary as the below-rate penalty.
		if extracted > 0 && qty > 1 && extracted <= rate {
			e.log.Warn().
				Float64("extracted", extracted).
				Float64("rate", rate).
				Float64("quantity", qty).
				Msg("amount not above rate for multiple units, using calculated amount")
		}
		setAmount(item, reference, domain.AmountSourceCalculated, e.profile.Thresholds.CalculatedConfidence)
		return
	}

	if extracted > 0 {
		setAmount(item, extracted, domain.AmountSourceExtractedFallback, e.profile.Thresholds.FallbackConfidence)
		return
	}

	e.log.Warn().Str("description", item.Description).Msg("no valid amount data for item")
	setAmount(item, 0, domain.AmountSourceNone, 0)
}

// ReferenceAmount is the amount implied by the rate: rate x quantity, times
// (1 + tax%) unless the invoice is tax-inclusive. It is 0 without a rate.
func (e *Engine) ReferenceAmount(item *domain.LineItem, taxInclusive bool) float64 {
	rate := positive(item.Rate)
	if rate <= 0 {
		return 0
	}
	amount := rate * item.Units()
	if !taxInclusive {
		amount *= 1 + CombinedTax(item)/100
	}
	return amount
}

// CombinedTax is SGST+CGST when either is set, otherwise IGST.
func CombinedTax(item *domain.LineItem) float64 {
	sgst, cgst := positive(item.SGST), positive(item.CGST)
	if sgst > 0 || cgst > 0 {
		return sgst + cgst
	}
	return positive(item.IGST)
}

func setAmount(item *domain.LineItem, amount float64, source domain.AmountSource, confidence int) {
	item.ItemAmount = domain.NumberOf(domain.Round2(amount))
	item.AmountSource = source
	item.AmountConfidence = confidence
}

func positive(n domain.Number) float64 {
	if n.Positive() {
		return n.Value
	}
	return 0
}
