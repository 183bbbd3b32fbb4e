package validator

import (
	"fmt"

	"invoicerecon/internal/domain"
)

// headerRule normalizes one string field of the invoice header.
type headerRule struct {
	field     string
	get       func(*domain.InvoiceRecord) string
	set       func(*domain.InvoiceRecord, string)
	normalize func(*Validator, string) string
}

var headerRules = []headerRule{
	{
		field:     "gstNumber",
		get:       func(r *domain.InvoiceRecord) string { return r.GSTNumber },
		set:       func(r *domain.InvoiceRecord, s string) { r.GSTNumber = s },
		normalize: (*Validator).GST,
	},
	{
		field:     "customerPhone",
		get:       func(r *domain.InvoiceRecord) string { return r.CustomerPhone },
		set:       func(r *domain.InvoiceRecord, s string) { r.CustomerPhone = s },
		normalize: (*Validator).Phone,
	},
	{
		field:     "invoiceNumber",
		get:       func(r *domain.InvoiceRecord) string { return r.InvoiceNumber },
		set:       func(r *domain.InvoiceRecord, s string) { r.InvoiceNumber = s },
		normalize: (*Validator).InvoiceNumber,
	},
	{
		field:     "invoiceDate",
		get:       func(r *domain.InvoiceRecord) string { return r.InvoiceDate },
		set:       func(r *domain.InvoiceRecord, s string) { r.InvoiceDate = s },
		normalize: (*Validator).Date,
	},
}

// taxField gives access to one of an item's tax percentage columns.
type taxField struct {
	name string
	ptr  func(*domain.LineItem) *domain.Number
}

var taxFields = []taxField{
	{"sgst", func(li *domain.LineItem) *domain.Number { return &li.SGST }},
	{"cgst", func(li *domain.LineItem) *domain.Number { return &li.CGST }},
	{"igst", func(li *domain.LineItem) *domain.Number { return &li.IGST }},
}

// CrossValidate runs the format validators over the header and every item,
// rewrites fields whose normalized value differs, and enforces that an item
// never carries both SGST/CGST and IGST. The corrections are appended to
// rec.Corrections and also returned.
func (v *Validator) CrossValidate(rec *domain.InvoiceRecord) []domain.Correction {
	var corrections []domain.Correction

	for _, rule := range headerRules {
		raw := rule.get(rec)
		if raw == "" {
			continue
		}
		if normalized := rule.normalize(v, raw); normalized != raw {
			rule.set(rec, normalized)
			corrections = append(corrections, domain.Correction{Field: rule.field, From: raw, To: normalized})
		}
	}

	for i := range rec.Items {
		item := &rec.Items[i]
		prefix := fmt.Sprintf("items[%d]", i)

		if item.IMEINumber != "" {
			if imei := v.IMEI(item.IMEINumber); imei != item.IMEINumber {
				corrections = append(corrections, domain.Correction{Field: prefix + ".imeiNumber", From: item.IMEINumber, To: imei})
				item.IMEINumber = imei
			}
		}

		for _, tf := range taxFields {
			n := tf.ptr(item)
			if n.IsEmpty() {
				continue
			}
			normalized := domain.Number{}
			if rate, ok := v.TaxPercentage(n.Raw); ok {
				normalized = domain.NumberOf(rate)
			}
			if normalized.Valid != n.Valid || normalized.Value != n.Value || normalized.Raw != n.Raw {
				corrections = append(corrections, domain.Correction{
					Field: prefix + "." + tf.name, From: n.Raw, To: normalized.String(),
				})
			}
			*n = normalized
		}

		if c, ok := enforceTaxExclusivity(item, prefix); ok {
			corrections = append(corrections, c)
		}
	}

	if len(corrections) > 0 {
		v.log.Info().Str("invoice", rec.InvoiceNumber).Int("count", len(corrections)).Msg("validation issues fixed")
	}
	rec.Corrections = append(rec.Corrections, corrections...)
	return corrections
}

// enforceTaxExclusivity clears IGST when SGST or CGST is present. A zero
// rate is a valid rate, so a zero SGST/CGST pair still wins over IGST.
func enforceTaxExclusivity(item *domain.LineItem, prefix string) (domain.Correction, bool) {
	hasIntra := !item.SGST.IsEmpty() || !item.CGST.IsEmpty()
	if !hasIntra || item.IGST.IsEmpty() {
		return domain.Correction{}, false
	}
	from := item.IGST.String()
	item.IGST = domain.Number{}
	return domain.Correction{
		Field: prefix + ".igst", From: from, To: "",
		Note: "both sgst/cgst and igst present, igst cleared",
	}, true
}
