package scoring

import (
	"invoicerecon/internal/config"
	"invoicerecon/internal/domain"
	"invoicerecon/internal/validator"
)

// Scorer computes per-field and overall confidence for a record.
type Scorer struct {
	profile   *config.Jurisdiction
	validator *validator.Validator
}

// NewScorer creates a Scorer. The validator is used to re-check the GSTIN.
func NewScorer(profile *config.Jurisdiction, v *validator.Validator) *Scorer {
	return &Scorer{profile: profile, validator: v}
}

// Score returns a 0-100 score for each of domain.ScoredFields plus
// domain.ScoreOverall, the weighted mean of those sub-scores.
func (s *Scorer) Score(rec *domain.InvoiceRecord) map[string]float64 {
	scores := map[string]float64{
		domain.ScoreInvoiceNumber: presence(rec.InvoiceNumber),
		domain.ScoreInvoiceDate:   presence(rec.InvoiceDate),
		domain.ScoreSupplierName:  presence(rec.SupplierName),
		domain.ScoreGSTNumber:     s.gstScore(rec.GSTNumber),
		domain.ScoreItems:         itemsScore(rec.Items),
	}

	var weighted, total float64
	for _, field := range domain.ScoredFields {
		w := s.profile.Weight(field)
		weighted += scores[field] * w
		total += w
	}
	if total > 0 {
		scores[domain.ScoreOverall] = domain.Round2(weighted / total)
	} else {
		scores[domain.ScoreOverall] = 0
	}
	return scores
}

func (s *Scorer) gstScore(gst string) float64 {
	switch {
	case gst == "":
		return 0
	case s.validator.GST(gst) == gst:
		return 100
	default:
		return 50
	}
}

func presence(v string) float64 {
	if v != "" {
		return 100
	}
	return 0
}

// itemsScore averages, across items, the share of description, quantity
// and rate that are filled in.
func itemsScore(items []domain.LineItem) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for i := range items {
		filled := 0
		if items[i].Description != "" {
			filled++
		}
		if !items[i].Quantity.IsEmpty() {
			filled++
		}
		if !items[i].Rate.IsEmpty() {
			filled++
		}
		sum += float64(filled) * 100 / 3
	}
	return domain.Round2(sum / float64(len(items)))
}
