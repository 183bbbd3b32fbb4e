package scoring_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicerecon/internal/config"
	"invoicerecon/internal/domain"
	"invoicerecon/internal/scoring"
	"invoicerecon/internal/validator"
)

func newScorer(t *testing.T, profile *config.Jurisdiction) *scoring.Scorer {
	t.Helper()
	v, err := validator.New(profile, zerolog.Nop())
	require.NoError(t, err)
	return scoring.NewScorer(profile, v)
}

func TestScore_Complete(t *testing.T) {
	s := newScorer(t, config.DefaultJurisdiction())
	rec := &domain.InvoiceRecord{
		InvoiceNumber: "INV-1",
		InvoiceDate:   "01/02/2024",
		SupplierName:  "Acme",
		GSTNumber:     "27AAPFU0939F1ZV",
		Items: []domain.LineItem{
			{Description: "Phone", Quantity: domain.ParseNumber("1"), Rate: domain.ParseNumber("1000")},
		},
	}

	scores := s.Score(rec)

	assert.Equal(t, 100.0, scores[domain.ScoreInvoiceNumber])
	assert.Equal(t, 100.0, scores[domain.ScoreGSTNumber])
	assert.Equal(t, 100.0, scores[domain.ScoreItems])
	assert.Equal(t, 100.0, scores[domain.ScoreOverall])
	assert.Len(t, scores, 6)
}

func TestScore_Partial(t *testing.T) {
	s := newScorer(t, config.DefaultJurisdiction())
	rec := &domain.InvoiceRecord{
		InvoiceNumber: "INV-1",
		GSTNumber:     "27AAPFU0939F0ZV",
		Items: []domain.LineItem{
			{Description: "Phone", Quantity: domain.ParseNumber("1"), Rate: domain.ParseNumber("1000")},
			{Description: "Case"},
		},
	}

	scores := s.Score(rec)

	assert.Equal(t, 0.0, scores[domain.ScoreInvoiceDate])
	assert.Equal(t, 0.0, scores[domain.ScoreSupplierName])
	assert.Equal(t, 50.0, scores[domain.ScoreGSTNumber])
	assert.Equal(t, 66.67, scores[domain.ScoreItems])
	// (100 + 0 + 0 + 50 + 66.67) / 5
	assert.Equal(t, 43.33, scores[domain.ScoreOverall])
}

func TestScore_Empty(t *testing.T) {
	s := newScorer(t, config.DefaultJurisdiction())

	scores := s.Score(&domain.InvoiceRecord{})

	for _, v := range scores {
		assert.Equal(t, 0.0, v)
	}
}

func TestScore_Weighted(t *testing.T) {
	profile := config.DefaultJurisdiction()
	profile.ScoreWeights[domain.ScoreItems] = 3
	s := newScorer(t, profile)
	rec := &domain.InvoiceRecord{
		InvoiceNumber: "INV-1",
		Items:         []domain.LineItem{{Description: "Phone", Quantity: domain.ParseNumber("1"), Rate: domain.ParseNumber("10")}},
	}

	scores := s.Score(rec)

	// (100*1 + 100*3) / 7
	assert.Equal(t, 57.14, scores[domain.ScoreOverall])
}
