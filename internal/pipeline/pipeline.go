// Package pipeline runs extracted invoices through validation,
// reconciliation and scoring, one record at a time or as a bounded batch.
package pipeline

import (
	"fmt"

	"github.com/rs/zerolog"

	"invoicerecon/internal/config"
	"invoicerecon/internal/domain"
	"invoicerecon/internal/logger"
	"invoicerecon/internal/reconcile"
	"invoicerecon/internal/scoring"
	"invoicerecon/internal/validator"
)

// Pipeline holds the stages applied to every record. It keeps no per-record
// state and is safe for concurrent use.
type Pipeline struct {
	validator *validator.Validator
	engine    *reconcile.Engine
	scorer    *scoring.Scorer
	log       zerolog.Logger
}

// New assembles a Pipeline from already built stages.
func New(v *validator.Validator, engine *reconcile.Engine, scorer *scoring.Scorer, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		validator: v,
		engine:    engine,
		scorer:    scorer,
		log:       logger.Component(log, "pipeline"),
	}
}

// NewFromProfile builds every stage from one jurisdiction profile.
func NewFromProfile(profile *config.Jurisdiction, log zerolog.Logger) (*Pipeline, error) {
	v, err := validator.New(profile, log)
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}
	engine := reconcile.NewEngine(profile, log)
	scorer := scoring.NewScorer(profile, v)
	return New(v, engine, scorer, log), nil
}

// Process validates, reconciles and scores rec in place and returns it.
// Bad data never produces an error; it lowers the scores instead.
func (p *Pipeline) Process(rec *domain.InvoiceRecord) *domain.InvoiceRecord {
	if rec.Confidence == nil {
		rec.Confidence = map[string]float64{}
	}

	if rec.Unparseable {
		rec.Items = []domain.LineItem{}
		rec.TaxInclusive = false
		rec.Totals = domain.TotalsValidation{Reason: domain.TotalsNoItems}
		for _, field := range domain.ScoredFields {
			rec.Confidence[field] = 0
		}
		rec.Confidence[domain.ScoreOverall] = 0
		p.log.Warn().Str("file", rec.SourceFile).Msg("unparseable record, skipping reconciliation")
		return rec
	}

	p.validator.CrossValidate(rec)
	for i := range rec.Items {
		rec.Items[i].Description = p.validator.CleanDescription(rec.Items[i].Description)
	}

	p.engine.Reconcile(rec)
	p.engine.CheckTotals(rec)
	scoring.StampMatch(rec)
	rec.Confidence = p.scorer.Score(rec)

	p.log.Info().
		Str("file", rec.SourceFile).
		Str("invoice", rec.InvoiceNumber).
		Int("items", len(rec.Items)).
		Float64("confidence", rec.Confidence[domain.ScoreOverall]).
		Msg("record processed")
	return rec
}
