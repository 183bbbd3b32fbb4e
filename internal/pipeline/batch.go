package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"invoicerecon/internal/domain"
	"invoicerecon/internal/parser"
	"invoicerecon/internal/port"
)

// Document is one input to a batch run.
type Document struct {
	Name        string
	Bytes       []byte
	ContentType string
}

// Result is the outcome for one Document. Err is set when extraction failed
// after retries; Record is nil in that case.
type Result struct {
	Name   string
	Record *domain.InvoiceRecord
	Model  string
	Err    error
}

// ProcessDocument extracts, decodes and processes a single document.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc Document, ex port.Extractor, dec *parser.Decoder) Result {
	out, err := ex.Extract(ctx, port.ExtractInput{
		FileName:    doc.Name,
		FileBytes:   doc.Bytes,
		ContentType: doc.ContentType,
	})
	if err != nil {
		p.log.Error().Err(err).Str("file", doc.Name).Msg("extraction failed")
		return Result{Name: doc.Name, Err: err}
	}

	rec := dec.Decode(doc.Name, out.Raw)
	return Result{Name: doc.Name, Record: p.Process(rec), Model: out.ModelUsed}
}

// RunBatch processes docs with at most concurrency documents in flight.
// Results keep the input order. Once ctx is done no new document starts;
// those that did not start report the context error.
func (p *Pipeline) RunBatch(ctx context.Context, docs []Document, ex port.Extractor, dec *parser.Decoder, concurrency int) []Result {
	results := make([]Result, len(docs))
	if len(docs) == 0 {
		return results
	}

	limit := min(max(concurrency, 1), len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	p.log.Info().Int("documents", len(docs)).Int("workers", limit).Msg("batch started")

	for i := range docs {
		if err := gctx.Err(); err != nil {
			results[i] = Result{Name: docs[i].Name, Err: fmt.Errorf("not started: %w", err)}
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Name: docs[i].Name, Err: fmt.Errorf("not started: %w", err)}
				return nil
			}
			results[i] = p.ProcessDocument(gctx, docs[i], ex, dec)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Stats summarizes a batch run.
type Stats struct {
	Total             int
	Succeeded         int
	Failed            int
	Unparseable       int
	AverageConfidence float64
}

// Summarize counts outcomes and averages the overall confidence of the
// records that were produced.
func Summarize(results []Result) Stats {
	s := Stats{Total: len(results)}
	var sum float64
	for i := range results {
		r := &results[i]
		if r.Err != nil || r.Record == nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		if r.Record.Unparseable {
			s.Unparseable++
		}
		sum += r.Record.Confidence[domain.ScoreOverall]
	}
	if s.Succeeded > 0 {
		s.AverageConfidence = domain.Round2(sum / float64(s.Succeeded))
	}
	return s
}

// Records returns the records of successful results in input order.
func Records(results []Result) []*domain.InvoiceRecord {
	out := make([]*domain.InvoiceRecord, 0, len(results))
	for i := range results {
		if results[i].Record != nil {
			out = append(out, results[i].Record)
		}
	}
	return out
}
