// Package jsonfile reads invoices that were already extracted to JSON, so
// batch runs can be repeated without calling a model.
package jsonfile

import (
	"context"
	"fmt"

	"invoicerecon/internal/config"
	"invoicerecon/internal/parser"
	"invoicerecon/internal/port"
)

const modelName = "jsonfile"

func init() {
	parser.RegisterProvider("jsonfile", func(_ *config.ParserProviderConfig) (port.Extractor, error) {
		return NewExtractor(), nil
	})
}

// Extractor passes JSON documents through unchanged.
type Extractor struct{}

// NewExtractor creates a pass-through extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.ContentType != "application/json" {
		return nil, fmt.Errorf("%w: %s", parser.ErrUnsupportedContent, input.ContentType)
	}
	return &port.ExtractOutput{
		Raw:       input.FileBytes,
		ModelUsed: modelName,
	}, nil
}
