package jsonfile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicerecon/internal/config"
	"invoicerecon/internal/parser"
	"invoicerecon/internal/parser/jsonfile"
	"invoicerecon/internal/port"
)

func TestExtractor_PassesJSONThrough(t *testing.T) {
	raw := []byte(`{"invoiceNumber":"A-1"}`)

	out, err := jsonfile.NewExtractor().Extract(context.Background(), port.ExtractInput{
		FileName: "a.json", FileBytes: raw, ContentType: "application/json",
	})

	require.NoError(t, err)
	assert.Equal(t, raw, out.Raw)
	assert.Equal(t, "jsonfile", out.ModelUsed)
}

func TestExtractor_RejectsImages(t *testing.T) {
	_, err := jsonfile.NewExtractor().Extract(context.Background(), port.ExtractInput{ContentType: "image/png"})

	assert.ErrorIs(t, err, parser.ErrUnsupportedContent)
}

func TestExtractor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := jsonfile.NewExtractor().Extract(ctx, port.ExtractInput{ContentType: "application/json"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegisteredWithFactory(t *testing.T) {
	ex, err := parser.NewExtractor(&config.ParserProviderConfig{Provider: "jsonfile"})

	require.NoError(t, err)
	assert.IsType(t, &jsonfile.Extractor{}, ex)
}
