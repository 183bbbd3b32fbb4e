package handler_test

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"invoicerecon/internal/config"
	"invoicerecon/internal/export"
	"invoicerecon/internal/handler"
	"invoicerecon/internal/parser"
	"invoicerecon/internal/pipeline"
	"invoicerecon/internal/port"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newInvoiceHandler(t *testing.T, ex port.Extractor, pub *export.Publisher) *handler.InvoiceHandler {
	t.Helper()
	p, err := pipeline.NewFromProfile(config.DefaultJurisdiction(), zerolog.Nop())
	require.NoError(t, err)
	dec, err := parser.NewDecoder(zerolog.Nop())
	require.NoError(t, err)
	return handler.NewInvoiceHandler(p, ex, dec, pub, handler.InvoiceHandlerConfig{
		MaxFileSize: 1024,
		Concurrency: 2,
	})
}
