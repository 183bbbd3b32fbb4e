package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"invoicerecon/internal/handler"
	"invoicerecon/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	log zerolog.Logger,
	healthH *handler.HealthHandler,
	invoiceH *handler.InvoiceHandler,
	maxMultipartMemory int64,
) *gin.Engine {
	r := gin.New()
	if maxMultipartMemory > 0 {
		r.MaxMultipartMemory = maxMultipartMemory
	}

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))

	r.GET("/healthz", healthH.Liveness)

	v1 := r.Group("/api/v1")

	invoices := v1.Group("/invoices")
	invoices.POST("/reconcile", invoiceH.Reconcile)
	invoices.POST("/extract", invoiceH.Extract)
	invoices.POST("/export", invoiceH.Export)

	return r
}
