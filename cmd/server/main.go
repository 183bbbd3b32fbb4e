package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"invoicerecon/internal/config"
	"invoicerecon/internal/export"
	"invoicerecon/internal/handler"
	"invoicerecon/internal/logger"
	"invoicerecon/internal/parser"
	_ "invoicerecon/internal/parser/gemini"
	_ "invoicerecon/internal/parser/jsonfile"
	_ "invoicerecon/internal/parser/openai"
	"invoicerecon/internal/pipeline"
	"invoicerecon/internal/router"
	s3storage "invoicerecon/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLog := logger.New(cfg.Log.Level, cfg.Log.Format)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profile := config.DefaultJurisdiction()
	if cfg.Jurisdiction.ProfilePath != "" {
		profile, err = config.LoadJurisdiction(cfg.Jurisdiction.ProfilePath)
		if err != nil {
			return fmt.Errorf("failed to load jurisdiction profile: %w", err)
		}
	}

	// Initialize the reconciliation pipeline
	p, err := pipeline.NewFromProfile(profile, appLog)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	dec, err := parser.NewDecoder(appLog)
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}

	// Initialize extractors
	ex, err := parser.NewChain(&cfg.Parser, cfg.Retry, appLog)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}

	// Initialize storage, optional
	var publisher *export.Publisher
	if cfg.S3.Bucket != "" {
		s3Client, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		publisher = export.NewPublisher(s3Client, cfg.S3.Bucket, cfg.S3.Prefix, appLog)
	}

	// Initialize handlers
	maxFileSize := cfg.Server.MaxFileSizeMB << 20
	healthH := handler.NewHealthHandler()
	invoiceH := handler.NewInvoiceHandler(p, ex, dec, publisher, handler.InvoiceHandlerConfig{
		MaxFileSize: maxFileSize,
		Concurrency: cfg.Batch.Concurrency,
	})

	// Setup router
	r := router.Setup(appLog, healthH, invoiceH, maxFileSize)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info().
			Str("addr", cfg.Server.Port).
			Str("parser", cfg.Parser.Primary.Provider).
			Str("fallback", cfg.Parser.Secondary.Provider).
			Str("jurisdiction", profile.Name).
			Bool("publishing", publisher != nil).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLog.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
