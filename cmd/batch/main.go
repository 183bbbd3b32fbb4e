package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"invoicerecon/internal/config"
	"invoicerecon/internal/domain"
	"invoicerecon/internal/export"
	"invoicerecon/internal/logger"
	"invoicerecon/internal/parser"
	_ "invoicerecon/internal/parser/gemini"
	_ "invoicerecon/internal/parser/jsonfile"
	_ "invoicerecon/internal/parser/openai"
	"invoicerecon/internal/pipeline"
	s3storage "invoicerecon/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		in          = flag.String("in", "", "directory of invoice files to process (required)")
		out         = flag.String("out", "", "output XLSX path (defaults to <in>/invoices.xlsx)")
		csvOut      = flag.String("csv", "", "also write the item rows as CSV to this path")
		concurrency = flag.Int("concurrency", 0, "documents processed in parallel (defaults to RECON_BATCH_CONCURRENCY)")
		upload      = flag.Bool("upload", false, "publish the workbook to the configured S3 bucket")
		provider    = flag.String("provider", "", "override the primary parser provider")
	)
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return fmt.Errorf("-in is required")
	}
	if *out == "" {
		*out = filepath.Join(*in, "invoices.xlsx")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *provider != "" {
		cfg.Parser.Primary.Provider = *provider
	}
	if *concurrency <= 0 {
		*concurrency = cfg.Batch.Concurrency
	}

	appLog := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	profile := config.DefaultJurisdiction()
	if cfg.Jurisdiction.ProfilePath != "" {
		profile, err = config.LoadJurisdiction(cfg.Jurisdiction.ProfilePath)
		if err != nil {
			return fmt.Errorf("failed to load jurisdiction profile: %w", err)
		}
	}

	p, err := pipeline.NewFromProfile(profile, appLog)
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	dec, err := parser.NewDecoder(appLog)
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}
	ex, err := parser.NewChain(&cfg.Parser, cfg.Retry, appLog)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}

	docs, err := pipeline.LoadDocuments(*in)
	if err != nil {
		return err
	}
	appLog.Info().Str("dir", *in).Int("documents", len(docs)).Str("parser", cfg.Parser.Primary.Provider).Msg("loaded documents")

	results := p.RunBatch(ctx, docs, ex, dec, *concurrency)
	for _, r := range results {
		switch {
		case r.Err != nil:
			appLog.Error().Err(r.Err).Str("file", r.Name).Msg("document failed")
		case r.Record.Unparseable:
			appLog.Warn().Str("file", r.Name).Str("model", r.Model).Msg("extractor output unreadable")
		default:
			appLog.Info().
				Str("file", r.Name).
				Str("model", r.Model).
				Float64("confidence", r.Record.Confidence[domain.ScoreOverall]).
				Str("totals", string(r.Record.Totals.Reason)).
				Msg("document processed")
		}
	}

	records := pipeline.Records(results)
	if err := writeFile(*out, func(f *os.File) error { return export.WriteWorkbook(f, records) }); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	appLog.Info().Str("path", *out).Int("records", len(records)).Msg("workbook written")

	if *csvOut != "" {
		if err := writeFile(*csvOut, func(f *os.File) error { return export.WriteCSV(f, records) }); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
		appLog.Info().Str("path", *csvOut).Msg("csv written")
	}

	if *upload {
		if cfg.S3.Bucket == "" {
			return fmt.Errorf("-upload requires RECON_S3_BUCKET")
		}
		s3Client, err := s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		publisher := export.NewPublisher(s3Client, cfg.S3.Bucket, cfg.S3.Prefix, appLog)
		name := strings.TrimSuffix(filepath.Base(*out), filepath.Ext(*out))
		location, err := publisher.PublishWorkbook(ctx, name, records)
		if err != nil {
			return err
		}
		appLog.Info().Str("location", location).Msg("workbook published")
	}

	stats := pipeline.Summarize(results)
	appLog.Info().
		Int("total", stats.Total).
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Int("unparseable", stats.Unparseable).
		Float64("average_confidence", stats.AverageConfidence).
		Msg("batch complete")
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
