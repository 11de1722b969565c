package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/estimate-parser/internal/async"
	"github.com/joseph-ayodele/estimate-parser/internal/common"
	"github.com/joseph-ayodele/estimate-parser/internal/export"
	"github.com/joseph-ayodele/estimate-parser/internal/ingest"
	"github.com/joseph-ayodele/estimate-parser/internal/pipeline"
	repo "github.com/joseph-ayodele/estimate-parser/internal/repository"
	"github.com/joseph-ayodele/estimate-parser/internal/services/estimate"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir     = flag.String("dir", "", "directory of .txt/.json documents (required)")
		outDir  = flag.String("out", "", "write one XLSX per document into this directory (optional)")
		save    = flag.Bool("save", false, "record every parse in the history database (DB_URL)")
		summary = flag.String("summary", "", "write an XLSX of the saved history to this path (requires --save)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *summary != "" && !*save {
		printError("Error: --summary requires --save\n")
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := common.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var history repo.HistoryRepository
	if *save {
		db, err := repo.Open(ctx, repo.ConfigFrom(cfg.Database), logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close(logger)
		history = repo.NewHistoryRepository(db, logger)
	}

	svc := estimate.NewService(pipeline.NewParser(pipeline.OptionsFrom(cfg.Extraction), logger), history, logger)
	exporter := export.NewService(history, logger)

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			logger.Error("failed to create output directory", "error", err)
			os.Exit(1)
		}
	}

	paths, stats, err := ingest.ScanDirectory(*dir, true)
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete", "dir", *dir, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)

	queue := async.New(func(ctx context.Context, job async.Job) error {
		doc, err := ingest.LoadFile(job.Path, logger)
		if err != nil {
			return err
		}
		out, err := svc.Parse(ctx, doc, *save)
		if err != nil {
			return err
		}
		logger.Info("document parsed",
			"path", job.Path,
			"strategy", out.Strategy,
			"items", len(out.Estimate.Items),
			"total_excl_tax", out.Estimate.TotalExclTax,
		)
		if *outDir == "" {
			return nil
		}
		b, err := exporter.EstimateXLSX(out.Estimate)
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(filepath.Base(job.Path), filepath.Ext(job.Path))
		return os.WriteFile(filepath.Join(*outDir, base+".xlsx"), b, 0644)
	}, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithJobTimeout(cfg.Queue.JobTimeout),
	)

	for _, p := range paths {
		if err := queue.Enqueue(ctx, async.Job{Path: p}); err != nil {
			logger.Warn("stopped enqueueing", "error", err)
			break
		}
	}
	queue.Shutdown(context.Background())
	result := queue.Stats()

	if *summary != "" {
		b, err := exporter.HistoryXLSX(context.Background(), len(paths))
		if err != nil {
			logger.Error("failed to export history", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*summary, b, 0644); err != nil {
			logger.Error("failed to write summary", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("batch processing complete",
		"documents", len(paths),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	if result.Failed > 0 {
		os.Exit(1)
	}
}
