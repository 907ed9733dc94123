package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ulbdigitize/afs-digitizer/internal/common"
	"github.com/ulbdigitize/afs-digitizer/internal/jobstore"
	"github.com/ulbdigitize/afs-digitizer/internal/pipeline"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dir = flag.String("dir", "", "directory of .txt page dumps to digitize, one document per file (required)")
		out = flag.String("out", "", "output root (optional, overrides AFS_OUTPUT_ROOT)")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg := common.LoadConfig()
	if *out != "" {
		cfg.Pipeline.OutputRoot = *out
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := jobstore.NewStore(filepath.Join(cfg.Pipeline.OutputRoot, "job_store"))
	if err != nil {
		logger.Error("failed to initialize job store", "error", err)
		os.Exit(1)
	}
	runner := pipeline.NewRunner(cfg, store, logger)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		logger.Error("failed to read input directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	var docs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			continue
		}
		docs = append(docs, filepath.Join(*dir, e.Name()))
	}
	sort.Strings(docs)
	if len(docs) == 0 {
		printError("Error: no .txt documents found in %s\n", *dir)
		os.Exit(1)
	}

	failed := 0
	for _, doc := range docs {
		env, err := runner.Submit(ctx, pipeline.Request{SourcePath: doc})
		if err != nil {
			logger.Error("document failed", "source", doc, "error", err)
			failed++
			continue
		}
		logger.Info("document digitized",
			"source", doc,
			"job_id", env.Job.JobID,
			"validation_status", env.Validation.Status,
			"requires_manual_review", env.RequiresManualReview,
		)
	}

	metrics, err := store.ReadMetrics()
	if err == nil {
		logger.Info("batch complete",
			"documents", len(docs),
			"failed", failed,
			"metrics", metrics,
		)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
