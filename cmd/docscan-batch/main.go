package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/notarykit/docuscan/constants"
	"github.com/notarykit/docuscan/internal/batch"
	"github.com/notarykit/docuscan/internal/common"
	"github.com/notarykit/docuscan/internal/export"
	"github.com/notarykit/docuscan/internal/extraction"
	"github.com/notarykit/docuscan/internal/vision"
	"github.com/notarykit/docuscan/internal/vision/gemini"
	"github.com/notarykit/docuscan/internal/vision/openai"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	fs := ff.NewFlagSet("docscan-batch")
	var (
		kindFlag   = fs.StringLong("kind", "receipt", "Document kind: 'receipt' or 'identity'")
		dirFlag    = fs.StringLong("dir", "", "Directory of document images to extract")
		outFlag    = fs.StringLong("out", "extractions.xlsx", "Output workbook path")
		extsFlag   = fs.StringLong("ext", "", "Comma-separated extensions to include (default: jpg,jpeg,png,webp)")
		workers    = fs.IntLong("workers", 4, "Concurrent extraction workers")
		attempts   = fs.IntLong("attempts", 3, "Attempts per file for transport failures")
		skipHidden = fs.BoolLong("skip-hidden", "Skip hidden files and directories")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("DOCUSCAN"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if *dirFlag == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --dir is required")
		os.Exit(2)
	}

	kind, err := constants.ParseDocKind(*kindFlag)
	if err != nil {
		logger.Error("invalid kind", "arg", *kindFlag, "error", err)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	client := buildClient(cfg, logger)
	pipeline := extraction.NewPipeline(client, extraction.Config{
		VerifyThreshold:     cfg.Extract.VerifyThreshold,
		HeuristicConfidence: cfg.Extract.HeuristicConfidence,
	}, logger)

	runner := batch.NewRunner(pipeline, batch.Config{
		Workers:     *workers,
		FileTimeout: 2 * time.Minute,
		Attempts:    uint(max(*attempts, 0)),
		SkipHidden:  *skipHidden,
	}, logger)

	var exts []string
	if *extsFlag != "" {
		exts = strings.Split(*extsFlag, ",")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	rows, stats, err := runner.Run(ctx, kind, *dirFlag, exts)
	if err != nil {
		logger.Error("batch run failed", "error", err)
		os.Exit(1)
	}

	workbook, err := export.NewService(logger).BuildWorkbook(kind, rows)
	if err != nil {
		logger.Error("build workbook", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outFlag, workbook, 0o644); err != nil {
		logger.Error("write workbook", "path", *outFlag, "error", err)
		os.Exit(1)
	}

	logger.Info("done",
		"out", *outFlag,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

func buildClient(cfg *common.Config, logger *slog.Logger) vision.Client {
	if cfg.Vision.Provider == "gemini" {
		return gemini.NewClient(gemini.Config{
			APIKey: cfg.Vision.APIKey,
			Model:  cfg.Vision.Model,
		}, logger)
	}
	return openai.NewClient(openai.Config{
		APIKey:      cfg.Vision.APIKey,
		BaseURL:     cfg.Vision.BaseURL,
		Model:       cfg.Vision.Model,
		Temperature: cfg.Vision.Temperature,
		Timeout:     cfg.Vision.Timeout,
	}, logger)
}
