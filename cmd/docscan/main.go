package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/notarykit/docuscan/constants"
	"github.com/notarykit/docuscan/internal/common"
	"github.com/notarykit/docuscan/internal/extraction"
	"github.com/notarykit/docuscan/internal/imaging"
	"github.com/notarykit/docuscan/internal/vision"
	"github.com/notarykit/docuscan/internal/vision/gemini"
	"github.com/notarykit/docuscan/internal/vision/openai"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	fs := ff.NewFlagSet("docscan")
	var (
		kindFlag = fs.StringLong("kind", "receipt", "Document kind: 'receipt' or 'identity'")
		fileFlag = fs.StringLong("file", "", "Path to the document image")
		pretty   = fs.BoolLong("pretty", "Indent the JSON output")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("DOCUSCAN"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if *fileFlag == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --file is required")
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

	f, err := os.Open(*fileFlag)
	if err != nil {
		logger.Error("open image", "path", *fileFlag, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Vision.Timeout*2)
	defer cancel()

	result, err := pipeline.Extract(ctx, kind, imaging.Image{
		Reader:    f,
		MediaType: imaging.MediaTypeForPath(*fileFlag),
	})
	if err != nil {
		logger.Error("extract failed", "path", *fileFlag, "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
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
