package extraction

import (
	"context"
	"log/slog"
	"time"

	"github.com/notarykit/docuscan/constants"
	"github.com/notarykit/docuscan/internal/common"
	"github.com/notarykit/docuscan/internal/imaging"
	"github.com/notarykit/docuscan/internal/parse"
	"github.com/notarykit/docuscan/internal/schema"
	"github.com/notarykit/docuscan/internal/vision"
)

// Config holds the pipeline's two tunable constants. The heuristic default
// sits 5 points above the verification threshold, so heuristic results can
// still verify when every required field resolves.
type Config struct {
	VerifyThreshold     int // default 70, exclusive boundary
	HeuristicConfidence int // default 75
}

// Pipeline composes the extraction stages for one document: normalize image,
// build prompt, call the provider, parse, normalize fields, evaluate trust.
// It holds no mutable state across calls and is safe for concurrent use.
type Pipeline struct {
	logger *slog.Logger
	cfg    Config
	client vision.Client
}

func NewPipeline(client vision.Client, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.VerifyThreshold <= 0 {
		cfg.VerifyThreshold = 70
	}
	if cfg.HeuristicConfidence <= 0 {
		cfg.HeuristicConfidence = 75
	}
	return &Pipeline{
		logger: logger,
		cfg:    cfg,
		client: client,
	}
}

// Extract runs the full pipeline for one document image. Failures to obtain
// text (bad input, missing credential, transport trouble, empty reply)
// surface immediately as typed errors; once any text is obtained the
// remaining stages always produce a Result, degrading to low confidence
// rather than failing.
func (p *Pipeline) Extract(ctx context.Context, kind constants.DocKind, img imaging.Image) (*Result, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	sch, err := schema.Get(kind)
	if err != nil {
		return nil, common.InputError("resolve extraction schema", err)
	}

	b64, mediaType, err := imaging.Normalize(img)
	if err != nil {
		p.logger.Error("extract.image_error", "req_id", rid, "kind", kind, "error", err)
		return nil, err
	}

	p.logger.Info("extract.start",
		"req_id", rid,
		"kind", kind,
		"media_type", mediaType,
		"image_b64_len", len(b64),
	)

	raw, err := p.client.Generate(ctx, vision.Request{
		Prompt:    sch.Prompt(),
		ImageB64:  b64,
		MediaType: mediaType,
	})
	if err != nil {
		p.logger.Error("extract.provider_error",
			"req_id", rid, "kind", kind, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	out := parse.Parse(sch, raw, p.cfg.HeuristicConfidence, p.logger)
	fields, confidence := parse.Normalize(sch, out)
	verified := parse.Verified(sch, fields, confidence, p.cfg.VerifyThreshold)

	p.logger.Info("extract.ok",
		"req_id", rid,
		"kind", kind,
		"tier", out.Tier,
		"conforming", out.Conforming,
		"confidence", confidence,
		"verified", verified,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	return &Result{
		Kind:       kind,
		Fields:     fields,
		Confidence: confidence,
		Verified:   verified,
		RawText:    raw,
		Tier:       out.Tier,
	}, nil
}
