package gemini

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/notarykit/docuscan/internal/common"
	"github.com/notarykit/docuscan/internal/vision"
)

// Config for the Gemini vision client.
type Config struct {
	APIKey string
	Model  string // default "gemini-2.0-flash"
}

// Client implements vision.Client using Google Gemini. The underlying SDK
// client is created lazily on first use so that a missing credential is
// reported as a config error at call time, before any network activity.
type Client struct {
	cfg    Config
	logger *slog.Logger

	once    sync.Once
	client  *genai.Client
	model   *genai.GenerativeModel
	initErr error
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, logger: logger}
}

func (c *Client) init(ctx context.Context) error {
	c.once.Do(func() {
		client, err := genai.NewClient(ctx, option.WithAPIKey(c.cfg.APIKey))
		if err != nil {
			c.initErr = common.TransportError("creating gemini client", err)
			return
		}
		c.client = client
		c.model = client.GenerativeModel(c.cfg.Model)
	})
	return c.initErr
}

// Generate sends the prompt plus image and concatenates the text parts of
// the first candidate.
func (c *Client) Generate(ctx context.Context, req vision.Request) (string, error) {
	start := time.Now()

	if c.cfg.APIKey == "" {
		return "", common.ConfigError("gemini api key is not configured")
	}
	if err := c.init(ctx); err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(req.ImageB64)
	if err != nil {
		return "", common.InputError("decode base64 image", err)
	}

	// genai.ImageData wants the bare format suffix, not the MIME type.
	format := strings.TrimPrefix(req.MediaType, "image/")
	if format == "" || format == req.MediaType {
		format = "jpeg"
	}

	parts := []genai.Part{
		genai.ImageData(format, raw),
		genai.Text(req.Prompt),
	}

	resp, err := c.model.GenerateContent(ctx, parts...)
	if err != nil {
		c.logger.Error("vision.gemini.call_error",
			"model", c.cfg.Model, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", common.TransportError("gemini generate content", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", common.EmptyReplyError("no candidates in gemini response")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	out := strings.TrimSpace(text.String())
	if out == "" {
		return "", common.EmptyReplyError("no text parts in gemini response")
	}

	c.logger.Info("vision.gemini.ok",
		"model", c.cfg.Model,
		"reply_len", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// Close releases the underlying SDK client if it was ever created.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}
