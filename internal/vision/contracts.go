package vision

import "context"

// Request is one prompt-plus-image call to a multimodal provider.
type Request struct {
	Prompt    string
	ImageB64  string // bare base64, no data-URI prefix
	MediaType string // e.g. "image/jpeg"
}

// Client is the opaque boundary the pipeline depends on: send a prompt and
// an image, get generated text back. Any provider satisfying it works; no
// parsing happens behind it.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}
