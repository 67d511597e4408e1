package imaging

import (
	"encoding/base64"
	"io"
	"mime"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/notarykit/docuscan/internal/common"
)

// Image is one captured document image in either accepted input form:
// a binary stream, or a string that may carry a data-URI prefix.
// When both are set, the stream wins.
type Image struct {
	Reader    io.Reader
	Data      string
	MediaType string // optional hint, e.g. "image/png"
}

var reDataURI = regexp.MustCompile(`^data:([a-z]+/[a-z0-9.+-]+);base64,`)

// Normalize converts an Image into a bare base64 payload plus its media type.
// Streams are read in full and encoded; strings have any recognized data-URI
// prefix stripped and the remainder passed through unchanged. No resizing or
// content validation happens here; malformed images are the provider's
// problem to reject.
func Normalize(img Image) (string, string, error) {
	mediaType := strings.TrimSpace(img.MediaType)

	if img.Reader != nil {
		raw, err := io.ReadAll(img.Reader)
		if err != nil {
			return "", "", common.InputError("read image stream", err)
		}
		if mediaType == "" {
			mediaType = "image/jpeg"
		}
		return base64.StdEncoding.EncodeToString(raw), mediaType, nil
	}

	data := strings.TrimSpace(img.Data)
	if data == "" {
		return "", "", common.InputError("empty image input", nil)
	}
	if m := reDataURI.FindStringSubmatch(data); m != nil {
		if mediaType == "" {
			mediaType = m[1]
		}
		data = data[len(m[0]):]
	}
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return data, mediaType, nil
}

// MediaTypeForPath guesses a media type from a file extension, with the
// fallbacks the OpenAI vision endpoint understands.
func MediaTypeForPath(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if mt := mime.TypeByExtension("." + ext); mt != "" {
		return mt
	}
	switch ext {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
