package constants

import (
	"fmt"
	"strings"
)

// DocKind selects which extraction schema applies to a document image.
type DocKind string

const (
	KindReceipt  DocKind = "RECEIPT"
	KindIdentity DocKind = "IDENTITY"
)

var allKinds = []DocKind{KindReceipt, KindIdentity}

func AllKinds() []DocKind {
	out := make([]DocKind, len(allKinds))
	copy(out, allKinds)
	return out
}

// ParseDocKind resolves user-facing spellings ("receipt", "id", ...) to a DocKind.
func ParseDocKind(s string) (DocKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "receipt", "receipts":
		return KindReceipt, nil
	case "identity", "id", "identity-document", "identity_document":
		return KindIdentity, nil
	default:
		return "", fmt.Errorf("unknown document kind %q", s)
	}
}
