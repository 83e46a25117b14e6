package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrInvalidKey is returned for storage keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Object describes a stored upload.
type Object struct {
	Key      string
	Size     int64
	MimeType string
}

// ObjectStore saves uploads under a per-session namespace.
type ObjectStore interface {
	Save(ctx context.Context, sessionID string, fileName string, r io.Reader) (Object, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// SniffLimit is the number of leading bytes used to detect a MIME type.
const SniffLimit = 3072

// DetectMIME reads up to SniffLimit bytes from r and returns the detected type
// along with a reader that replays the consumed bytes.
func DetectMIME(r io.Reader) (string, io.Reader, error) {
	sniff := make([]byte, SniffLimit)
	n, err := io.ReadFull(r, sniff)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	sniff = sniff[:n]
	mime := mimetype.Detect(sniff).String()
	return mime, io.MultiReader(strings.NewReader(string(sniff)), r), nil
}

// CleanKey validates a relative storage key.
func CleanKey(storageKey string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(storageKey, "\\", "/"))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.HasPrefix(clean, "/") {
		return "", ErrInvalidKey
	}
	return clean, nil
}
