package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"resume-assistant/internal/extract"
	"resume-assistant/internal/shared/metrics"
	"resume-assistant/internal/shared/storage/object"
	"resume-assistant/internal/shared/telemetry"
	"resume-assistant/internal/shared/util"
)

// Service stores uploads and extracts their text.
type Service struct {
	Store object.ObjectStore
	now   func() time.Time
}

// NewService constructs a Service backed by store.
func NewService(store object.ObjectStore) *Service {
	return &Service{Store: store, now: time.Now}
}

// Upload saves the file under the session's namespace, extracts its text and
// stores the text as a derived object. contentType is the type the client
// declared for the file and may be empty. A file whose text cannot be extracted
// is not kept.
func (s *Service) Upload(ctx context.Context, sessionID string, kind Kind, fileName, contentType string, r io.Reader) (Document, error) {
	if sessionID == "" || !kind.Valid() {
		return Document{}, ErrInvalidInput
	}
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	obj, err := s.Store.Save(ctx, sessionID, name, r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return Document{}, ErrTooLarge
		}
		return Document{}, fmt.Errorf("store upload: %w", err)
	}

	res, err := extract.ExtractText(ctx, s.Store, sessionID, obj, name, contentType)
	if err != nil {
		telemetry.Warn("document.extract_failed", map[string]any{
			"session_id":  sessionID,
			"kind":        string(kind),
			"storage_key": obj.Key,
			"error":       err.Error(),
		})
		if rmErr := s.Remove(context.WithoutCancel(ctx), obj.Key); rmErr != nil {
			telemetry.Error("document.cleanup_failed", map[string]any{
				"session_id":  sessionID,
				"storage_key": obj.Key,
				"error":       rmErr.Error(),
			})
		}
		return Document{}, err
	}

	doc := Document{
		ID:               uuid.NewString(),
		SessionID:        sessionID,
		Kind:             kind,
		FileName:         name,
		MimeType:         res.MimeType,
		SizeBytes:        obj.Size,
		StorageKey:       obj.Key,
		ExtractedTextKey: res.ExtractedKey,
		Text:             res.Text,
		CreatedAt:        s.clock().UTC(),
	}

	metrics.IncDocumentUploaded(string(kind))
	telemetry.Info("document.uploaded", map[string]any{
		"session_id": sessionID,
		"kind":       string(kind),
		"mime_type":  doc.MimeType,
		"size_bytes": doc.SizeBytes,
		"text_chars": len(doc.Text),
	})
	return doc, nil
}

// Remove deletes individual stored objects. Empty keys are skipped.
func (s *Service) Remove(ctx context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.Store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Discard removes every object stored for the session.
func (s *Service) Discard(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidInput
	}
	return s.Store.DeleteSession(ctx, sessionID)
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
