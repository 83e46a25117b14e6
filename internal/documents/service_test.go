package documents

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-assistant/internal/extract"
	"resume-assistant/internal/shared/storage/object/local"
	"resume-assistant/internal/shared/util"
)

func TestServiceUploadStoresOriginalAndText(t *testing.T) {
	store := local.New(t.TempDir())
	svc := NewService(store)
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "session-1", KindResume, "../cv.txt", "text/plain", strings.NewReader("\ufeffHello"))
	require.ErrorIs(t, err, ErrInvalidInput)

	doc, err = svc.Upload(ctx, "session-1", KindResume, "cv.txt", "text/plain", strings.NewReader("\ufeffHello"))
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Text)
	assert.Equal(t, extract.MimeText, doc.MimeType)
	assert.Equal(t, "cv.txt", doc.FileName)
	assert.Equal(t, fixed, doc.CreatedAt)
	assert.EqualValues(t, len("\ufeffHello"), doc.SizeBytes)

	rc, err := store.Open(ctx, doc.ExtractedTextKey)
	require.NoError(t, err)
	defer rc.Close()
	derived, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "Hello", string(derived))
}

func TestServiceUploadValidatesInput(t *testing.T) {
	svc := NewService(local.New(t.TempDir()))
	ctx := context.Background()

	_, err := svc.Upload(ctx, "", KindResume, "cv.txt", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Upload(ctx, "s1", Kind("photo"), "cv.txt", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestServiceUploadEmptyTextIsNotAnError(t *testing.T) {
	svc := NewService(local.New(t.TempDir()))

	doc, err := svc.Upload(context.Background(), "s1", KindResume, "blank.txt", "text/plain", strings.NewReader("   \n"))
	require.NoError(t, err)
	assert.Equal(t, "", doc.Text)
}

func TestServiceDiscardRemovesSessionObjects(t *testing.T) {
	store := local.New(t.TempDir())
	svc := NewService(store)
	ctx := context.Background()

	doc, err := svc.Upload(ctx, "s1", KindResume, "cv.txt", "text/plain", strings.NewReader("Hello"))
	require.NoError(t, err)

	require.NoError(t, svc.Discard(ctx, "s1"))
	_, err = store.Open(ctx, doc.StorageKey)
	assert.Error(t, err)
}

func TestServiceUploadTxtWithSniffableContent(t *testing.T) {
	svc := NewService(local.New(t.TempDir()))
	ctx := context.Background()

	bodies := []string{
		"Jane Doe, Software Engineer\nSkills, Go\nExperience, 5 years\nEducation, BSc",
		"<html> is a skill I list next to CSS",
	}
	for _, body := range bodies {
		for _, declared := range []string{"", "text/plain", "application/octet-stream"} {
			doc, err := svc.Upload(ctx, "s1", KindResume, "resume.txt", declared, strings.NewReader(body))
			require.NoError(t, err, "declared=%q body=%q", declared, body)
			assert.Equal(t, extract.MimeText, doc.MimeType)
			assert.Equal(t, body, doc.Text)
		}
	}
}

func TestServiceUploadRemovesOriginalWhenExtractionFails(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(local.New(dir))
	ctx := context.Background()

	_, err := svc.Upload(ctx, "s1", KindResume, "cv.pdf", "application/pdf", strings.NewReader("not really a pdf"))
	require.ErrorIs(t, err, extract.ErrUnreadableDocument)

	entries, err := os.ReadDir(filepath.Join(dir, util.HashSessionKey("s1")))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestServiceRemoveDeletesOnlyNamedObjects(t *testing.T) {
	store := local.New(t.TempDir())
	svc := NewService(store)
	ctx := context.Background()

	first, err := svc.Upload(ctx, "s1", KindResume, "old.txt", "text/plain", strings.NewReader("old"))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, "s1", KindResume, "new.txt", "text/plain", strings.NewReader("new"))
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, first.StorageKey, first.ExtractedTextKey, ""))

	_, err = store.Open(ctx, first.StorageKey)
	assert.Error(t, err)
	_, err = store.Open(ctx, first.ExtractedTextKey)
	assert.Error(t, err)
	rc, err := store.Open(ctx, second.StorageKey)
	require.NoError(t, err)
	rc.Close()
}
