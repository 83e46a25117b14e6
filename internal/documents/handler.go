package documents

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-assistant/internal/extract"
	"resume-assistant/internal/shared/server/middleware"
	"resume-assistant/internal/shared/server/respond"
)

// DefaultMaxUploadBytes bounds a single upload when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// Recorder attaches an extracted document to the caller's session.
// PrepareUpload runs before anything is stored and settles the session's
// lifecycle, so objects from an expired session are gone before new ones land.
type Recorder interface {
	PrepareUpload(ctx context.Context, sessionID string) error
	AttachDocument(ctx context.Context, sessionID string, doc Document) error
}

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc      *Service
	Recorder Recorder
	MaxBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, rec Recorder, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Handler{Svc: svc, Recorder: rec, MaxBytes: maxBytes}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/resume", h.upload(KindResume))
	rg.POST("/documents/job-description", h.upload(KindJobDescription))
}

func (h *Handler) upload(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.FeatureKey, "upload_"+string(kind))
		sessionID := middleware.SessionIDFromContext(c)
		if c.Request.ContentLength > h.MaxBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file is too large", gin.H{"maxBytes": h.MaxBytes})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBytes)

		fileHeader, err := c.FormFile("file")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file is too large", gin.H{"maxBytes": h.MaxBytes})
				return
			}
			respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
			return
		}
		if fileHeader.Size > h.MaxBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file is too large", gin.H{"maxBytes": h.MaxBytes})
			return
		}

		if err := h.Recorder.PrepareUpload(c.Request.Context(), sessionID); err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal", "failed to load session", nil)
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
			return
		}
		defer file.Close()

		doc, err := h.Svc.Upload(c.Request.Context(), sessionID, kind, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file)
		if err != nil {
			writeUploadError(c, err, h.MaxBytes)
			return
		}

		if err := h.Recorder.AttachDocument(c.Request.Context(), sessionID, doc); err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal", "failed to save session", nil)
			return
		}

		respond.JSON(c, http.StatusCreated, toResponse(doc))
	}
}

func writeUploadError(c *gin.Context, err error, maxBytes int64) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "file is too large", gin.H{"maxBytes": maxBytes})
	case errors.Is(err, extract.ErrUnsupportedType):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "Only PDF, DOCX and plain text files are supported.", nil)
	case errors.Is(err, extract.ErrUnreadableDocument):
		respond.Error(c, http.StatusUnprocessableEntity, "unreadable_document", "The uploaded file could not be read.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to upload document", nil)
	}
}
