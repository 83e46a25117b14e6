package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/x", func(c *gin.Context) {
		Error(c, http.StatusConflict, "resume_required", "Upload first", gin.H{"view": "skills-quiz"})
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/x", nil))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "resume_required" || body.Error.Message != "Upload first" {
		t.Fatalf("unexpected body: %+v", body)
	}
	if body.Error.Details == nil {
		t.Fatalf("expected details")
	}
}

func TestAttachmentSetsDisposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/report", func(c *gin.Context) {
		Attachment(c, "resume_report.txt", "text/plain; charset=utf-8", []byte("hello"))
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/report", nil))

	if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename="resume_report.txt"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if resp.Body.String() != "hello" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}
