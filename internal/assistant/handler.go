package assistant

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"resume-assistant/internal/llm"
	"resume-assistant/internal/quiz"
	"resume-assistant/internal/report"
	"resume-assistant/internal/shared/server/middleware"
	"resume-assistant/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc      *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, validate: validator.New()}
}

// RegisterRoutes attaches assistant routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/session", h.getSession)
	rg.DELETE("/session", h.endSession)
	rg.GET("/resume", h.getResume)
	rg.POST("/analysis", h.analyze)
	rg.POST("/quiz", h.generateQuiz)
	rg.POST("/quiz/submit", h.submitQuiz)
	rg.POST("/recommendations", h.recommend)
	rg.POST("/cover-letter", h.coverLetter)
	rg.POST("/job-match", h.jobMatch)
	rg.GET("/report", h.downloadReport)
	rg.GET("/report/preview", h.previewReport)
}

func (h *Handler) getSession(c *gin.Context) {
	state, err := h.Svc.Load(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toSessionResponse(state))
}

func (h *Handler) endSession(c *gin.Context) {
	if err := h.Svc.End(c.Request.Context(), middleware.SessionIDFromContext(c)); err != nil {
		writeError(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	c.Status(http.StatusNoContent)
}

func (h *Handler) getResume(c *gin.Context) {
	state, err := h.Svc.Load(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if !state.HasResume() {
		writeError(c, ErrResumeRequired)
		return
	}
	respond.OK(c, ResumeResponse{Text: state.ResumeText, Document: *toDocumentView(state.Resume)})
}

func (h *Handler) analyze(c *gin.Context) {
	c.Set(middleware.FeatureKey, llm.KindAnalysis)
	text, err := h.Svc.Analyze(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, TextResponse{Feature: llm.KindAnalysis, Text: text})
}

func (h *Handler) generateQuiz(c *gin.Context) {
	c.Set(middleware.FeatureKey, llm.KindQuiz)
	outcome, err := h.Svc.GenerateQuiz(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := toQuizResponse(outcome.Spec)
	if c.Query("debug") == "true" {
		resp.Raw = outcome.Raw
	}
	respond.OK(c, resp)
}

func (h *Handler) submitQuiz(c *gin.Context) {
	c.Set(middleware.FeatureKey, "quiz-submit")
	var req SubmitQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", validationMessage(err), nil)
		return
	}

	res, err := h.Svc.SubmitQuiz(c.Request.Context(), middleware.SessionIDFromContext(c), req.Answers)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toSubmitQuizResponse(res))
}

func (h *Handler) recommend(c *gin.Context) {
	c.Set(middleware.FeatureKey, llm.KindRecommendations)
	text, err := h.Svc.Recommend(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, TextResponse{Feature: llm.KindRecommendations, Text: text})
}

func (h *Handler) coverLetter(c *gin.Context) {
	c.Set(middleware.FeatureKey, llm.KindCoverLetter)
	req, ok := h.bindJobDescription(c)
	if !ok {
		return
	}
	text, err := h.Svc.CoverLetter(c.Request.Context(), middleware.SessionIDFromContext(c), req.JobDescription)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, TextResponse{Feature: llm.KindCoverLetter, Text: text})
}

func (h *Handler) jobMatch(c *gin.Context) {
	c.Set(middleware.FeatureKey, llm.KindJobMatch)
	req, ok := h.bindJobDescription(c)
	if !ok {
		return
	}
	text, err := h.Svc.JobMatch(c.Request.Context(), middleware.SessionIDFromContext(c), req.JobDescription)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, TextResponse{Feature: llm.KindJobMatch, Text: text})
}

func (h *Handler) downloadReport(c *gin.Context) {
	out, err := h.Svc.Report(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Attachment(c, report.FileName, report.ContentType, []byte(out.Content))
}

func (h *Handler) previewReport(c *gin.Context) {
	out, err := h.Svc.Report(c.Request.Context(), middleware.SessionIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	headers := make([]string, 0, len(out.Sections))
	for _, s := range out.Sections {
		headers = append(headers, s.Header)
	}
	respond.OK(c, ReportPreviewResponse{
		Content:  out.Content,
		FileName: report.FileName,
		Sections: toSectionHeaders(headers),
	})
}

// bindJobDescription reads an optional JSON body. An empty body is allowed.
func (h *Handler) bindJobDescription(c *gin.Context) (JobDescriptionRequest, bool) {
	var req JobDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return req, false
	}
	if err := h.validate.Struct(req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", validationMessage(err), nil)
		return req, false
	}
	return req, true
}

func writeError(c *gin.Context, err error) {
	var completionErr *CompletionError
	var parseErr *quiz.ParseError
	var structErr *quiz.StructureError
	switch {
	case errors.Is(err, ErrResumeRequired):
		respond.Error(c, http.StatusConflict, "resume_required", MsgResumeRequired, nil)
	case errors.Is(err, ErrQuizRequired):
		respond.Error(c, http.StatusConflict, "quiz_required", MsgQuizRequired, nil)
	case errors.Is(err, ErrQuizNotGenerated):
		respond.Error(c, http.StatusConflict, "quiz_not_generated", MsgQuizNotGenerated, nil)
	case errors.Is(err, ErrJobDescriptionRequired):
		respond.Error(c, http.StatusBadRequest, "validation_error", MsgJobDescriptionRequired, nil)
	case errors.As(err, &completionErr):
		respond.Error(c, http.StatusBadGateway, "completion_failed", completionErr.Reply.String(), gin.H{"feature": completionErr.Feature})
	case errors.As(err, &structErr):
		respond.Error(c, http.StatusUnprocessableEntity, "quiz_structure_error", "The generated quiz did not have the expected structure.", gin.H{
			"fields": structErr.Fields,
			"raw":    structErr.Raw,
		})
	case errors.As(err, &parseErr):
		respond.Error(c, http.StatusUnprocessableEntity, "quiz_parse_error", fmt.Sprintf("JSON parsing error: %v", parseErr.Err), gin.H{
			"raw": parseErr.Raw,
		})
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Something went wrong", nil)
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		ve := verrs[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}
