package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-assistant/internal/documents"
	"resume-assistant/internal/llm"
	"resume-assistant/internal/quiz"
	"resume-assistant/internal/report"
	"resume-assistant/internal/session"
	"resume-assistant/internal/shared/metrics"
	"resume-assistant/internal/shared/telemetry"
)

// DefaultSessionTTL applies when no TTL is configured.
const DefaultSessionTTL = 24 * time.Hour

// Service runs the assistant features against a session.
type Service struct {
	Sessions session.Store
	Docs     *documents.Service
	LLM      llm.Client
	TTL      time.Duration
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(sessions session.Store, docs *documents.Service, client llm.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		Sessions: sessions,
		Docs:     docs,
		LLM:      client,
		TTL:      ttl,
		now:      time.Now,
	}
}

// QuizOutcome is a freshly generated quiz and the reply it was decoded from.
type QuizOutcome struct {
	Spec quiz.Spec
	Raw  string
}

// ReportOutcome is the assembled report and its sections.
type ReportOutcome struct {
	Content  string
	Sections []report.Section
}

// Load returns the session, or a new empty one when none is stored. A new
// session is not persisted until something is written to it. Objects left by
// an expired session are discarded before the new one starts.
func (s *Service) Load(ctx context.Context, sessionID string) (*session.State, error) {
	return s.load(ctx, sessionID, true)
}

// PrepareUpload loads the session so an expired one is cleaned up before an
// upload stores new objects under the same namespace.
func (s *Service) PrepareUpload(ctx context.Context, sessionID string) error {
	_, err := s.Load(ctx, sessionID)
	return err
}

func (s *Service) load(ctx context.Context, sessionID string, discardExpired bool) (*session.State, error) {
	if sessionID == "" {
		return nil, session.ErrInvalidState
	}
	state, err := s.Sessions.Get(ctx, sessionID)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, session.ErrNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if discardExpired && errors.Is(err, session.ErrExpired) {
		if err := s.discard(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("discard expired session: %w", err)
		}
		telemetry.Info("session.expired", map[string]any{"session_id": sessionID})
	}
	return session.New(sessionID, s.clock(), s.TTL), nil
}

// AttachDocument records an extracted upload on the session.
// The upload's objects already live in the session namespace, so an expiry
// seen here must not discard it.
func (s *Service) AttachDocument(ctx context.Context, sessionID string, doc documents.Document) error {
	state, err := s.load(ctx, sessionID, false)
	if err != nil {
		return err
	}
	ref := session.DocumentRef{
		ID:               doc.ID,
		FileName:         doc.FileName,
		MimeType:         doc.MimeType,
		SizeBytes:        doc.SizeBytes,
		StorageKey:       doc.StorageKey,
		ExtractedTextKey: doc.ExtractedTextKey,
		UploadedAt:       doc.CreatedAt,
	}
	var previous *session.DocumentRef
	switch doc.Kind {
	case documents.KindResume:
		previous = state.Resume
		state.SetResume(ref, doc.Text)
	case documents.KindJobDescription:
		previous = state.JobDocument
		state.SetJobDescription(ref, doc.Text)
	default:
		return documents.ErrInvalidInput
	}
	if err := s.commit(ctx, state); err != nil {
		return err
	}

	// The replaced upload is no longer reachable from the session.
	if previous != nil && s.Docs != nil && previous.StorageKey != ref.StorageKey {
		if err := s.Docs.Remove(ctx, previous.StorageKey, previous.ExtractedTextKey); err != nil {
			telemetry.Warn("document.cleanup_failed", map[string]any{
				"session_id":  sessionID,
				"storage_key": previous.StorageKey,
				"error":       err.Error(),
			})
		}
	}
	return nil
}

// End deletes the session's stored objects and its record.
func (s *Service) End(ctx context.Context, sessionID string) error {
	if err := s.discard(ctx, sessionID); err != nil {
		return fmt.Errorf("discard documents: %w", err)
	}
	if err := s.Sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	telemetry.Info("session.ended", map[string]any{"session_id": sessionID})
	return nil
}

// PurgeExpired removes every session expired now together with its stored
// objects, and returns how many sessions were removed.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	ids, err := s.Sessions.PurgeExpired(ctx, s.clock().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	var errs []error
	for _, id := range ids {
		if err := s.discard(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("discard %s: %w", id, err))
		}
	}
	telemetry.Info("sessions.purged", map[string]any{"count": len(ids), "failed": len(errs)})
	return len(ids), errors.Join(errs...)
}

func (s *Service) discard(ctx context.Context, sessionID string) error {
	if s.Docs == nil {
		return nil
	}
	return s.Docs.Discard(ctx, sessionID)
}

// Analyze asks the model for a resume analysis.
func (s *Service) Analyze(ctx context.Context, sessionID string) (string, error) {
	state, err := s.requireResume(ctx, sessionID)
	if err != nil {
		return "", err
	}
	reply := s.ask(ctx, llm.KindAnalysis, llm.AnalysisPrompt(state.ResumeText))
	if reply.Failed() {
		return "", &CompletionError{Feature: llm.KindAnalysis, Reply: reply}
	}
	state.Analysis = &reply.Text
	if err := s.commit(ctx, state); err != nil {
		return "", err
	}
	return reply.Text, nil
}

// GenerateQuiz asks the model for a quiz and stores it once it decodes and
// validates. Any previous result stays in place.
func (s *Service) GenerateQuiz(ctx context.Context, sessionID string) (QuizOutcome, error) {
	state, err := s.requireResume(ctx, sessionID)
	if err != nil {
		return QuizOutcome{}, err
	}
	reply := s.ask(ctx, llm.KindQuiz, llm.QuizPrompt(state.ResumeText))
	if reply.Failed() {
		return QuizOutcome{}, &CompletionError{Feature: llm.KindQuiz, Reply: reply}
	}
	spec, err := quiz.Decode(reply.Text)
	if err != nil {
		telemetry.Warn("quiz.decode_failed", map[string]any{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return QuizOutcome{Raw: reply.Text}, err
	}
	state.SetQuiz(spec)
	if err := s.commit(ctx, state); err != nil {
		return QuizOutcome{}, err
	}
	return QuizOutcome{Spec: spec, Raw: reply.Text}, nil
}

// SubmitQuiz grades answers against the stored quiz.
func (s *Service) SubmitQuiz(ctx context.Context, sessionID string, answers map[string]string) (quiz.Result, error) {
	state, err := s.requireResume(ctx, sessionID)
	if err != nil {
		return quiz.Result{}, err
	}
	if !state.HasQuiz() {
		return quiz.Result{}, ErrQuizNotGenerated
	}
	res := quiz.Score(state.Quiz, answers)
	state.RecordResult(state.Quiz, res)
	if err := s.commit(ctx, state); err != nil {
		return quiz.Result{}, err
	}
	metrics.IncQuizSubmission()
	telemetry.Info("quiz.submitted", map[string]any{
		"session_id": sessionID,
		"score":      res.Score,
		"total":      res.Total,
		"rating":     res.Rating(),
	})
	return res, nil
}

// Recommend asks for learning recommendations from the last quiz result.
func (s *Service) Recommend(ctx context.Context, sessionID string) (string, error) {
	state, err := s.requireResume(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if !state.HasQuizResult() {
		return "", ErrQuizRequired
	}
	res := state.QuizResult
	prompt := llm.RecommendationsPrompt(state.ResumeText, state.ScoredQuiz.IndentedJSON(), res.Score, res.Total)
	reply := s.ask(ctx, llm.KindRecommendations, prompt)
	if reply.Failed() {
		return "", &CompletionError{Feature: llm.KindRecommendations, Reply: reply}
	}
	state.Recommendations = &reply.Text
	if err := s.commit(ctx, state); err != nil {
		return "", err
	}
	return reply.Text, nil
}

// CoverLetter writes a cover letter for the typed job description, or the
// uploaded one when nothing was typed.
func (s *Service) CoverLetter(ctx context.Context, sessionID, typed string) (string, error) {
	state, err := s.requireResume(ctx, sessionID)
	if err != nil {
		return "", err
	}
	jd, err := resolveJobDescription(state, typed)
	if err != nil {
		return "", err
	}
	reply := s.ask(ctx, llm.KindCoverLetter, llm.CoverLetterPrompt(state.ResumeText, jd))
	if reply.Failed() {
		return "", &CompletionError{Feature: llm.KindCoverLetter, Reply: reply}
	}
	state.CoverLetter = &reply.Text
	if err := s.commit(ctx, state); err != nil {
		return "", err
	}
	return reply.Text, nil
}

// JobMatch compares the resume with a job description.
func (s *Service) JobMatch(ctx context.Context, sessionID, typed string) (string, error) {
	state, err := s.requireResume(ctx, sessionID)
	if err != nil {
		return "", err
	}
	jd, err := resolveJobDescription(state, typed)
	if err != nil {
		return "", err
	}
	reply := s.ask(ctx, llm.KindJobMatch, llm.JobMatchPrompt(state.ResumeText, jd))
	if reply.Failed() {
		return "", &CompletionError{Feature: llm.KindJobMatch, Reply: reply}
	}
	state.JobMatch = &reply.Text
	if err := s.commit(ctx, state); err != nil {
		return "", err
	}
	return reply.Text, nil
}

// Report assembles the downloadable report.
func (s *Service) Report(ctx context.Context, sessionID string) (ReportOutcome, error) {
	state, err := s.requireResume(ctx, sessionID)
	if err != nil {
		return ReportOutcome{}, err
	}
	in := state.ReportInput()
	return ReportOutcome{
		Content:  report.Assemble(in),
		Sections: report.Sections(in),
	}, nil
}

func (s *Service) requireResume(ctx context.Context, sessionID string) (*session.State, error) {
	state, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !state.HasResume() {
		return nil, ErrResumeRequired
	}
	return state, nil
}

func (s *Service) ask(ctx context.Context, feature, prompt string) llm.Reply {
	return llm.Ask(llm.WithFeature(ctx, feature), s.LLM, prompt)
}

func (s *Service) commit(ctx context.Context, state *session.State) error {
	state.Touch(s.clock(), s.TTL)
	if err := s.Sessions.Save(ctx, state); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func resolveJobDescription(state *session.State, typed string) (string, error) {
	if jd := strings.TrimSpace(typed); jd != "" {
		return jd, nil
	}
	if jd := strings.TrimSpace(state.JobDescription); jd != "" {
		return jd, nil
	}
	return "", ErrJobDescriptionRequired
}
