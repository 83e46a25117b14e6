// Package session holds the per-browser assistant state and its stores.
package session

import (
	"encoding/json"
	"time"

	"resume-assistant/internal/quiz"
	"resume-assistant/internal/report"
)

// DocumentRef points at an uploaded document and its derived text object.
type DocumentRef struct {
	ID               string    `json:"id"`
	FileName         string    `json:"fileName"`
	MimeType         string    `json:"mimeType"`
	SizeBytes        int64     `json:"sizeBytes"`
	StorageKey       string    `json:"storageKey"`
	ExtractedTextKey string    `json:"extractedTextKey,omitempty"`
	UploadedAt       time.Time `json:"uploadedAt"`
}

// State is everything the assistant remembers for one browser session.
// Nil pointers and empty values mean the output has not been produced.
type State struct {
	ID             string       `json:"id"`
	ResumeText     string       `json:"resumeText"`
	Resume         *DocumentRef `json:"resume,omitempty"`
	JobDescription string       `json:"jobDescription,omitempty"`
	JobDocument    *DocumentRef `json:"jobDocument,omitempty"`

	Quiz       quiz.Spec    `json:"quiz,omitempty"`
	QuizResult *quiz.Result `json:"quizResult,omitempty"`
	ScoredQuiz quiz.Spec    `json:"scoredQuiz,omitempty"`

	Analysis        *string `json:"analysis,omitempty"`
	Recommendations *string `json:"recommendations,omitempty"`
	CoverLetter     *string `json:"coverLetter,omitempty"`
	JobMatch        *string `json:"jobMatch,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// New returns an empty state that expires ttl after now.
func New(id string, now time.Time, ttl time.Duration) *State {
	now = now.UTC()
	return &State{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// HasResume reports whether a resume has been uploaded. An upload whose
// extraction produced no text still counts.
func (s *State) HasResume() bool {
	return s != nil && s.Resume != nil
}

func (s *State) HasQuiz() bool {
	return s != nil && len(s.Quiz) > 0
}

func (s *State) HasQuizResult() bool {
	return s != nil && s.QuizResult != nil
}

// SetResume replaces the stored resume and its text.
func (s *State) SetResume(ref DocumentRef, text string) {
	s.Resume = &ref
	s.ResumeText = text
}

// SetJobDescription stores an uploaded job description.
func (s *State) SetJobDescription(ref DocumentRef, text string) {
	s.JobDocument = &ref
	s.JobDescription = text
}

// SetQuiz replaces the quiz. The previous result stays until the new quiz is
// submitted.
func (s *State) SetQuiz(spec quiz.Spec) {
	s.Quiz = spec
}

// RecordResult stores a graded attempt along with the quiz it was graded
// against.
func (s *State) RecordResult(spec quiz.Spec, res quiz.Result) {
	s.ScoredQuiz = spec
	s.QuizResult = &res
}

// Touch bumps the update time and slides the expiry window.
func (s *State) Touch(now time.Time, ttl time.Duration) {
	now = now.UTC()
	s.UpdatedAt = now
	s.ExpiresAt = now.Add(ttl)
}

// Expired reports whether the state is past its expiry at now.
func (s *State) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// ReportInput returns the sections the downloadable report reads.
func (s *State) ReportInput() report.Input {
	return report.Input{
		ResumeText:      s.ResumeText,
		HasResume:       s.HasResume(),
		QuizResult:      s.QuizResult,
		Recommendations: s.Recommendations,
		CoverLetter:     s.CoverLetter,
		JobMatch:        s.JobMatch,
	}
}

// Clone returns a deep copy.
func (s *State) Clone() (*State, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out State
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
