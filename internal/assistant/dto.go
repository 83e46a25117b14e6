package assistant

import (
	"fmt"
	"time"

	"resume-assistant/internal/llm"
	"resume-assistant/internal/quiz"
	"resume-assistant/internal/session"
)

// SubmitQuizRequest carries the chosen letter per question key.
type SubmitQuizRequest struct {
	Answers map[string]string `json:"answers" validate:"required,dive,keys,required,max=256,endkeys,max=8"`
}

// JobDescriptionRequest carries an optional typed job description.
type JobDescriptionRequest struct {
	JobDescription string `json:"jobDescription" validate:"max=50000"`
}

// DocumentView describes an uploaded document without its text.
type DocumentView struct {
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// SessionResponse summarizes what the session holds.
type SessionResponse struct {
	SessionID          string        `json:"sessionId"`
	HasResume          bool          `json:"hasResume"`
	HasJobDescription  bool          `json:"hasJobDescription"`
	HasQuiz            bool          `json:"hasQuiz"`
	HasQuizResult      bool          `json:"hasQuizResult"`
	HasRecommendations bool          `json:"hasRecommendations"`
	HasCoverLetter     bool          `json:"hasCoverLetter"`
	HasJobMatch        bool          `json:"hasJobMatch"`
	Resume             *DocumentView `json:"resume,omitempty"`
	JobDocument        *DocumentView `json:"jobDocument,omitempty"`
	ExpiresAt          time.Time     `json:"expiresAt"`
	Views              []View        `json:"views"`
}

// TextResponse wraps a model reply.
type TextResponse struct {
	Feature string `json:"feature"`
	Text    string `json:"text"`
}

// ResumeResponse returns the extracted resume text.
type ResumeResponse struct {
	Text     string       `json:"text"`
	Document DocumentView `json:"document"`
}

// OptionView is one answer choice.
type OptionView struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// QuestionView is a question without its correct answer.
type QuestionView struct {
	Key      string       `json:"key"`
	Question string       `json:"question"`
	Options  []OptionView `json:"options"`
}

// SkillView groups the questions for one skill.
type SkillView struct {
	Skill     string         `json:"skill"`
	Questions []QuestionView `json:"questions"`
}

// QuizResponse is a generated quiz as shown to the user.
type QuizResponse struct {
	Skills        []SkillView `json:"skills"`
	QuestionCount int         `json:"questionCount"`
	Raw           string      `json:"raw,omitempty"`
}

// SubmitQuizResponse is a graded attempt with its presentation extras.
type SubmitQuizResponse struct {
	Result         quiz.Result             `json:"result"`
	Percentage     float64                 `json:"percentage"`
	PercentageText string                  `json:"percentageText"`
	Summary        string                  `json:"summary"`
	Rating         string                  `json:"rating"`
	Celebrate      bool                    `json:"celebrate"`
	Skills         []quiz.SkillPerformance `json:"skills"`
}

// ReportPreviewResponse is the report shown before download.
type ReportPreviewResponse struct {
	Content  string          `json:"content"`
	FileName string          `json:"fileName"`
	Sections []SectionHeader `json:"sections"`
}

// SectionHeader names a present report section.
type SectionHeader struct {
	Header string `json:"header"`
}

func toDocumentView(ref *session.DocumentRef) *DocumentView {
	if ref == nil {
		return nil
	}
	return &DocumentView{
		FileName:   ref.FileName,
		MimeType:   ref.MimeType,
		SizeBytes:  ref.SizeBytes,
		UploadedAt: ref.UploadedAt,
	}
}

func toSessionResponse(state *session.State) SessionResponse {
	return SessionResponse{
		SessionID:          state.ID,
		HasResume:          state.HasResume(),
		HasJobDescription:  state.JobDescription != "",
		HasQuiz:            state.HasQuiz(),
		HasQuizResult:      state.HasQuizResult(),
		HasRecommendations: state.Recommendations != nil,
		HasCoverLetter:     state.CoverLetter != nil,
		HasJobMatch:        state.JobMatch != nil,
		Resume:             toDocumentView(state.Resume),
		JobDocument:        toDocumentView(state.JobDocument),
		ExpiresAt:          state.ExpiresAt,
		Views:              Views(state),
	}
}

func toQuizResponse(spec quiz.Spec) QuizResponse {
	skills := make([]SkillView, 0, len(spec))
	for _, block := range spec {
		sv := SkillView{Skill: block.Skill, Questions: make([]QuestionView, 0, len(block.Questions))}
		for idx, q := range block.Questions {
			qv := QuestionView{
				Key:      quiz.QuestionKey(block.Skill, idx),
				Question: q.Text,
				Options:  make([]OptionView, 0, len(q.Options)),
			}
			for _, letter := range q.OptionLetters() {
				qv.Options = append(qv.Options, OptionView{Letter: letter, Text: q.Options[letter]})
			}
			sv.Questions = append(sv.Questions, qv)
		}
		skills = append(skills, sv)
	}
	return QuizResponse{Skills: skills, QuestionCount: spec.QuestionCount()}
}

func toSubmitQuizResponse(res quiz.Result) SubmitQuizResponse {
	rating := res.Rating()
	pct := llm.FormatPercentage(res.Score, res.Total)
	return SubmitQuizResponse{
		Result:         res,
		Percentage:     res.Percentage(),
		PercentageText: pct,
		Summary:        fmt.Sprintf("Overall Score: %d out of %d (%s)", res.Score, res.Total, pct),
		Rating:         rating,
		Celebrate:      rating == quiz.RatingExcellent,
		Skills:         res.SkillBreakdown(),
	}
}

func toSectionHeaders(headers []string) []SectionHeader {
	out := make([]SectionHeader, 0, len(headers))
	for _, h := range headers {
		out = append(out, SectionHeader{Header: h})
	}
	return out
}
