// Package report assembles the downloadable plain-text session report.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"resume-assistant/internal/quiz"
)

const (
	FileName    = "resume_report.txt"
	ContentType = "text/plain; charset=utf-8"
)

// Section headers in report order.
const (
	HeaderResume          = "----- RESUME TEXT -----"
	HeaderQuiz            = "----- QUIZ RESULTS -----"
	HeaderRecommendations = "----- LEARNING RECOMMENDATIONS -----"
	HeaderCoverLetter     = "----- COVER LETTER -----"
	HeaderJobMatch        = "----- JOB DESCRIPTION ANALYSIS -----"
)

// Input is the subset of session state the report reads. Nil pointers and an
// empty resume mark absent sections.
type Input struct {
	ResumeText      string
	HasResume       bool
	QuizResult      *quiz.Result
	Recommendations *string
	CoverLetter     *string
	JobMatch        *string
}

// Section is one rendered block of the report.
type Section struct {
	Header string `json:"header"`
	Body   string `json:"body"`
}

func (s Section) String() string {
	return s.Header + "\n" + s.Body
}

// Sections returns the present sections in report order.
func Sections(in Input) []Section {
	var out []Section
	if in.HasResume {
		out = append(out, Section{Header: HeaderResume, Body: in.ResumeText})
	}
	if in.QuizResult != nil {
		out = append(out, Section{Header: HeaderQuiz, Body: QuizBody(*in.QuizResult)})
	}
	if in.Recommendations != nil {
		out = append(out, Section{Header: HeaderRecommendations, Body: *in.Recommendations})
	}
	if in.CoverLetter != nil {
		out = append(out, Section{Header: HeaderCoverLetter, Body: *in.CoverLetter})
	}
	if in.JobMatch != nil {
		out = append(out, Section{Header: HeaderJobMatch, Body: *in.JobMatch})
	}
	return out
}

// Assemble joins the present sections with a blank line between them.
func Assemble(in Input) string {
	sections := Sections(in)
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "\n\n")
}

// QuizBody renders the score line followed by the indented detailed results.
func QuizBody(res quiz.Result) string {
	details := res.DetailedResults
	if details == nil {
		details = []quiz.QuestionResult{}
	}
	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		data = []byte("[]")
	}
	return fmt.Sprintf("Score: %d out of %d\nDetailed Results:\n%s", res.Score, res.Total, data)
}
