package assistant

import (
	"errors"
	"fmt"

	"resume-assistant/internal/llm"
)

var (
	ErrResumeRequired         = errors.New("resume required")
	ErrQuizRequired           = errors.New("quiz result required")
	ErrQuizNotGenerated       = errors.New("quiz not generated")
	ErrJobDescriptionRequired = errors.New("job description required")
)

// User-facing copy for recoverable warnings.
const (
	MsgResumeRequired         = "Please upload your resume using the sidebar to continue."
	MsgQuizRequired           = "Please complete the Skills Quiz first."
	MsgJobDescriptionRequired = "Please provide a job description."
	MsgQuizNotGenerated       = "Generate a quiz before submitting answers."
)

// CompletionError is returned when the model call for a feature failed. The
// session is left untouched.
type CompletionError struct {
	Feature string
	Reply   llm.Reply
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s completion: %v", e.Feature, e.Reply.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Reply.Err
}
