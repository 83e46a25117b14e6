package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-assistant/internal/quiz"
)

func sampleSpec() quiz.Spec {
	return quiz.Spec{{
		Skill: "Go",
		Questions: []quiz.Question{{
			Text:    "What does defer do?",
			Options: map[string]string{"a": "one", "b": "two", "c": "three", "d": "four"},
			Correct: "b",
		}},
	}}
}

func TestNewSetsExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	state := New("s1", now, time.Hour)

	assert.Equal(t, "s1", state.ID)
	assert.Equal(t, now, state.CreatedAt)
	assert.Equal(t, now.Add(time.Hour), state.ExpiresAt)
	assert.False(t, state.Expired(now))
	assert.True(t, state.Expired(now.Add(time.Hour)))
}

func TestHasResumeCountsEmptyText(t *testing.T) {
	state := New("s1", time.Now(), time.Hour)
	assert.False(t, state.HasResume())

	state.SetResume(DocumentRef{ID: "d1", FileName: "scan.pdf"}, "")
	assert.True(t, state.HasResume())
	assert.Equal(t, "", state.ResumeText)
}

func TestSetQuizKeepsPreviousResult(t *testing.T) {
	state := New("s1", time.Now(), time.Hour)
	state.SetQuiz(sampleSpec())
	state.RecordResult(state.Quiz, quiz.Score(state.Quiz, map[string]string{"Go_0": "b"}))

	state.SetQuiz(sampleSpec())

	require.True(t, state.HasQuizResult())
	assert.Equal(t, 1, state.QuizResult.Score)
}

func TestCloneIsDeep(t *testing.T) {
	state := New("s1", time.Now(), time.Hour)
	state.SetQuiz(sampleSpec())
	text := "letter"
	state.CoverLetter = &text

	cp, err := state.Clone()
	require.NoError(t, err)

	cp.Quiz[0].Skill = "Rust"
	*cp.CoverLetter = "changed"

	assert.Equal(t, "Go", state.Quiz[0].Skill)
	assert.Equal(t, "letter", *state.CoverLetter)
}

func TestReportInputMirrorsState(t *testing.T) {
	state := New("s1", time.Now(), time.Hour)
	state.SetResume(DocumentRef{ID: "d1"}, "resume body")
	rec := "learn more"
	state.Recommendations = &rec

	in := state.ReportInput()
	assert.True(t, in.HasResume)
	assert.Equal(t, "resume body", in.ResumeText)
	assert.Nil(t, in.QuizResult)
	require.NotNil(t, in.Recommendations)
	assert.Equal(t, "learn more", *in.Recommendations)
}
