package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-assistant/internal/documents"
	"resume-assistant/internal/llm"
	"resume-assistant/internal/quiz"
	"resume-assistant/internal/report"
)

func TestFeaturesRequireResume(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Analyze(ctx, "s1")
	assert.ErrorIs(t, err, ErrResumeRequired)
	_, err = f.svc.GenerateQuiz(ctx, "s1")
	assert.ErrorIs(t, err, ErrResumeRequired)
	_, err = f.svc.SubmitQuiz(ctx, "s1", map[string]string{})
	assert.ErrorIs(t, err, ErrResumeRequired)
	_, err = f.svc.Recommend(ctx, "s1")
	assert.ErrorIs(t, err, ErrResumeRequired)
	_, err = f.svc.CoverLetter(ctx, "s1", "jd")
	assert.ErrorIs(t, err, ErrResumeRequired)
	_, err = f.svc.JobMatch(ctx, "s1", "jd")
	assert.ErrorIs(t, err, ErrResumeRequired)
	_, err = f.svc.Report(ctx, "s1")
	assert.ErrorIs(t, err, ErrResumeRequired)

	assert.Empty(t, f.client.prompt(llm.KindAnalysis))
}

func TestLoadDoesNotPersistNewSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	state, err := f.svc.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", state.ID)
	assert.False(t, state.HasResume())

	_, err = f.sessions.Get(ctx, "s1")
	assert.Error(t, err)
}

func TestAnalyzeStoresReply(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.withResume(t, "s1", "Go developer with 5 years experience")

	text, err := f.svc.Analyze(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Strong backend profile.", text)
	assert.Contains(t, f.client.prompt(llm.KindAnalysis), "Go developer with 5 years experience")

	state, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, state.Analysis)
	assert.Equal(t, text, *state.Analysis)
}

func TestEmptyResumeTextStillCountsAsUploaded(t *testing.T) {
	f := newFixture(t)
	f.withResume(t, "s1", "")

	_, err := f.svc.Analyze(context.Background(), "s1")
	assert.NoError(t, err)
}

func TestCompletionFailureLeavesSessionUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.withResume(t, "s1", "resume")

	before, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)

	f.client.set(llm.KindCoverLetter, "", errProviderDown)
	_, err = f.svc.CoverLetter(ctx, "s1", "Backend role")

	var completionErr *CompletionError
	require.ErrorAs(t, err, &completionErr)
	assert.Equal(t, llm.KindCoverLetter, completionErr.Feature)
	assert.True(t, completionErr.Reply.Failed())
	assert.Equal(t, "Chatbot: Error: provider down", completionErr.Reply.String())

	after, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, after.CoverLetter)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
}

func TestEmptyCompletionIsAFailure(t *testing.T) {
	f := newFixture(t)
	f.withResume(t, "s1", "resume")
	f.client.set(llm.KindAnalysis, "   ", nil)

	_, err := f.svc.Analyze(context.Background(), "s1")
	assert.ErrorIs(t, err, llm.ErrEmptyCompletion)
}

func TestQuizFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.withResume(t, "s1", "resume")

	outcome, err := f.svc.GenerateQuiz(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, outcome.Spec, 2)
	assert.Equal(t, quizReply, outcome.Raw)
	assert.Equal(t, "a", outcome.Spec[0].Questions[1].Correct)

	res, err := f.svc.SubmitQuiz(ctx, "s1", map[string]string{
		"Go_0":               "B",
		"Go_1":               "c",
		"Data_Engineering_0": "a",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, quiz.SkillScore{Correct: 1, Total: 2}, res.SkillScores["Go"])

	text, err := f.svc.Recommend(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Take a distributed systems course.", text)
	prompt := f.client.prompt(llm.KindRecommendations)
	assert.Contains(t, prompt, "66.67%")
	assert.Contains(t, prompt, `"skill": "Data Engineering"`)
}

func TestSubmitWithoutQuiz(t *testing.T) {
	f := newFixture(t)
	f.withResume(t, "s1", "resume")

	_, err := f.svc.SubmitQuiz(context.Background(), "s1", map[string]string{"Go_0": "a"})
	assert.ErrorIs(t, err, ErrQuizNotGenerated)
}

func TestRecommendRequiresQuizResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.withResume(t, "s1", "resume")

	_, err := f.svc.GenerateQuiz(ctx, "s1")
	require.NoError(t, err)

	_, err = f.svc.Recommend(ctx, "s1")
	assert.ErrorIs(t, err, ErrQuizRequired)
}

func TestNewQuizKeepsLastResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.withResume(t, "s1", "resume")

	_, err := f.svc.GenerateQuiz(ctx, "s1")
	require.NoError(t, err)
	_, err = f.svc.SubmitQuiz(ctx, "s1", map[string]string{"Go_0": "b"})
	require.NoError(t, err)

	_, err = f.svc.GenerateQuiz(ctx, "s1")
	require.NoError(t, err)

	state, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, state.QuizResult)
	assert.Equal(t, 1, state.QuizResult.Score)
}

func TestQuizParseAndStructureErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.withResume(t, "s1", "resume")

	f.client.set(llm.KindQuiz, "Sure! Here is your quiz:", nil)
	outcome, err := f.svc.GenerateQuiz(ctx, "s1")
	var parseErr *quiz.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "Sure! Here is your quiz:", parseErr.Raw)
	assert.Equal(t, "Sure! Here is your quiz:", outcome.Raw)

	f.client.set(llm.KindQuiz, `[{"skill":"Go","questions":[{"question":"q","options":{"a":"1","b":"2","c":"3"},"correct":"a"}]}]`, nil)
	_, err = f.svc.GenerateQuiz(ctx, "s1")
	var structErr *quiz.StructureError
	require.ErrorAs(t, err, &structErr)
	assert.NotEmpty(t, structErr.Fields)

	state, err := f.sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, state.HasQuiz())
}

func TestJobDescriptionResolution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.withResume(t, "s1", "resume")

	_, err := f.svc.JobMatch(ctx, "s1", "   ")
	assert.ErrorIs(t, err, ErrJobDescriptionRequired)

	err = f.svc.AttachDocument(ctx, "s1", documents.Document{
		ID:   "jd-1",
		Kind: documents.KindJobDescription,
		Text: "Uploaded JD: Kubernetes",
	})
	require.NoError(t, err)

	_, err = f.svc.JobMatch(ctx, "s1", "")
	require.NoError(t, err)
	assert.Contains(t, f.client.prompt(llm.KindJobMatch), "Uploaded JD: Kubernetes")

	_, err = f.svc.CoverLetter(ctx, "s1", "Typed JD: Terraform")
	require.NoError(t, err)
	prompt := f.client.prompt(llm.KindCoverLetter)
	assert.Contains(t, prompt, "Typed JD: Terraform")
	assert.NotContains(t, prompt, "Uploaded JD")
}

func TestReportIncludesPresentSections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.withResume(t, "s1", "My resume")

	_, err := f.svc.CoverLetter(ctx, "s1", "JD")
	require.NoError(t, err)

	out, err := f.svc.Report(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, report.HeaderResume+"\nMy resume\n\n"+report.HeaderCoverLetter+"\nDear hiring manager,", out.Content)
	require.Len(t, out.Sections, 2)
	assert.False(t, strings.Contains(out.Content, report.HeaderQuiz))
}

func TestEndRemovesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	doc, err := f.svc.Docs.Upload(ctx, "s1", documents.KindResume, "cv.txt", "text/plain", strings.NewReader("resume"))
	require.NoError(t, err)
	require.NoError(t, f.svc.AttachDocument(ctx, "s1", doc))

	require.NoError(t, f.svc.End(ctx, "s1"))

	state, err := f.svc.Load(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, state.HasResume())
	_, err = f.svc.Docs.Store.Open(ctx, doc.StorageKey)
	assert.Error(t, err)
}

func TestSessionSlidesExpiryOnWrite(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC().Truncate(time.Second)
	f.svc.now = func() time.Time { return now }
	f.withResume(t, "s1", "resume")

	now = now.Add(30 * time.Minute)
	_, err := f.svc.Analyze(context.Background(), "s1")
	require.NoError(t, err)

	state, err := f.sessions.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, now.Add(time.Hour).Equal(state.ExpiresAt))
}

func (f fixture) upload(t *testing.T, sessionID string, kind documents.Kind, name, body string) documents.Document {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.svc.PrepareUpload(ctx, sessionID))
	doc, err := f.svc.Docs.Upload(ctx, sessionID, kind, name, "text/plain", strings.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, f.svc.AttachDocument(ctx, sessionID, doc))
	return doc
}

func (f fixture) stored(key string) bool {
	rc, err := f.svc.Docs.Store.Open(context.Background(), key)
	if err != nil {
		return false
	}
	rc.Close()
	return true
}

func TestReuploadRemovesReplacedObjects(t *testing.T) {
	f := newFixture(t)

	first := f.upload(t, "s1", documents.KindResume, "old.txt", "old resume")
	second := f.upload(t, "s1", documents.KindResume, "new.txt", "new resume")

	assert.False(t, f.stored(first.StorageKey))
	assert.False(t, f.stored(first.ExtractedTextKey))
	assert.True(t, f.stored(second.StorageKey))
	assert.True(t, f.stored(second.ExtractedTextKey))

	state, err := f.svc.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "new resume", state.ResumeText)
}

func TestExpiredSessionObjectsAreDiscardedOnLoad(t *testing.T) {
	f := newFixture(t)
	past := time.Now().Add(-2 * time.Hour)
	f.svc.now = func() time.Time { return past }
	doc := f.upload(t, "s1", documents.KindResume, "cv.txt", "resume")
	f.svc.now = nil

	state, err := f.svc.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.False(t, state.HasResume())
	assert.False(t, f.stored(doc.StorageKey))
	assert.False(t, f.stored(doc.ExtractedTextKey))
}

func TestUploadIntoExpiredSessionKeepsNewDocument(t *testing.T) {
	f := newFixture(t)
	past := time.Now().Add(-2 * time.Hour)
	f.svc.now = func() time.Time { return past }
	old := f.upload(t, "s1", documents.KindResume, "old.txt", "old resume")
	f.svc.now = nil

	fresh := f.upload(t, "s1", documents.KindResume, "new.txt", "new resume")

	assert.False(t, f.stored(old.StorageKey))
	assert.True(t, f.stored(fresh.StorageKey))
	state, err := f.svc.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "new resume", state.ResumeText)
}

func TestPurgeExpiredDiscardsObjects(t *testing.T) {
	f := newFixture(t)
	past := time.Now().Add(-2 * time.Hour)
	f.svc.now = func() time.Time { return past }
	expired := f.upload(t, "old", documents.KindResume, "cv.txt", "old resume")
	f.svc.now = nil
	live := f.upload(t, "live", documents.KindResume, "cv.txt", "live resume")

	removed, err := f.svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.False(t, f.stored(expired.StorageKey))
	assert.True(t, f.stored(live.StorageKey))

	state, err := f.svc.Load(context.Background(), "live")
	require.NoError(t, err)
	assert.True(t, state.HasResume())
}
