package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"resume-assistant/internal/documents"
	"resume-assistant/internal/llm"
	"resume-assistant/internal/session"
	"resume-assistant/internal/shared/storage/object/local"
)

const quizReply = `[
  {
    "skill": "Go",
    "questions": [
      {"question": "Which keyword defers a call?", "options": {"a": "go", "b": "defer", "c": "wait", "d": "later"}, "correct": "b"},
      {"question": "Zero value of a map?", "options": {"a": "nil", "b": "{}", "c": "0", "d": "empty"}, "correct": "A"}
    ]
  },
  {
    "skill": "Data Engineering",
    "questions": [
      {"question": "What is ETL?", "options": {"a": "Extract Transform Load", "b": "Edit Test Launch", "c": "Emit Trace Log", "d": "None"}, "correct": "a"}
    ]
  }
]`

// fakeClient answers by feature tag and records the prompts it saw.
type fakeClient struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	prompts map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		replies: map[string]string{
			llm.KindAnalysis:        "Strong backend profile.",
			llm.KindQuiz:            quizReply,
			llm.KindRecommendations: "Take a distributed systems course.",
			llm.KindCoverLetter:     "Dear hiring manager,",
			llm.KindJobMatch:        "Good match, add Kubernetes.",
		},
		errs:    map[string]error{},
		prompts: map[string]string{},
	}
}

func (f *fakeClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	feature := llm.FeatureFromContext(ctx)
	f.prompts[feature] = prompt
	if err := f.errs[feature]; err != nil {
		return "", err
	}
	return f.replies[feature], nil
}

func (f *fakeClient) set(feature, reply string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[feature] = reply
	if err != nil {
		f.errs[feature] = err
	} else {
		delete(f.errs, feature)
	}
}

func (f *fakeClient) prompt(feature string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prompts[feature]
}

var errProviderDown = errors.New("provider down")

type fixture struct {
	svc      *Service
	client   *fakeClient
	sessions *session.MemoryStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client := newFakeClient()
	sessions := session.NewMemoryStore()
	docs := documents.NewService(local.New(t.TempDir()))
	svc := NewService(sessions, docs, client, time.Hour)
	return fixture{svc: svc, client: client, sessions: sessions}
}

func (f fixture) withResume(t *testing.T, sessionID, text string) {
	t.Helper()
	doc := documents.Document{
		ID:        "doc-" + sessionID,
		Kind:      documents.KindResume,
		FileName:  "resume.txt",
		MimeType:  "text/plain",
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := f.svc.AttachDocument(context.Background(), sessionID, doc); err != nil {
		t.Fatalf("attach resume: %v", err)
	}
}
