package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"resume-assistant/internal/shared/metrics"
	"resume-assistant/internal/shared/telemetry"
)

// Sampling parameters sent with every completion request.
const (
	Temperature = 0.6
	TopP        = 0.9
)

var (
	// ErrNotConfigured is returned by the placeholder client.
	ErrNotConfigured = errors.New("completion provider not configured")
	// ErrEmptyCompletion marks a reply with no usable text.
	ErrEmptyCompletion = errors.New("empty completion")
)

// Client sends a single-turn prompt to a completion backend.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Usage reports token counts when the provider returns them.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type featureKey struct{}

// WithFeature tags the context with the assistant feature issuing the prompt.
func WithFeature(ctx context.Context, feature string) context.Context {
	return context.WithValue(ctx, featureKey{}, feature)
}

// FeatureFromContext returns the feature tag, or "unknown".
func FeatureFromContext(ctx context.Context) string {
	if f, ok := ctx.Value(featureKey{}).(string); ok && f != "" {
		return f
	}
	return "unknown"
}

// Reply is the outcome of Ask. Err is set when the completion failed.
type Reply struct {
	Text string
	Err  error
}

// Failed reports whether the reply carries an error instead of model text.
func (r Reply) Failed() bool {
	return r.Err != nil
}

// String renders the reply the way the chat surface shows it.
func (r Reply) String() string {
	switch {
	case errors.Is(r.Err, ErrEmptyCompletion):
		return "Chatbot: Sorry, I didn't understand that."
	case r.Err != nil:
		return "Chatbot: Error: " + r.Err.Error()
	default:
		return r.Text
	}
}

// Ask sends prompt through client and returns the trimmed reply. It never
// returns an error or panics; failures are carried in the Reply.
func Ask(ctx context.Context, client Client, prompt string) (reply Reply) {
	defer func() {
		if rec := recover(); rec != nil {
			reply = Reply{Err: fmt.Errorf("completion panicked: %v", rec)}
		}
	}()
	if client == nil {
		return Reply{Err: ErrNotConfigured}
	}
	text, err := client.Complete(ctx, prompt)
	if err != nil {
		return Reply{Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{Err: ErrEmptyCompletion}
	}
	return Reply{Text: text}
}

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(ctx context.Context, prompt string) (string, error) {
	return "", ErrNotConfigured
}

// Instrumented bounds each call with a timeout and records logs and metrics.
type Instrumented struct {
	Next     Client
	Provider string
	Model    string
	Timeout  time.Duration
}

// Complete forwards to the wrapped client.
func (c *Instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	feature := FeatureFromContext(ctx)
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	metrics.IncCompletionRequest(feature)
	start := time.Now()
	text, err := c.Next.Complete(ctx, prompt)
	elapsed := metrics.Since(start)
	metrics.ObserveCompletionDurationMs(elapsed)

	fields := map[string]any{
		"provider":     c.Provider,
		"model":        c.Model,
		"feature":      feature,
		"duration_ms":  elapsed,
		"prompt_chars": len(prompt),
	}
	if err != nil {
		metrics.IncCompletionFailure(feature)
		fields["err"] = err.Error()
		telemetry.Error("llm.completion_failed", fields)
		return "", err
	}
	fields["reply_chars"] = len(text)
	telemetry.Info("llm.completion", fields)
	return text, nil
}

// LogUsage writes provider token usage for a completed call.
func LogUsage(provider, model string, usage Usage) {
	telemetry.Info("llm.usage", map[string]any{
		"provider":          provider,
		"model":             model,
		"prompt_tokens":     usage.PromptTokens,
		"completion_tokens": usage.CompletionTokens,
		"total_tokens":      usage.TotalTokens,
	})
}

var (
	_ Client = PlaceholderClient{}
	_ Client = (*Instrumented)(nil)
)
