package domain

import "context"

type inferenceUsageKey struct{}

// InferenceUsage collects token usage for a single run.
// The CLI puts a mutable pointer into the context before the batch starts;
// the instrumented extractor writes after each call; the CLI reads it for the run summary.
type InferenceUsage struct {
	Calls            int
	PromptTokens     int
	CompletionTokens int
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *InferenceUsage) {
	u := &InferenceUsage{}
	return context.WithValue(ctx, inferenceUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *InferenceUsage {
	u, _ := ctx.Value(inferenceUsageKey{}).(*InferenceUsage)
	return u
}

// Add records one completed inference call.
func (u *InferenceUsage) Add(r InferenceResult) {
	if u != nil {
		u.Calls++
		u.PromptTokens += r.PromptTokens
		u.CompletionTokens += r.CompletionTokens
	}
}

// TotalTokens returns prompt plus completion tokens across all calls.
func (u *InferenceUsage) TotalTokens() int {
	if u == nil {
		return 0
	}
	return u.PromptTokens + u.CompletionTokens
}
