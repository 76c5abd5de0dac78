package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/kailas-cloud/pagex/internal/domain"
	dombatch "github.com/kailas-cloud/pagex/internal/domain/batch"
	"github.com/kailas-cloud/pagex/internal/domain/document"
	"github.com/kailas-cloud/pagex/internal/domain/extraction"
	"github.com/kailas-cloud/pagex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockExtractor struct {
	failures  map[string]error // by document name
	callCount int
	cancel    context.CancelFunc // invoked on call number cancelAt
	cancelAt  int
}

func (m *mockExtractor) Extract(_ context.Context, doc document.Document) (*extraction.DocumentResult, error) {
	m.callCount++
	if m.cancel != nil && m.callCount == m.cancelAt {
		m.cancel()
	}
	if err, ok := m.failures[doc.Name()]; ok {
		return nil, err
	}
	res := extraction.NewDocumentResult(doc.Name(), 1)
	if err := res.Add(extraction.NewPageRecord(0, doc.Name()), extraction.NewRaw("text")); err != nil {
		return nil, err
	}
	return res, nil
}

type mockSink struct {
	saved []int
	err   error
}

func (m *mockSink) Save(_ context.Context, index int, _ *extraction.DocumentResult) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, index)
	return nil
}

func docs(names ...string) []document.Document {
	out := make([]document.Document, len(names))
	for i, n := range names {
		out[i] = document.MustNew(n, n+".pdf")
	}
	return out
}

// --- Tests ---

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyFailFast, false},
		{"fail_fast", PolicyFailFast, false},
		{" SKIP ", PolicySkip, false},
		{"retry", "", true},
	}
	for _, tc := range tests {
		got, err := ParsePolicy(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePolicy(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRun_AllSucceed(t *testing.T) {
	sink := &mockSink{}
	svc := New(&mockExtractor{}, sink)

	result, err := svc.Run(context.Background(), docs("A", "B", "C"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Len() != 3 {
		t.Fatalf("expected 3 documents, got %d", result.Len())
	}
	for i, d := range result.Documents() {
		if want := []string{"A", "B", "C"}[i]; d.Name() != want {
			t.Errorf("documents[%d] = %q, want %q", i, d.Name(), want)
		}
	}
	if len(sink.saved) != 3 || sink.saved[2] != 2 {
		t.Errorf("expected sink to receive indexes 0..2, got %v", sink.saved)
	}
	if len(result.Failures()) != 0 {
		t.Errorf("expected no failures, got %v", result.Failures())
	}
}

func TestRun_FailFastStopsAtFirstFailure(t *testing.T) {
	ext := &mockExtractor{failures: map[string]error{
		"B": fmt.Errorf("corrupt: %w", domain.ErrDocumentUnreadable),
	}}

	result, err := New(ext).Run(context.Background(), docs("A", "B", "C"))

	var docErr *DocumentError
	if !errors.As(err, &docErr) {
		t.Fatalf("expected *DocumentError, got %v", err)
	}
	if docErr.Index != 1 || docErr.Name != "B" {
		t.Errorf("expected index 1 name B, got %d %q", docErr.Index, docErr.Name)
	}
	if !errors.Is(err, domain.ErrDocumentUnreadable) {
		t.Errorf("expected ErrDocumentUnreadable in chain, got %v", err)
	}
	if result.Len() != 1 || result.Documents()[0].Name() != "A" {
		t.Errorf("expected only A in partial result, got %d documents", result.Len())
	}
	if ext.callCount != 2 {
		t.Errorf("expected C not to be attempted, got %d calls", ext.callCount)
	}
	fails := result.Failures()
	if len(fails) != 1 || fails[0].Status() != dombatch.StatusFailed {
		t.Errorf("expected one failed outcome, got %v", fails)
	}
}

func TestRun_FailFastOnFirstDocumentReturnsEmpty(t *testing.T) {
	ext := &mockExtractor{failures: map[string]error{"A": domain.ErrInference}}

	result, err := New(ext).Run(context.Background(), docs("A", "B"))
	if !errors.Is(err, domain.ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
	if result == nil || result.Len() != 0 {
		t.Errorf("expected empty partial result")
	}
}

func TestRun_SkipContinues(t *testing.T) {
	ext := &mockExtractor{failures: map[string]error{"B": domain.ErrInference}}
	svc := New(ext).WithPolicy(PolicySkip)

	result, err := svc.Run(context.Background(), docs("A", "B", "C"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Len() != 2 {
		t.Fatalf("expected 2 documents, got %d", result.Len())
	}
	if result.Documents()[1].Name() != "C" {
		t.Errorf("expected C after A, got %q", result.Documents()[1].Name())
	}

	fails := result.Failures()
	if len(fails) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(fails))
	}
	if fails[0].Index() != 1 || fails[0].Status() != dombatch.StatusSkipped {
		t.Errorf("unexpected outcome: index=%d status=%s", fails[0].Index(), fails[0].Status())
	}
	if !errors.Is(fails[0].Err(), domain.ErrInference) {
		t.Errorf("expected cause to be kept, got %v", fails[0].Err())
	}
	if len(result.Outcomes()) != 3 {
		t.Errorf("expected 3 outcomes, got %d", len(result.Outcomes()))
	}
}

func TestRun_SinkFailureFollowsPolicy(t *testing.T) {
	sinkErr := fmt.Errorf("json.set: %w", domain.ErrResultStore)

	t.Run("fail_fast", func(t *testing.T) {
		result, err := New(&mockExtractor{}, &mockSink{err: sinkErr}).Run(context.Background(), docs("A", "B"))
		if !errors.Is(err, domain.ErrResultStore) {
			t.Fatalf("expected ErrResultStore, got %v", err)
		}
		if result.Len() != 0 {
			t.Errorf("expected no documents, got %d", result.Len())
		}
	})

	t.Run("skip", func(t *testing.T) {
		svc := New(&mockExtractor{}, &mockSink{err: sinkErr}).WithPolicy(PolicySkip)
		result, err := svc.Run(context.Background(), docs("A", "B"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Failures()) != 2 {
			t.Errorf("expected 2 failures, got %d", len(result.Failures()))
		}
	})
}

func TestRun_CancelledBetweenDocuments(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ext := &mockExtractor{cancel: cancel, cancelAt: 1}

	result, err := New(ext).Run(ctx, docs("A", "B", "C"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ext.callCount != 1 {
		t.Errorf("expected the current document to finish and no more, got %d calls", ext.callCount)
	}
	if result.Len() != 1 {
		t.Errorf("expected 1 finished document, got %d", result.Len())
	}
}

func TestRun_Empty(t *testing.T) {
	result, err := New(&mockExtractor{}).Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Len() != 0 {
		t.Errorf("expected empty result, got %d", result.Len())
	}
}
