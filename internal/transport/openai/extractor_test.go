package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagex/internal/domain"
	"github.com/kailas-cloud/pagex/internal/domain/page"
	"github.com/kailas-cloud/pagex/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

// chatRequest mirrors the parts of the chat completion request the tests inspect.
type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		} `json:"content"`
	} `json:"messages"`
}

func completionBody(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 30, "total_tokens": 150},
	}
}

func newTestExtractor(t *testing.T, url string) *Extractor {
	t.Helper()
	ext, err := NewExtractor(&Config{
		APIKey:      "test-key",
		BaseURL:     url,
		Model:       "test-model",
		MaxTokens:   3000,
		Instruction: "Return JSON with a タイトル field.",
		Provider:    "test",
		Logger:      zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	return ext
}

func TestExtractor_Extract(t *testing.T) {
	var got chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody(`{"タイトル": "概要"}`, "stop"))
	}))
	defer server.Close()

	ext := newTestExtractor(t, server.URL)

	result, err := ext.Extract(context.Background(), page.NewEncoded(0, page.MediaTypeJPEG, "QUJD"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if result.Text != `{"タイトル": "概要"}` {
		t.Errorf("unexpected text %q", result.Text)
	}
	if result.PromptTokens != 120 || result.CompletionTokens != 30 {
		t.Errorf("unexpected usage %d/%d", result.PromptTokens, result.CompletionTokens)
	}
	if result.RequestID == "" {
		t.Error("expected request id")
	}

	if got.Model != "test-model" {
		t.Errorf("expected model test-model, got %q", got.Model)
	}
	if got.MaxTokens != 3000 {
		t.Errorf("expected max_tokens 3000, got %d", got.MaxTokens)
	}
	if got.Temperature <= 0 || got.Temperature > 1e-6 {
		t.Errorf("expected near-zero temperature, got %g", got.Temperature)
	}
	if len(got.Messages) != 1 || len(got.Messages[0].Content) != 2 {
		t.Fatalf("expected one message with two parts, got %+v", got.Messages)
	}
	parts := got.Messages[0].Content
	if parts[0].Type != "image_url" || parts[0].ImageURL == nil ||
		parts[0].ImageURL.URL != "data:image/jpeg;base64,QUJD" {
		t.Errorf("unexpected image part %+v", parts[0])
	}
	if parts[1].Type != "text" || !strings.Contains(parts[1].Text, "タイトル") {
		t.Errorf("unexpected text part %+v", parts[1])
	}
}

func TestExtractor_TruncatedStillReturnsText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody(`{"タイトル": "概`, "length"))
	}))
	defer server.Close()

	result, err := newTestExtractor(t, server.URL).Extract(context.Background(), page.NewEncoded(0, page.MediaTypeJPEG, "QUJD"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if result.Text != `{"タイトル": "概` {
		t.Errorf("unexpected text %q", result.Text)
	}
}

func TestExtractor_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(t, server.URL).Extract(context.Background(), page.NewEncoded(0, page.MediaTypeJPEG, "QUJD"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrInference) {
		t.Errorf("expected ErrInference, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("expected provider message in error, got %v", err)
	}
}

func TestExtractor_DetailError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"detail":"quota exhausted"}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(t, server.URL).Extract(context.Background(), page.NewEncoded(0, page.MediaTypeJPEG, "QUJD"))
	if !errors.Is(err, domain.ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
	if !strings.Contains(err.Error(), "quota exhausted") {
		t.Errorf("expected detail in error, got %v", err)
	}
}

func TestExtractor_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(t, server.URL).Extract(context.Background(), page.NewEncoded(0, page.MediaTypeJPEG, "QUJD"))
	if !errors.Is(err, domain.ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
}

func TestExtractor_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestExtractor(t, url).Extract(context.Background(), page.NewEncoded(0, page.MediaTypeJPEG, "QUJD"))
	if !errors.Is(err, domain.ErrInference) {
		t.Fatalf("expected ErrInference, got %v", err)
	}
}

func TestNewExtractor_RequiresCredential(t *testing.T) {
	_, err := NewExtractor(&Config{Model: "m", Instruction: "i"})
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestExtractor_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer server.Close()

	if err := newTestExtractor(t, server.URL).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
}

func TestErrorType(t *testing.T) {
	if got := errorType(errors.New("dial tcp")); got != "transport" {
		t.Errorf("expected transport, got %q", got)
	}
}
