package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAIProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req openaiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"words": ["lantern"]}`}},
			},
		})
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", BaseURL: server.URL})

	resp, err := p.Generate(context.Background(), UserPrompt("You pick words.", "Pick one word."))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != `{"words": ["lantern"]}` {
		t.Errorf("content = %q", resp.Content)
	}
}

func TestOpenAIProviderStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	p := NewOpenAIProvider(OpenAIConfig{BaseURL: server.URL})

	_, err := p.Generate(context.Background(), UserPrompt("", "hello"))
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if !isRetryableHTTPError(err) {
		t.Errorf("503 should be retryable, got %v", err)
	}
}

func TestIsRetryableHTTPError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"throttled", errors.New("API error (status 429): slow down"), true},
		{"server error", errors.New("API error (status 500): boom"), true},
		{"timeout", fmt.Errorf("%w: client timeout", ErrRequestTimeout), true},
		{"client error", errors.New("API error (status 400): bad request"), false},
		{"other", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableHTTPError(tt.err); got != tt.want {
				t.Errorf("isRetryableHTTPError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestResilientProviderRetriesTimeout(t *testing.T) {
	stub := NewStubProvider(`{"words": ["lantern"]}`).
		FailWith(fmt.Errorf("%w: client timeout", ErrRequestTimeout))

	p := NewResilientProvider(stub, ResilientConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		RatePerSecond: 100,
	})
	defer p.Close()

	resp, err := p.Generate(context.Background(), UserPrompt("", "pick"))
	if err != nil {
		t.Fatalf("timeout was not retried: %v", err)
	}
	if resp.Content != `{"words": ["lantern"]}` {
		t.Errorf("content = %q", resp.Content)
	}
	if got := len(stub.Prompts); got != 2 {
		t.Errorf("provider saw %d attempts, want 2", got)
	}
}

func TestResilientProviderFailsFastOnClientError(t *testing.T) {
	stub := NewStubProvider(`{"words": ["lantern"]}`).
		FailWith(errors.New("API error (status 400): bad request"))

	p := NewResilientProvider(stub, ResilientConfig{
		MaxAttempts:   3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		RatePerSecond: 100,
	})
	defer p.Close()

	if _, err := p.Generate(context.Background(), UserPrompt("", "pick")); err == nil {
		t.Fatal("expected error for non-retryable failure")
	}
	if got := len(stub.Prompts); got != 1 {
		t.Errorf("provider saw %d attempts, want 1", got)
	}
}

func TestStubProviderOrderAndExhaustion(t *testing.T) {
	stub := NewStubProvider("first", "second")

	r1, err := stub.Generate(context.Background(), UserPrompt("", "a"))
	if err != nil || r1.Content != "first" {
		t.Fatalf("got %v, %v", r1, err)
	}
	r2, _ := stub.Generate(context.Background(), UserPrompt("", "b"))
	if r2.Content != "second" {
		t.Fatalf("got %v", r2)
	}
	if _, err := stub.Generate(context.Background(), UserPrompt("", "c")); err == nil {
		t.Error("expected exhaustion error")
	}
	if len(stub.Prompts) != 3 {
		t.Errorf("recorded %d prompts, want 3", len(stub.Prompts))
	}
}
