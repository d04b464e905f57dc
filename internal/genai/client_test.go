package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestRequest() Request {
	return Request{
		Model:        "gpt-5.2",
		Instructions: "keep it short",
		Input: []InputMessage{
			{Role: "user", Content: []ContentItem{{Type: ContentInputText, Text: "hi"}}},
		},
		MaxOutputTokens: 300,
	}
}

func TestGenerateUsesOutputText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path = %q, want /v1/responses", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.MaxOutputTokens != 300 {
			t.Errorf("max_output_tokens = %d, want 300", req.MaxOutputTokens)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"output_text": "hello there"})
	}))
	defer ts.Close()

	c := NewClient("sk-test", ts.URL, 0)
	got, err := c.Generate(context.Background(), newTestRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "hello there" {
		t.Fatalf("Generate() = %q, want %q", got, "hello there")
	}
}

func TestGenerateFallsBackToOutputArray(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"output": []map[string]any{
				{"content": []map[string]any{{"text": ""}, {"text": "hello"}}},
			},
		})
	}))
	defer ts.Close()

	c := NewClient("sk-test", ts.URL, 0)
	got, err := c.Generate(context.Background(), newTestRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "hello" {
		t.Fatalf("Generate() = %q, want first non-empty content item %q", got, "hello")
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"output_text": "   ",
			"output": []map[string]any{
				{"content": []map[string]any{{"text": ""}}},
			},
		})
	}))
	defer ts.Close()

	c := NewClient("sk-test", ts.URL, 0)
	_, err := c.Generate(context.Background(), newTestRequest())
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("Generate() error = %v, want ErrEmptyResponse", err)
	}
}

func TestGenerateProviderErrorMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limit exceeded"},
		})
	}))
	defer ts.Close()

	c := NewClient("sk-test", ts.URL, 0)
	_, err := c.Generate(context.Background(), newTestRequest())

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Generate() error = %v, want *RequestError", err)
	}
	if reqErr.Status != http.StatusTooManyRequests {
		t.Fatalf("RequestError.Status = %d, want %d", reqErr.Status, http.StatusTooManyRequests)
	}
	if reqErr.Message != "rate limit exceeded" {
		t.Fatalf("RequestError.Message = %q, want provider message", reqErr.Message)
	}
}

func TestGenerateProviderErrorWithoutBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewClient("sk-test", ts.URL, 0)
	_, err := c.Generate(context.Background(), newTestRequest())

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("Generate() error = %v, want *RequestError", err)
	}
	if reqErr.Status != http.StatusBadGateway || reqErr.Message != "" {
		t.Fatalf("RequestError = %+v, want bare status 502", reqErr)
	}
}
