package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCompleteSendsWireFormatAndReturnsContent(t *testing.T) {
	var captured wireRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("authorization header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"the answer"}}]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(Settings{BaseURL: srv.URL, APIKey: "secret", Model: "test-model"})
	got, err := client.Complete(context.Background(), Request{
		Messages:    []Message{{Role: "user", Content: "hello"}},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "the answer" {
		t.Fatalf("content = %q", got)
	}
	if captured.Model != "test-model" || captured.Temperature != 0.7 || captured.MaxTokens != 500 {
		t.Fatalf("wire request = %+v", captured)
	}
}

func TestCompleteNotConfigured(t *testing.T) {
	client := NewHTTPClient(Settings{})
	if _, err := client.Complete(context.Background(), Request{}); err != ErrNotConfigured {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestCompleteSurfacesHTTPFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPClient(Settings{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	_, err := client.Complete(context.Background(), Request{})
	if err == nil || !strings.Contains(err.Error(), "status 503") {
		t.Fatalf("err = %v, want status error", err)
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(Settings{BaseURL: srv.URL, APIKey: "k", Model: "m"})
	if _, err := client.Complete(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
