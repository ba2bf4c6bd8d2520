package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestServer(t *testing.T, routes map[string]any) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("request to %s without User-Agent", r.URL.Path)
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestLookupISBN(t *testing.T) {
	server, _ := newTestServer(t, map[string]any{
		"/isbn/9788535914849.json": map[string]any{
			"key":     "/books/OL1M",
			"title":   "Dom Casmurro",
			"authors": []map[string]string{{"key": "/authors/OL2A"}},
			"works":   []map[string]string{{"key": "/works/OL3W"}},
		},
		"/works/OL3W.json": map[string]any{
			"description": map[string]string{"type": "/type/text", "value": "Bentinho e Capitu."},
			"subjects":    []string{"Ficção brasileira", "Romance"},
		},
		"/authors/OL2A.json": map[string]string{"name": "Machado de Assis"},
	})

	client := NewOpenLibraryClient(server.URL, 0)
	metadata, err := client.LookupISBN(context.Background(), "978-85-359-1484-9")
	if err != nil {
		t.Fatalf("LookupISBN failed: %v", err)
	}

	if metadata.ISBN != "9788535914849" {
		t.Errorf("expected normalized ISBN, got %q", metadata.ISBN)
	}
	if metadata.Title != "Dom Casmurro" {
		t.Errorf("expected title 'Dom Casmurro', got %q", metadata.Title)
	}
	if metadata.Author != "Machado de Assis" {
		t.Errorf("expected author 'Machado de Assis', got %q", metadata.Author)
	}
	if metadata.Description != "Bentinho e Capitu." {
		t.Errorf("expected description from the work, got %q", metadata.Description)
	}
	if len(metadata.Subjects) != 2 || metadata.Subjects[0] != "Ficção brasileira" {
		t.Errorf("unexpected subjects %v", metadata.Subjects)
	}
}

func TestLookupISBN_EditionDescriptionWins(t *testing.T) {
	server, hits := newTestServer(t, map[string]any{
		"/isbn/9788535914849.json": map[string]any{
			"title":       "Dom Casmurro",
			"description": "Edição comentada.",
			"subjects":    []string{"Romance"},
			"works":       []map[string]string{{"key": "/works/OL3W"}},
		},
	})

	client := NewOpenLibraryClient(server.URL, 0)
	metadata, err := client.LookupISBN(context.Background(), "9788535914849")
	if err != nil {
		t.Fatalf("LookupISBN failed: %v", err)
	}
	if metadata.Description != "Edição comentada." {
		t.Errorf("unexpected description %q", metadata.Description)
	}
	if got := atomic.LoadInt32(hits); got != 1 {
		t.Errorf("expected a single request, got %d", got)
	}
}

func TestLookupISBN_NotFound(t *testing.T) {
	server, _ := newTestServer(t, map[string]any{})

	client := NewOpenLibraryClient(server.URL, 0)
	_, err := client.LookupISBN(context.Background(), "9780000000000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupISBN_InvalidISBN(t *testing.T) {
	client := NewOpenLibraryClient("http://127.0.0.1:0", 0)
	if _, err := client.LookupISBN(context.Background(), "12345"); err == nil {
		t.Error("expected error for a 5 digit identifier")
	}
}

func TestLookupISBN_RateLimitHonoursContext(t *testing.T) {
	server, _ := newTestServer(t, map[string]any{
		"/isbn/9788535914849.json": map[string]any{"title": "Dom Casmurro"},
	})

	client := NewOpenLibraryClient(server.URL, time.Hour)
	if _, err := client.LookupISBN(context.Background(), "9788535914849"); err != nil {
		t.Fatalf("first lookup failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.LookupISBN(ctx, "9788535914849"); err == nil {
		t.Error("expected the limiter to refuse a second request within the interval")
	}
}

func TestTextValue(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "  plain  ", "plain"},
		{"typed", map[string]any{"type": "/type/text", "value": "typed"}, "typed"},
		{"nil", nil, ""},
		{"number", 42.0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := textValue(tt.input); got != tt.expected {
				t.Errorf("textValue(%v) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
