package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRenderFormatsTimestamps(t *testing.T) {
	r := Result{
		Segments: []Segment{
			{Start: 0, End: 4.5, Text: "Hello everyone."},
			{Start: 65, End: 130.2, Text: "Second segment."},
		},
	}

	got := r.Render()
	want := "[00:00 - 00:04] Hello everyone.\n[01:05 - 02:10] Second segment.\n"
	if got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestRenderEmptyResult(t *testing.T) {
	var r Result
	if got := r.Render(); got != "" {
		t.Errorf("Render() on empty result = %q, want empty", got)
	}
}

func TestClientTranscribe(t *testing.T) {
	var gotAuth, gotFormat, gotModel, gotLanguage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}
		gotFormat = r.FormValue("response_format")
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		if _, _, err := r.FormFile("file"); err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"language": "en",
			"segments": [
				{"start": 0.0, "end": 2.0, "text": "  Hello there.  "},
				{"start": 2.0, "end": 3.0, "text": "   "},
				{"start": 3.0, "end": 5.5, "text": "Goodbye."}
			]
		}`))
	}))
	defer server.Close()

	client := &Client{
		URL:    server.URL,
		Model:  "base",
		APIKey: "secret",
		Log:    zerolog.Nop(),
	}

	samples := make([]float32, 1600)
	result, err := client.Transcribe(context.Background(), samples, "en")
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}

	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer secret")
	}
	if gotFormat != "verbose_json" {
		t.Errorf("response_format = %q, want verbose_json", gotFormat)
	}
	if gotModel != "base" {
		t.Errorf("model = %q, want base", gotModel)
	}
	if gotLanguage != "en" {
		t.Errorf("language = %q, want en", gotLanguage)
	}
	if result.Language != "en" {
		t.Errorf("result language = %q, want en", result.Language)
	}
	if len(result.Segments) != 2 {
		t.Fatalf("got %d segments, want 2 (blank segment dropped)", len(result.Segments))
	}
	if result.Segments[0].Text != "Hello there." {
		t.Errorf("segment text = %q, want trimmed %q", result.Segments[0].Text, "Hello there.")
	}
}

func TestClientTranscribeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := &Client{URL: server.URL, Log: zerolog.Nop()}
	_, err := client.Transcribe(context.Background(), make([]float32, 160), "")
	if err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q should mention status code", err)
	}
}
