package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"server/internal/domain"
)

func TestSynthesizeReturnsAudio(t *testing.T) {
	var gotAuth, gotVoice string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req synthesizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotVoice = req.Voice
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	client, err := NewClient(Options{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	audio, err := client.Synthesize(context.Background(), "hello world", "en-US-standard")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Fatalf("audio = %q", audio)
	}
	if gotAuth != "Bearer k" {
		t.Fatalf("auth = %q", gotAuth)
	}
	if gotVoice != "en-US-standard" {
		t.Fatalf("voice = %q", gotVoice)
	}
}

func TestSynthesizeStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, _ := NewClient(Options{APIKey: "k", BaseURL: srv.URL})
	_, err := client.Synthesize(context.Background(), "hello", "v")
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("expected provider failure, got %v", err)
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	client, _ := NewClient(Options{APIKey: "k", BaseURL: "http://localhost:1"})
	if _, err := client.Synthesize(context.Background(), "   ", "v"); err == nil {
		t.Fatal("expected error for empty text")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "http://x"}); err == nil {
		t.Fatal("expected error without api key")
	}
	if _, err := NewClient(Options{APIKey: "k"}); err == nil {
		t.Fatal("expected error without base url")
	}
}
