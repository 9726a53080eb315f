package storage

import (
	"context"
	"strings"
	"testing"
)

func TestFileStoreWriteReadRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost:8080/assets")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	url, err := store.Write(context.Background(), "audio/abc-audio.mp3", []byte("mp3-bytes"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if url != "http://localhost:8080/assets/audio/abc-audio.mp3" {
		t.Errorf("url = %q", url)
	}

	key := store.KeyFromURL(url)
	if key != "audio/abc-audio.mp3" {
		t.Fatalf("KeyFromURL = %q", key)
	}
	data, err := store.Read(context.Background(), key)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, key := range []string{"", "../escape", "a/../../b"} {
		if _, err := store.Write(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("key %q: want error", key)
		}
	}
}

func TestFileStoreKeyFromForeignURL(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost/assets")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if got := store.KeyFromURL("https://cdn.example.com/other.mp3"); got != "" {
		t.Errorf("foreign url mapped to key %q", got)
	}
	if !strings.HasPrefix(store.URLFor("x.mp3"), "http://localhost/assets/") {
		t.Errorf("URLFor = %q", store.URLFor("x.mp3"))
	}
}
