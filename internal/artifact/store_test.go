package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func writeArtifact(t *testing.T, s *Store, videoID, content string) {
	t.Helper()
	if err := os.WriteFile(s.PathFor(videoID), []byte(content), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
}

func TestStore_PathFor(t *testing.T) {
	s := newTestStore(t)
	got := s.PathFor("dQw4w9WgXcQ")
	want := filepath.Join(s.Dir(), "dQw4w9WgXcQ.mp3")
	if got != want {
		t.Errorf("PathFor = %q, want %q", got, want)
	}
}

func TestStore_ExistsAndSize(t *testing.T) {
	s := newTestStore(t)
	if s.Exists("abc12345678") {
		t.Error("Exists = true for missing artifact")
	}
	writeArtifact(t, s, "abc12345678", "audio-bytes")
	if !s.Exists("abc12345678") {
		t.Error("Exists = false after write")
	}
	if got := s.Size("abc12345678"); got != int64(len("audio-bytes")) {
		t.Errorf("Size = %d, want %d", got, len("audio-bytes"))
	}
	if got := s.Size("missing00000"); got != 0 {
		t.Errorf("Size for missing = %d, want 0", got)
	}
}

func TestStore_RemoveIdempotent(t *testing.T) {
	s := newTestStore(t)
	writeArtifact(t, s, "abc12345678", "x")

	if err := s.Remove("abc12345678"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Exists("abc12345678") {
		t.Error("artifact still present after Remove")
	}
	// Second remove of an absent artifact must not error
	if err := s.Remove("abc12345678"); err != nil {
		t.Errorf("Remove absent: %v", err)
	}
}

func TestStore_Sweep(t *testing.T) {
	s := newTestStore(t)
	writeArtifact(t, s, "oldvideo123", "old")
	writeArtifact(t, s, "newvideo456", "new")

	stale := time.Now().Add(-25 * time.Hour)
	if err := os.Chtimes(s.PathFor("oldvideo123"), stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	removed := s.Sweep(24 * time.Hour)
	if removed != 1 {
		t.Errorf("Sweep removed = %d, want 1", removed)
	}
	if s.Exists("oldvideo123") {
		t.Error("stale artifact survived sweep")
	}
	if !s.Exists("newvideo456") {
		t.Error("fresh artifact was swept")
	}
}

func TestStore_Open(t *testing.T) {
	s := newTestStore(t)
	writeArtifact(t, s, "abc12345678", "some audio")

	f, size, err := s.Open("abc12345678")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	if size != int64(len("some audio")) {
		t.Errorf("size = %d, want %d", size, len("some audio"))
	}

	if _, _, err := s.Open("missing00000"); err == nil {
		t.Error("Open missing artifact: expected error")
	}
}
