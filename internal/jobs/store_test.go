package jobs

import (
	"errors"
	"testing"
	"time"
)

func TestNewID(t *testing.T) {
	ts := time.Unix(1700000000, 42)
	got := NewID("dQw4w9WgXcQ", ts)
	want := "dQw4w9WgXcQ-1700000000000000042"
	if got != want {
		t.Errorf("NewID = %q, want %q", got, want)
	}
}

func TestStatusTerminal(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusProcessing, false},
		{StatusExtracting, false},
		{StatusTranscribing, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}
	for _, c := range cases {
		if got := c.status.Terminal(); got != c.want {
			t.Errorf("Terminal(%q) = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestStore_CreateGet(t *testing.T) {
	s := NewStore()
	now := time.Now()
	j := Job{ID: "abc12345678-1", VideoID: "abc12345678", Status: StatusProcessing, CreatedAt: now}
	s.Create(j)

	got, err := s.Get("abc12345678-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.VideoID != "abc12345678" {
		t.Errorf("VideoID = %q, want abc12345678", got.VideoID)
	}
	if got.Status != StatusProcessing {
		t.Errorf("Status = %q, want processing", got.Status)
	}
}

func TestStore_GetUnknown(t *testing.T) {
	s := NewStore()
	_, err := s.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get unknown = %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateReplaces(t *testing.T) {
	s := NewStore()
	j := Job{ID: "x", Status: StatusExtracting, Error: ""}
	s.Create(j)

	j.Status = StatusFailed
	j.Error = "yt-dlp exited 1"
	s.Update(j)

	got, err := s.Get("x")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusFailed {
		t.Errorf("Status = %q, want failed", got.Status)
	}
	if got.Error != "yt-dlp exited 1" {
		t.Errorf("Error = %q, want yt-dlp exited 1", got.Error)
	}
}

func TestStore_Sweep(t *testing.T) {
	s := NewStore()
	old := Job{ID: "old", CreatedAt: time.Now().Add(-25 * time.Hour)}
	fresh := Job{ID: "fresh", CreatedAt: time.Now().Add(-1 * time.Hour)}
	s.Create(old)
	s.Create(fresh)

	removed := s.Sweep(24 * time.Hour)
	if removed != 1 {
		t.Errorf("Sweep removed = %d, want 1", removed)
	}
	if _, err := s.Get("old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired job still present, err = %v", err)
	}
	if _, err := s.Get("fresh"); err != nil {
		t.Errorf("fresh job swept: %v", err)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := NewStore()
	s.Create(Job{ID: "a", CreatedAt: time.Unix(100, 0)})
	s.Create(Job{ID: "b", CreatedAt: time.Unix(300, 0)})
	s.Create(Job{ID: "c", CreatedAt: time.Unix(200, 0)})

	got := s.List()
	if len(got) != 3 {
		t.Fatalf("List returned %d jobs, want 3", len(got))
	}
	order := []string{got[0].ID, got[1].ID, got[2].ID}
	want := []string{"b", "c", "a"}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("List order = %v, want %v", order, want)
			break
		}
	}
}
