package artifact

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Ext is the audio container extension used for every cached artifact.
const Ext = ".mp3"

// Store manages cached audio files on local scratch storage, keyed by video
// ID. At most one live file exists per video ID; contents are never
// validated here, the extractor is responsible for that at creation time.
type Store struct {
	dir string
	log zerolog.Logger
}

// NewStore creates the scratch directory if needed and returns a store over it.
func NewStore(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir, log: log.With().Str("component", "artifacts").Logger()}, nil
}

// Dir returns the scratch directory path.
func (s *Store) Dir() string { return s.dir }

// PathFor returns the deterministic artifact path for a video ID.
func (s *Store) PathFor(videoID string) string {
	return filepath.Join(s.dir, videoID+Ext)
}

// Exists reports whether a cached artifact is present for the video ID.
func (s *Store) Exists(videoID string) bool {
	_, err := os.Stat(s.PathFor(videoID))
	return err == nil
}

// Size returns the artifact's size in bytes, or 0 if absent.
func (s *Store) Size(videoID string) int64 {
	info, err := os.Stat(s.PathFor(videoID))
	if err != nil {
		return 0
	}
	return info.Size()
}

// Remove deletes the artifact for the video ID. Removing an absent artifact
// is not an error.
func (s *Store) Remove(videoID string) error {
	err := os.Remove(s.PathFor(videoID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", s.PathFor(videoID), err)
	}
	return nil
}

// Open returns a reader over the artifact plus its size, for HTTP serving.
func (s *Store) Open(videoID string) (*os.File, int64, error) {
	f, err := os.Open(s.PathFor(videoID))
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

// Usage reports the number of cached artifacts and their total size.
func (s *Store) Usage() (files int, bytes int64) {
	filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		files++
		bytes += info.Size()
		return nil
	})
	return files, bytes
}

// Sweep deletes every file in the scratch directory whose modification time
// is older than maxAge, and returns how many were removed. Individual
// filesystem errors are logged and skipped so one bad entry cannot abort
// the rest of the sweep.
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("sweep: walk error")
			return nil
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("sweep: stat error")
			return nil
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("sweep: remove error")
			return nil
		}
		removed++
		return nil
	})
	return removed
}
