package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	watchURLPrefix = "https://www.youtube.com/watch?v="
	audioFormat    = "mp3"
	audioQuality   = "192K"

	// DefaultTimeout is the hard wall-clock budget for one extraction.
	DefaultTimeout = 5 * time.Minute
)

// ErrToolInvocation marks a nonzero exit or timeout from the extraction tool.
var ErrToolInvocation = errors.New("extraction tool invocation failed")

// ErrNoOutput marks the tool reporting success without producing the file.
var ErrNoOutput = errors.New("extraction produced no output file")

// Result describes a completed extraction.
type Result struct {
	Path string
	Size int64
}

// Extractor downloads a video's audio track via yt-dlp, converted to mp3 at
// a fixed bitrate. One attempt per call, no retry: a failed extraction fails
// the owning job and a fresh request is required to try again.
type Extractor struct {
	binary  string
	timeout time.Duration
	log     zerolog.Logger
}

// New creates an extractor invoking the given yt-dlp binary.
func New(binary string, timeout time.Duration, log zerolog.Logger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{
		binary:  binary,
		timeout: timeout,
		log:     log.With().Str("component", "extractor").Logger(),
	}
}

// Extract downloads the audio for videoID and places it at destPath.
// The tool writes to a temp name in the same directory and the finished file
// is renamed into place, so concurrent extractions of the same video cannot
// observe each other's partial writes. The output file must exist after the
// tool exits; a zero exit with no file is still a failure.
func (e *Extractor) Extract(ctx context.Context, videoID, destPath string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	tmpBase := fmt.Sprintf("%s.%d.part", destPath, time.Now().UnixNano())
	tmpPath := tmpBase + "." + audioFormat

	args := []string{
		"-f", "bestaudio",
		"--extract-audio",
		"--audio-format", audioFormat,
		"--audio-quality", audioQuality,
		"--no-playlist",
		"-o", tmpBase + ".%(ext)s",
		watchURLPrefix + videoID,
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(tmpPath)
		if ctx.Err() == context.DeadlineExceeded {
			return Result{}, fmt.Errorf("%w: timed out after %s", ErrToolInvocation, e.timeout)
		}
		return Result{}, fmt.Errorf("%w: %v: %s", ErrToolInvocation, err, tailOf(output))
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return Result{}, ErrNoOutput
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return Result{}, fmt.Errorf("place output file: %w", err)
	}

	e.log.Debug().
		Str("video_id", videoID).
		Int64("size", info.Size()).
		Dur("duration_ms", time.Since(start)).
		Msg("extraction complete")

	return Result{Path: destPath, Size: info.Size()}, nil
}

// tailOf trims tool output to the last few lines, which is where yt-dlp
// puts the actual error.
func tailOf(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
