package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// writeStub creates a fake yt-dlp executable from a shell script body.
func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yt-dlp")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// stubWritesOutput resolves the -o template the way yt-dlp would and writes
// fake audio there.
const stubWritesOutput = `
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
out=$(printf '%s' "$out" | sed 's/%(ext)s/mp3/')
printf 'fake mp3 bytes' > "$out"
`

func TestExtract_Success(t *testing.T) {
	stub := writeStub(t, stubWritesOutput)
	e := New(stub, time.Minute, zerolog.Nop())
	dest := filepath.Join(t.TempDir(), "abc12345678.mp3")

	res, err := e.Extract(context.Background(), "abc12345678", dest)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Path != dest {
		t.Errorf("Path = %q, want %q", res.Path, dest)
	}
	if res.Size != int64(len("fake mp3 bytes")) {
		t.Errorf("Size = %d, want %d", res.Size, len("fake mp3 bytes"))
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestExtract_NonzeroExit(t *testing.T) {
	stub := writeStub(t, `echo "ERROR: Video unavailable" >&2; exit 1`)
	e := New(stub, time.Minute, zerolog.Nop())
	dest := filepath.Join(t.TempDir(), "abc12345678.mp3")

	_, err := e.Extract(context.Background(), "abc12345678", dest)
	if !errors.Is(err, ErrToolInvocation) {
		t.Fatalf("err = %v, want ErrToolInvocation", err)
	}
	if _, statErr := os.Stat(dest); statErr == nil {
		t.Error("output file exists after failed extraction")
	}
}

func TestExtract_SilentNoOp(t *testing.T) {
	// Tool exits 0 but writes nothing; the postcondition check must fail.
	stub := writeStub(t, `exit 0`)
	e := New(stub, time.Minute, zerolog.Nop())
	dest := filepath.Join(t.TempDir(), "abc12345678.mp3")

	_, err := e.Extract(context.Background(), "abc12345678", dest)
	if !errors.Is(err, ErrNoOutput) {
		t.Fatalf("err = %v, want ErrNoOutput", err)
	}
}

func TestExtract_Timeout(t *testing.T) {
	stub := writeStub(t, `sleep 10`)
	e := New(stub, 50*time.Millisecond, zerolog.Nop())
	dest := filepath.Join(t.TempDir(), "abc12345678.mp3")

	start := time.Now()
	_, err := e.Extract(context.Background(), "abc12345678", dest)
	if !errors.Is(err, ErrToolInvocation) {
		t.Fatalf("err = %v, want ErrToolInvocation", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout not enforced, took %s", elapsed)
	}
}

func TestTailOf(t *testing.T) {
	out := []byte("line1\nline2\nline3\nline4\nline5\nline6\nline7")
	got := tailOf(out)
	want := "line3\nline4\nline5\nline6\nline7"
	if got != want {
		t.Errorf("tailOf = %q, want %q", got, want)
	}
}
