package pipeline

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// videoIDPattern is the fixed 11-character YouTube video ID token.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ResolveVideoID extracts the video ID from a bare ID or any common YouTube
// URL form (watch, youtu.be, shorts, embed).
func ResolveVideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	if videoIDPattern.MatchString(raw) {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %q is neither a video ID nor a URL", ErrInvalidInput, raw)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	var candidate string
	switch {
	case host == "youtu.be":
		candidate = strings.Trim(u.Path, "/")
	case strings.HasSuffix(host, "youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			candidate = v
			break
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && (parts[0] == "shorts" || parts[0] == "embed" || parts[0] == "live") {
			candidate = parts[1]
		}
	default:
		return "", fmt.Errorf("%w: unsupported host %q", ErrInvalidInput, host)
	}

	if !videoIDPattern.MatchString(candidate) {
		return "", fmt.Errorf("%w: no video ID in %q", ErrInvalidInput, raw)
	}
	return candidate, nil
}
