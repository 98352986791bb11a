package transcribe

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider names accepted by the transcribe API.
const (
	ProviderOpenAI     = "openai"
	ProviderAssemblyAI = "assemblyai"
)

// Provider is the interface for speech-to-text backends.
type Provider interface {
	// Transcribe converts a local audio file into transcript text.
	Transcribe(ctx context.Context, audioPath, language string) (string, error)
	Name() string
}

var (
	// ErrUploadFailed marks a failure to obtain an upload reference from the provider.
	ErrUploadFailed = errors.New("audio upload failed")

	// ErrPollTimeout marks exhaustion of the polling budget without a terminal status.
	ErrPollTimeout = errors.New("transcription polling timed out")
)

// ProviderError is a structured error returned by a provider's API.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Supported reports whether name is a known provider.
func Supported(name string) bool {
	return name == ProviderOpenAI || name == ProviderAssemblyAI
}

// ForName constructs the provider client for name with the caller-supplied
// API key. Selection happens once at task start and is never re-checked.
func ForName(name, apiKey string, timeout time.Duration) (Provider, error) {
	switch name {
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey, timeout), nil
	case ProviderAssemblyAI:
		return NewAssemblyAIClient(apiKey, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", name)
	}
}
