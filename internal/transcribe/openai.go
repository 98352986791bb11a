package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const openAITranscriptionsURL = "https://api.openai.com/v1/audio/transcriptions"

// OpenAIClient calls OpenAI's synchronous /v1/audio/transcriptions endpoint.
// The provider performs extraction inline and the response body is the
// transcript. Implements the Provider interface.
type OpenAIClient struct {
	apiKey string
	url    string
	model  string
	client *http.Client
}

// openAIErrorBody is OpenAI's structured error envelope.
type openAIErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAIClient creates an OpenAI transcription client. The timeout bounds
// the entire request, since the provider transcribes inline before responding.
func NewOpenAIClient(apiKey string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiKey: apiKey,
		url:    openAITranscriptionsURL,
		model:  "whisper-1",
		client: &http.Client{Timeout: timeout},
	}
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string { return ProviderOpenAI }

// Transcribe uploads the audio as a single multipart request and returns the
// response body as the transcript. The file is fully buffered in memory,
// which is fine for the audio sizes this service produces.
func (c *OpenAIClient) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("copy audio data: %w", err)
	}

	w.WriteField("model", c.model)
	if language != "" {
		w.WriteField("language", language)
	}
	w.WriteField("response_format", "text")
	w.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ProviderError{Provider: ProviderOpenAI, Message: openAIErrorMessage(resp.StatusCode, body)}
	}

	// The text body is the transcript, returned verbatim.
	return string(body), nil
}

// openAIErrorMessage prefers the structured error body when parseable and
// falls back to the raw response text.
func openAIErrorMessage(status int, body []byte) string {
	var eb openAIErrorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	return fmt.Sprintf("status %d: %s", status, strings.TrimSpace(string(body)))
}
