package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	assemblyAIBaseURL = "https://api.assemblyai.com/v2"

	// Poll cadence: 5s between attempts, 120 attempts, a 10-minute ceiling.
	pollInterval    = 5 * time.Second
	maxPollAttempts = 120
)

// AssemblyAIClient calls AssemblyAI's asynchronous transcription API:
// upload the audio, submit a transcript job, then poll until terminal.
// Implements the Provider interface.
type AssemblyAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client

	// sleep is injected so tests can run the poll loop with zero delay
	// and assert attempt counts.
	sleep       func(ctx context.Context, d time.Duration) error
	interval    time.Duration
	maxAttempts int
}

type assemblyAIUploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type assemblyAITranscript struct {
	ID     string `json:"id"`
	Status string `json:"status"` // queued | processing | completed | error
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// NewAssemblyAIClient creates an AssemblyAI transcription client. The timeout
// bounds each individual HTTP call; the overall polling budget is bounded
// separately by the attempt limit.
func NewAssemblyAIClient(apiKey string, timeout time.Duration) *AssemblyAIClient {
	return &AssemblyAIClient{
		apiKey:      apiKey,
		baseURL:     assemblyAIBaseURL,
		client:      &http.Client{Timeout: timeout},
		sleep:       sleepCtx,
		interval:    pollInterval,
		maxAttempts: maxPollAttempts,
	}
}

// Name returns the provider name.
func (c *AssemblyAIClient) Name() string { return ProviderAssemblyAI }

// Transcribe runs the three-phase protocol: upload, submit, poll.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	uploadURL, err := c.upload(ctx, audioPath)
	if err != nil {
		return "", err
	}

	id, err := c.submit(ctx, uploadURL, language)
	if err != nil {
		return "", err
	}

	return c.poll(ctx, id)
}

// upload sends the raw audio bytes and returns the provider's upload reference.
func (c *AssemblyAIClient) upload(ctx context.Context, audioPath string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var ur assemblyAIUploadResponse
	if err := c.do(req, &ur); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if ur.UploadURL == "" {
		return "", fmt.Errorf("%w: no upload_url in response", ErrUploadFailed)
	}
	return ur.UploadURL, nil
}

// submit requests a transcription of the uploaded audio and returns the
// provider's job ID.
func (c *AssemblyAIClient) submit(ctx context.Context, uploadURL, language string) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"audio_url":     uploadURL,
		"language_code": language,
	})
	if err != nil {
		return "", fmt.Errorf("marshal submit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create submit request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var tr assemblyAITranscript
	if err := c.do(req, &tr); err != nil {
		return "", err
	}
	if tr.Error != "" {
		return "", &ProviderError{Provider: ProviderAssemblyAI, Message: tr.Error}
	}
	if tr.ID == "" {
		return "", &ProviderError{Provider: ProviderAssemblyAI, Message: "no transcript id in response"}
	}
	return tr.ID, nil
}

// poll checks the transcript status at a fixed interval until the provider
// reports a terminal status or the attempt budget runs out.
func (c *AssemblyAIClient) poll(ctx context.Context, id string) (string, error) {
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if err := c.sleep(ctx, c.interval); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+id, nil)
		if err != nil {
			return "", fmt.Errorf("create poll request: %w", err)
		}
		req.Header.Set("Authorization", c.apiKey)

		var tr assemblyAITranscript
		if err := c.do(req, &tr); err != nil {
			return "", err
		}

		switch tr.Status {
		case "completed":
			return tr.Text, nil
		case "error":
			return "", &ProviderError{Provider: ProviderAssemblyAI, Message: tr.Error}
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrPollTimeout, c.maxAttempts)
}

// do executes the request and decodes a JSON body, converting non-2xx
// statuses into errors carrying the response text.
func (c *AssemblyAIClient) do(req *http.Request, v any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("assemblyai request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("assemblyai API error (status %d): %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
