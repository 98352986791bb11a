package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/veldt-labs/tubescribe/internal/artifact"
	"github.com/veldt-labs/tubescribe/internal/extract"
	"github.com/veldt-labs/tubescribe/internal/jobs"
	"github.com/veldt-labs/tubescribe/internal/metrics"
	"github.com/veldt-labs/tubescribe/internal/transcribe"
)

// ErrInvalidInput marks pre-acceptance validation failures. No job is
// created; the HTTP layer maps it to a 400.
var ErrInvalidInput = errors.New("invalid input")

// Extractor produces an audio artifact for a video ID at the given path.
type Extractor interface {
	Extract(ctx context.Context, videoID, destPath string) (extract.Result, error)
}

// ProviderFactory builds a transcription provider from a name and a
// caller-supplied credential.
type ProviderFactory func(name, apiKey string) (transcribe.Provider, error)

// Config holds the pipeline's fixed policy values.
type Config struct {
	DefaultLanguage string
	ProviderTimeout time.Duration

	// NewProvider overrides provider construction; tests substitute fakes
	// here. Nil means the real clients via transcribe.ForName.
	NewProvider ProviderFactory
}

// Pipeline orchestrates jobs: it registers a record, returns it
// synchronously, and runs extraction and/or transcription in a detached
// background task that is this job's only writer.
type Pipeline struct {
	jobs        *jobs.Store
	artifacts   *artifact.Store
	extractor   Extractor
	newProvider ProviderFactory
	cfg         Config
	log         zerolog.Logger
	wg          sync.WaitGroup
}

// New creates a pipeline over the given stores and extractor.
func New(store *jobs.Store, artifacts *artifact.Store, extractor Extractor, cfg Config, log zerolog.Logger) *Pipeline {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	factory := cfg.NewProvider
	if factory == nil {
		factory = func(name, apiKey string) (transcribe.Provider, error) {
			return transcribe.ForName(name, apiKey, cfg.ProviderTimeout)
		}
	}
	return &Pipeline{
		jobs:        store,
		artifacts:   artifacts,
		extractor:   extractor,
		newProvider: factory,
		cfg:         cfg,
		log:         log.With().Str("component", "pipeline").Logger(),
	}
}

// Jobs exposes the registry for the HTTP status and list endpoints.
func (p *Pipeline) Jobs() *jobs.Store { return p.jobs }

// Artifacts exposes the artifact store for the HTTP audio endpoint.
func (p *Pipeline) Artifacts() *artifact.Store { return p.artifacts }

// Wait blocks until all in-flight background tasks finish. Tests use this;
// the server never does, since shutdown abandons in-flight jobs.
func (p *Pipeline) Wait() { p.wg.Wait() }

// RequestExtraction accepts a bare video ID or any YouTube URL form, creates
// a job in processing, and extracts the audio in the background. Any cached
// artifact for the same video is removed before re-extraction.
func (p *Pipeline) RequestExtraction(rawURL string) (jobs.Job, error) {
	videoID, err := ResolveVideoID(rawURL)
	if err != nil {
		return jobs.Job{}, err
	}

	job := p.newJob(videoID, jobs.StatusProcessing)
	p.jobs.Create(job)
	metrics.JobsCreatedTotal.WithLabelValues("extract").Inc()

	p.wg.Add(1)
	go p.runExtraction(job)
	return job, nil
}

// RequestTranscription validates inputs, creates a job whose initial status
// reflects whether a cached artifact exists, and runs the remaining stages
// in the background. Each call gets its own job even when it reuses a
// cached artifact.
func (p *Pipeline) RequestTranscription(videoID, provider, apiKey, language string) (jobs.Job, error) {
	if !videoIDPattern.MatchString(videoID) {
		return jobs.Job{}, fmt.Errorf("%w: invalid video ID %q", ErrInvalidInput, videoID)
	}
	if apiKey == "" {
		return jobs.Job{}, fmt.Errorf("%w: api key is required", ErrInvalidInput)
	}
	if !transcribe.Supported(provider) {
		return jobs.Job{}, fmt.Errorf("%w: unsupported provider %q", ErrInvalidInput, provider)
	}
	if language == "" {
		language = p.cfg.DefaultLanguage
	}

	cached := p.artifacts.Exists(videoID)
	status := jobs.StatusExtracting
	if cached {
		status = jobs.StatusTranscribing
	}

	job := p.newJob(videoID, status)
	p.jobs.Create(job)
	metrics.JobsCreatedTotal.WithLabelValues("transcribe").Inc()

	p.wg.Add(1)
	go p.runTranscription(job, provider, apiKey, language, cached)
	return job, nil
}

func (p *Pipeline) newJob(videoID string, status jobs.Status) jobs.Job {
	now := time.Now()
	return jobs.Job{
		ID:        jobs.NewID(videoID, now),
		VideoID:   videoID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (p *Pipeline) runExtraction(job jobs.Job) {
	defer p.wg.Done()

	res, err := p.extractAudio(job.VideoID)
	if err != nil {
		p.fail(job, err)
		return
	}

	job.Status = jobs.StatusCompleted
	job.Result = res.Path
	job.FileSize = res.Size
	job.UpdatedAt = time.Now()
	p.jobs.Update(job)
	metrics.JobsCompletedTotal.Inc()
	p.log.Info().Str("job_id", job.ID).Int64("size", res.Size).Msg("extraction job completed")
}

func (p *Pipeline) runTranscription(job jobs.Job, provider, apiKey, language string, cached bool) {
	defer p.wg.Done()

	audioPath := p.artifacts.PathFor(job.VideoID)
	if !cached {
		res, err := p.extractAudio(job.VideoID)
		if err != nil {
			p.fail(job, err)
			return
		}
		audioPath = res.Path

		job.Status = jobs.StatusTranscribing
		job.UpdatedAt = time.Now()
		p.jobs.Update(job)
	}

	prov, err := p.newProvider(provider, apiKey)
	if err != nil {
		p.fail(job, err)
		return
	}

	start := time.Now()
	text, err := prov.Transcribe(context.Background(), audioPath, language)
	metrics.ProviderRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		p.fail(job, err)
		return
	}

	job.Status = jobs.StatusCompleted
	job.Result = text
	job.UpdatedAt = time.Now()
	p.jobs.Update(job)
	metrics.JobsCompletedTotal.Inc()
	p.log.Info().
		Str("job_id", job.ID).
		Str("provider", provider).
		Int("transcript_len", len(text)).
		Msg("transcription job completed")
}

// extractAudio removes any stale artifact and runs the extractor. The
// extractor applies its own hard timeout.
func (p *Pipeline) extractAudio(videoID string) (extract.Result, error) {
	if err := p.artifacts.Remove(videoID); err != nil {
		return extract.Result{}, fmt.Errorf("remove stale artifact: %w", err)
	}

	start := time.Now()
	res, err := p.extractor.Extract(context.Background(), videoID, p.artifacts.PathFor(videoID))
	metrics.ExtractDuration.Observe(time.Since(start).Seconds())
	return res, err
}

// fail records a terminal failure on the job. Failures after acceptance are
// never surfaced to an HTTP caller; the accepting request has already
// returned.
func (p *Pipeline) fail(job jobs.Job, err error) {
	job.Status = jobs.StatusFailed
	job.Error = err.Error()
	job.UpdatedAt = time.Now()
	p.jobs.Update(job)
	metrics.JobsFailedTotal.Inc()
	p.log.Warn().Str("job_id", job.ID).Err(err).Msg("job failed")
}
