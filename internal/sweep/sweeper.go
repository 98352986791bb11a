package sweep

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/veldt-labs/tubescribe/internal/artifact"
	"github.com/veldt-labs/tubescribe/internal/jobs"
	"github.com/veldt-labs/tubescribe/internal/metrics"
)

// Sweeper periodically evicts expired job records and audio artifacts.
// It runs independently of job tasks and tolerates individual errors:
// the stores log and skip entries they cannot remove.
type Sweeper struct {
	jobs      *jobs.Store
	artifacts *artifact.Store
	retention time.Duration
	interval  time.Duration
	log       zerolog.Logger
	stop      chan struct{}
	stopOnce  sync.Once
}

// New creates a sweeper over both stores with a shared retention window.
func New(js *jobs.Store, as *artifact.Store, retention, interval time.Duration, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		jobs:      js,
		artifacts: as,
		retention: retention,
		interval:  interval,
		log:       log.With().Str("component", "sweeper").Logger(),
		stop:      make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (s *Sweeper) Start() {
	go s.loop()
}

// Stop terminates the loop. Safe to call more than once.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *Sweeper) loop() {
	// Run once on startup to clear any backlog from downtime.
	s.Sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

// Sweep runs one pass over both stores.
func (s *Sweeper) Sweep() {
	removedJobs := s.jobs.Sweep(s.retention)
	removedFiles := s.artifacts.Sweep(s.retention)

	metrics.SweepRemovedTotal.WithLabelValues("jobs").Add(float64(removedJobs))
	metrics.SweepRemovedTotal.WithLabelValues("artifacts").Add(float64(removedFiles))

	if removedJobs > 0 || removedFiles > 0 {
		s.log.Info().
			Int("jobs", removedJobs).
			Int("artifacts", removedFiles).
			Msg("sweep complete")
	}
}
