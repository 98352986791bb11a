package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/veldt-labs/tubescribe/internal/jobs"
	"github.com/veldt-labs/tubescribe/internal/pipeline"
)

// Handler serves the job endpoints. Both POST endpoints return as soon as
// the job is registered; all extraction and provider I/O happens in the
// pipeline's background tasks.
type Handler struct {
	pipeline *pipeline.Pipeline
}

func NewHandler(pl *pipeline.Pipeline) *Handler {
	return &Handler{pipeline: pl}
}

type extractRequest struct {
	URL string `json:"url"`
}

type transcribeRequest struct {
	VideoID  string `json:"video_id"`
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Language string `json:"language"`
}

// Extract accepts {url} and starts an extraction job.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	job, err := h.pipeline.RequestExtraction(req.URL)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, job)
}

// Transcribe accepts {video_id, provider, api_key, language?} and starts a
// transcription job, reusing a cached artifact when one exists.
func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	job, err := h.pipeline.RequestTranscription(req.VideoID, req.Provider, req.APIKey, req.Language)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, job)
}

// Status returns the full job record.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job, err := h.pipeline.Jobs().Get(jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "unknown job")
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// ListJobs returns a snapshot of all registered jobs, newest first.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	list := h.pipeline.Jobs().List()
	WriteJSON(w, http.StatusOK, map[string]any{
		"jobs":  list,
		"count": len(list),
	})
}

// Audio streams the cached artifact for a video ID as an mp3 attachment.
func (h *Handler) Audio(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	f, size, err := h.pipeline.Artifacts().Open(videoID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "no cached audio for this video")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.mp3"`, videoID))
	io.Copy(w, f)
}

// writePipelineError maps pipeline errors onto HTTP statuses. Only
// pre-acceptance validation reaches here; post-acceptance failures live in
// the job record.
func writePipelineError(w http.ResponseWriter, err error) {
	if errors.Is(err, pipeline.ErrInvalidInput) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteError(w, http.StatusInternalServerError, "internal server error")
}
