package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"flyer-service/internal/jobs"
)

// Queue is the enqueue side of the job pipeline.
type Queue interface {
	Enqueue(job jobs.Job)
	QueueLength() int
}

// Records is the read side of job state.
type Records interface {
	Get(jobID string) (jobs.Record, bool)
}

// Submit accepts a job, fills in missing IDs and queues it. Processing is
// asynchronous, so the response is 202 with the assigned ID.
func Submit(logger zerolog.Logger, q Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := requestLogger(logger, r)
		defer r.Body.Close()

		var job jobs.Job
		if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
			errorJSON(w, http.StatusBadRequest, "bad json: "+err.Error())
			return
		}
		if len(job.Images) == 0 {
			errorJSON(w, http.StatusBadRequest, "job has no images")
			return
		}
		for i := range job.Images {
			if job.Images[i].Path == "" {
				errorJSON(w, http.StatusBadRequest, "image without a path")
				return
			}
			if job.Images[i].ID == "" {
				job.Images[i].ID = uuid.NewString()
			}
		}
		if job.ID == "" {
			job.ID = uuid.NewString()
		}

		q.Enqueue(job)
		log.Info().Str("job", job.ID).Int("images", len(job.Images)).Msg("job queued")

		writeJSON(w, http.StatusAccepted, map[string]any{
			"id":          job.ID,
			"status":      jobs.StatusQueued,
			"queueLength": q.QueueLength(),
		})
	}
}

// Status reports a single job's record.
func Status(logger zerolog.Logger, rec Records) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		record, ok := rec.Get(id)
		if !ok {
			errorJSON(w, http.StatusNotFound, "unknown job: "+id)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

// QueueInfo reports how many jobs are waiting.
func QueueInfo(q Queue) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"length": q.QueueLength()})
	}
}

func requestLogger(logger zerolog.Logger, r *http.Request) zerolog.Logger {
	if rid := r.Header.Get("X-Request-ID"); rid != "" {
		return logger.With().Str("req_id", rid).Logger()
	}
	return logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
