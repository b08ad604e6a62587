package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"flyer-service/internal/config"
	discHnd "flyer-service/internal/discount/handler"
	jobHnd "flyer-service/internal/jobs/handler"
	"flyer-service/internal/middleware"
	"flyer-service/server/http/handlers"
)

// Deps are the wired collaborators the routes close over.
type Deps struct {
	Parser   discHnd.RowParser
	RowCache discHnd.RowCache
	Queue    jobHnd.Queue
	JobStore jobHnd.Records
}

func NewRouter(cfg config.Config, logger zerolog.Logger, deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)

	r.Post("/discounts/parse", discHnd.Parse(cfg, logger, deps.Parser, deps.RowCache))
	r.Post("/discounts/match", discHnd.Match(cfg, logger, deps.RowCache))

	r.Post("/jobs", jobHnd.Submit(logger, deps.Queue))
	r.Get("/jobs/queue", jobHnd.QueueInfo(deps.Queue))
	r.Get("/jobs/{id}", jobHnd.Status(logger, deps.JobStore))

	return r
}
