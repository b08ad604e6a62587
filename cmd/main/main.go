package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "net/http/pprof"

	"flyer-service/internal/config"
	"flyer-service/internal/deepseek"
	"flyer-service/internal/discount/parser"
	"flyer-service/internal/ingest"
	"flyer-service/internal/jobs"
	serverhttp "flyer-service/server/http"
)

func main() {
	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		runtime.GOMAXPROCS(runtime.NumCPU())
	}

	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	extractor := deepseek.New(deepseek.Config{
		BaseURL: cfg.DeepSeekBaseURL,
		Model:   cfg.DeepSeekModel,
		APIKey:  cfg.DeepSeekAPIKey,
		Timeout: cfg.DeepSeekTimeout,
	}, logger)
	discountParser := parser.New(extractor, logger)

	ingestor := ingest.NewClient(ingest.ClientConfig{
		BaseURL: cfg.BackendURL,
		OutDir:  cfg.CutoutDir,
		Timeout: cfg.BackendTimeout,
	}, extractor, logger)

	processor := jobs.NewProcessor(ingestor, discountParser, logger)
	store := jobs.NewStore()
	processor.Subscribe(store)

	r := serverhttp.NewRouter(cfg, logger, serverhttp.Deps{
		Parser:   discountParser,
		RowCache: processor,
		Queue:    processor,
		JobStore: store,
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}
