package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"falbackend/internal/fal"
	"falbackend/internal/http/handlers"
	httpapi "falbackend/internal/http/httpapi"
	"falbackend/internal/infra"
	"falbackend/internal/media"
	"falbackend/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewFileStore(cfg.MediaDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare media directory")
	}

	client := fal.NewClient(fal.Options{
		KeyID:         cfg.FalKeyID,
		KeySecret:     cfg.FalKeySecret,
		Scheme:        fal.AuthScheme(cfg.FalAuthScheme),
		ResultBase:    cfg.ResultBase,
		SubmitTimeout: cfg.SubmitTimeout,
		Logger:        logger,
	})

	merger := media.NewMerger(media.Options{
		Store:   store,
		Enabled: cfg.MergeEnabled,
		Timeout: cfg.MergeTimeout,
		Logger:  logger,
	})

	app := handlers.NewApp(cfg, client, merger, store, logger)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
