package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"softphone-console/internal/config"
	"softphone-console/internal/httpapi"
	"softphone-console/internal/speech"
	"softphone-console/internal/store"
	"softphone-console/internal/voip"
	"softphone-console/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional .env for local development; env vars win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var engine speech.Engine = speech.NewNoopEngine()
	if cfg.SpeechEnabled() {
		engine = speech.NewRemoteEngine(speech.RemoteConfig{
			Endpoint:       cfg.Speech.Endpoint,
			APIKey:         cfg.Speech.APIKey,
			Voice:          cfg.Speech.Voice,
			RequestTimeout: cfg.Speech.Timeout,
		}, log)
	} else {
		log.Info("speech backend not configured, announcements disabled")
	}

	// Explicit construction: the service and coordinator are owned here and
	// injected downward. No package-level singletons.
	svc := voip.NewService(voip.NewScheduler(), log)
	coord := store.New(svc, engine, log)
	defer coord.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, httpapi.Handlers{Coordinator: coord})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
