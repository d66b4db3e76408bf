package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "moodrelay/internal/adapters/http"
	"moodrelay/internal/adapters/chat"
	"moodrelay/internal/adapters/translate"
	"moodrelay/internal/app"
	"moodrelay/internal/config"
	"moodrelay/internal/mood"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	scorer, err := mood.NewLexiconScorer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build sentiment lexicon")
	}

	reg := app.NewRegistry()
	rooms := app.NewRoomDirectory()
	dispatcher := &app.Dispatcher{
		Registry:         reg,
		Rooms:            rooms,
		Translator:       translate.NewHTTPTranslator(cfg.TranslateURL, cfg.TranslateTimeout),
		Scorer:           scorer,
		TranslateTimeout: cfg.TranslateTimeout,
	}
	orch := &app.Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Dispatch: dispatcher,
	}

	sweeper := app.NewSweeper(reg, rooms, cfg.SweepInterval, cfg.IdleThreshold)
	go func() {
		_ = sweeper.Run(ctx)
	}()

	limiter := chat.NewMessageRateLimiter(cfg.MessageRateLimit, cfg.MessageRateWindow)
	ctl := chat.NewController(orch, cfg.ReadLimit, limiter)

	r := router.SetupRouter(ctx, cfg, orch, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("MoodRelay server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
