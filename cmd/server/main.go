// Command server starts the Aquila Risk Insights API.
//
// Usage:
//
//	go run ./cmd/server [flags]
//
// Flags:
//
//	-port        HTTP port to listen on (default: 8080)
//	-seed        Path to a seed data JSON file to load on startup (default: data/seed.json)
//	-tz          IANA timezone used for calendar-day bucketing (default: UTC)
//	-log-format  "console" or "json" (default: console)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"aquila/risk-insights-api/internal/alert"
	"aquila/risk-insights-api/internal/api"
	"aquila/risk-insights-api/internal/domain"
	"aquila/risk-insights-api/internal/report"
	"aquila/risk-insights-api/internal/store"
)

func main() {
	port := flag.Int("port", 8080, "HTTP port")
	seedFile := flag.String("seed", "data/seed.json", "path to seed data JSON file")
	tz := flag.String("tz", "UTC", "IANA timezone for calendar-day bucketing")
	logFormat := flag.String("log-format", "console", "log format: console or json")
	flag.Parse()

	// Most PaaS platforms inject PORT as an env var; it takes precedence
	// over the -port flag.
	if envPort := os.Getenv("PORT"); envPort != "" {
		if p, err := strconv.Atoi(envPort); err == nil {
			*port = p
		}
	}

	log := newLogger(*logFormat)

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		log.Fatal().Err(err).Str("tz", *tz).Msg("invalid timezone")
	}

	// ── Wire dependencies ─────────────────────────────────────────────────────
	s := store.New()
	engine := report.New(loc)
	notifier := alert.New(s, log)
	handler := api.NewHandler(s, engine, notifier)
	router := api.NewRouter(handler, log)

	// ── Load seed data ────────────────────────────────────────────────────────
	if err := loadSeedData(s, *seedFile, log); err != nil {
		// Non-fatal: the API works fine without seed data.
		log.Warn().Str("file", *seedFile).Err(err).Msg("seed data not loaded")
	}

	// ── Start HTTP server ─────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Int("port", *port).Str("tz", *tz).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-quit
	log.Info().Msg("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}

// newLogger builds the root logger: human-readable console output during
// development, plain JSON for log shippers.
func newLogger(format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if format == "json" {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	w := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(w).With().Timestamp().Logger()
}

// loadSeedData reads a JSON file of records, validates each one, and
// persists them so the API starts with historical context.
func loadSeedData(s *store.Store, filePath string, log zerolog.Logger) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var records []domain.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}

	var loaded, rejected, skipped int
	for i := range records {
		rec := &records[i]
		if err := domain.ValidateRecord(rec); err != nil {
			rejected++
			continue
		}
		if err := s.SaveRecord(rec); err != nil {
			skipped++
		} else {
			loaded++
		}
	}

	log.Info().
		Str("file", filePath).
		Int("loaded", loaded).
		Int("rejected", rejected).
		Int("skipped", skipped).
		Msg("seed data loaded")
	return nil
}
