package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-regwizard/internal/app"
	"github.com/goliatone/go-regwizard/internal/config"
	"github.com/goliatone/go-regwizard/internal/logging"
	"github.com/goliatone/go-regwizard/internal/metrics"
	"github.com/goliatone/go-regwizard/internal/session"
	httptransport "github.com/goliatone/go-regwizard/internal/transport/http"
	"github.com/goliatone/go-regwizard/pkg/wizard"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults if empty)")
	addr := flag.String("addr", "", "listen address override")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger := logging.New(cfg.Log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := metrics.New(reg)
	if err != nil {
		logger.Fatal().Err(err).Msg("regwizard: register metrics")
	}

	submitter, err := app.NewSubmitter(cfg.Submission)
	if err != nil {
		logger.Fatal().Err(err).Msg("regwizard: build submitter")
	}
	factory := app.WizardFactory(cfg, submitter, logger.With().Str("component", "wizard").Logger(),
		wizard.WithObserver(observer))
	sessions := session.NewRegistry(factory, cfg.Server.SessionTTL,
		session.WithLogger(logger.With().Str("component", "session").Logger()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go sessions.Run(ctx, cfg.Server.SweepInterval)

	handler := httptransport.NewHandler(sessions, logger.With().Str("component", "http").Logger())
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httptransport.NewRouter(handler, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("submission_mode", cfg.Submission.Mode).Msg("regwizard: listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("regwizard: server stopped")
		}
	case <-ctx.Done():
		logger.Info().Msg("regwizard: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("regwizard: graceful shutdown failed")
		}
	}
}
