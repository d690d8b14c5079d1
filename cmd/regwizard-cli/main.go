package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/goliatone/go-regwizard/internal/app"
	"github.com/goliatone/go-regwizard/internal/config"
	"github.com/goliatone/go-regwizard/internal/logging"
	"github.com/goliatone/go-regwizard/pkg/renderers/tui"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file (defaults if empty)")
	mode := flag.String("mode", "", "submission mode override: loopback or http")
	endpoint := flag.String("endpoint", "", "submission endpoint override for http mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if m := strings.TrimSpace(*mode); m != "" {
		cfg.Submission.Mode = m
	}
	if e := strings.TrimSpace(*endpoint); e != "" {
		cfg.Submission.Endpoint = e
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := logging.New(cfg.Log)
	submitter, err := app.NewSubmitter(cfg.Submission)
	if err != nil {
		log.Fatalf("Failed to build submitter: %v", err)
	}
	controller, err := app.WizardFactory(cfg, submitter, logger)()
	if err != nil {
		log.Fatalf("Failed to start wizard: %v", err)
	}

	runner, err := tui.New(tui.WithSubjects(cfg.Subjects))
	if err != nil {
		log.Fatalf("Failed to build terminal renderer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	receipt, err := runner.Run(ctx, controller)
	switch {
	case errors.Is(err, tui.ErrAborted), errors.Is(err, tui.ErrCancelled), errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Registration cancelled. Nothing was submitted.")
		stop()
		os.Exit(1)
	case err != nil:
		stop()
		log.Fatalf("Registration failed: %v", err)
	}
	logger.Info().Str("confirmation_id", receipt.ConfirmationID).Msg("regwizard: registration complete")
}
