// Package app assembles the wizard collaborators from a loaded configuration.
// Both commands share it so the terminal and HTTP surfaces behave alike.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-regwizard/internal/config"
	"github.com/goliatone/go-regwizard/pkg/submission"
	"github.com/goliatone/go-regwizard/pkg/submission/httpsubmit"
	"github.com/goliatone/go-regwizard/pkg/submission/loopback"
	"github.com/goliatone/go-regwizard/pkg/wizard"
)

// NewSubmitter returns the submission collaborator selected by cfg.
func NewSubmitter(cfg config.SubmissionConfig) (submission.Submitter, error) {
	switch cfg.Mode {
	case config.ModeLoopback, "":
		return loopback.New(), nil
	case config.ModeHTTP:
		client, err := httpsubmit.New(cfg.Endpoint, httpsubmit.WithTimeout(cfg.Timeout))
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("app: unknown submission mode %q", cfg.Mode)
	}
}

// WizardFactory returns a constructor for controllers sharing submitter, the
// configured policy and one assembler. Extra options are applied last.
func WizardFactory(cfg config.Config, submitter submission.Submitter, logger zerolog.Logger, extra ...wizard.Option) func() (*wizard.Controller, error) {
	assembler := submission.NewAssembler(cfg.AssemblerOptions()...)
	policy := cfg.AttachmentPolicy()
	return func() (*wizard.Controller, error) {
		options := []wizard.Option{
			wizard.WithLogger(logger),
			wizard.WithAssembler(assembler),
			wizard.WithPolicy(policy),
		}
		return wizard.New(submitter, append(options, extra...)...)
	}
}
