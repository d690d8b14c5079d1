package tui

import (
	"os"
	"path/filepath"

	"github.com/goliatone/go-regwizard/pkg/attachment"
)

// Theme captures optional prefixes applied when printing messages.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// FileStat turns a path typed by the user into an attachment candidate.
type FileStat func(path string) (attachment.Candidate, error)

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithFileStat overrides how attachment paths are resolved.
func WithFileStat(fn FileStat) Option {
	return func(r *Runner) {
		if fn != nil {
			r.stat = fn
		}
	}
}

// WithSubjects sets the choices offered for interests and subjects.
func WithSubjects(subjects []string) Option {
	return func(r *Runner) {
		if len(subjects) > 0 {
			r.subjects = append([]string(nil), subjects...)
		}
	}
}

// WithSummaryTemplate replaces the review summary template source.
func WithSummaryTemplate(source string) Option {
	return func(r *Runner) {
		if source != "" {
			r.summarySource = source
		}
	}
}

func statFile(path string) (attachment.Candidate, error) {
	info, err := os.Stat(path)
	if err != nil {
		return attachment.Candidate{}, err
	}
	return attachment.Candidate{
		Name:      filepath.Base(path),
		SizeBytes: info.Size(),
		Ref:       path,
	}, nil
}
