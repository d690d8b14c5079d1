// Package tui is the terminal presentation for the registration wizard. The
// Runner reads controller snapshots, prompts through a PromptDriver, and
// forwards every answer to the controller as an intent.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-regwizard/pkg/attachment"
	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/submission"
	"github.com/goliatone/go-regwizard/pkg/visibility"
	"github.com/goliatone/go-regwizard/pkg/wizard"
)

const (
	navContinue = "Continue"
	navBack     = "Back"
	navReview   = "Review and submit"

	fileDone   = "Done"
	fileAdd    = "Add a file"
	fileRemove = "Remove a file"
)

// Runner walks a user through the wizard in a terminal.
type Runner struct {
	driver        PromptDriver
	theme         Theme
	stat          FileStat
	subjects      []string
	summarySource string
	summary       *summary
}

// New constructs a runner with defaults (survey driver, default subject
// catalog, os.Stat for attachments).
func New(options ...Option) (*Runner, error) {
	r := &Runner{
		stat:          statFile,
		subjects:      append([]string(nil), model.DefaultSubjects...),
		summarySource: defaultSummaryTemplate,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}

	s, err := newSummary(r.summarySource)
	if err != nil {
		return nil, err
	}
	r.summary = s
	return r, nil
}

// Run drives c until the registration is submitted, the user aborts, or ctx
// is cancelled. Guard, validation and submission failures are shown and the
// user is prompted again.
func (r *Runner) Run(ctx context.Context, c *wizard.Controller) (submission.Receipt, error) {
	if ctx == nil {
		return submission.Receipt{}, errors.New("tui: context is required")
	}
	if c == nil {
		return submission.Receipt{}, errors.New("tui: controller is required")
	}

	for {
		if err := ctx.Err(); err != nil {
			return submission.Receipt{}, err
		}
		snap := c.Snapshot()
		if snap.Completed {
			return submission.Receipt{ConfirmationID: snap.ConfirmationID}, nil
		}
		if err := r.info(ctx, r.theme.InfoPrefix, progressLine(snap)); err != nil {
			return submission.Receipt{}, err
		}
		if err := r.showErrors(ctx, snap); err != nil {
			return submission.Receipt{}, err
		}

		var err error
		switch snap.Step {
		case model.StepRoleSelection:
			err = r.roleStep(ctx, c, snap)
		case model.StepBasicInfo:
			err = r.basicStep(ctx, c, snap)
		default:
			err = r.detailsStep(ctx, c, snap)
		}
		if err != nil && !recoverable(err) {
			return submission.Receipt{}, err
		}
	}
}

func recoverable(err error) bool {
	return errors.Is(err, wizard.ErrGuardFailed) ||
		errors.Is(err, submission.ErrValidationFailed) ||
		errors.Is(err, submission.ErrSubmissionFailed)
}

func progressLine(snap wizard.Snapshot) string {
	title := "Choose your role"
	switch snap.Step {
	case model.StepBasicInfo:
		title = "Basic information"
	case model.StepRoleDetails:
		title = "Student details"
		if snap.Role == model.RoleTeacher {
			title = "Teacher details"
		}
	}
	return fmt.Sprintf("Step %d of %d: %s", snap.Step, snap.TotalSteps, title)
}

func (r *Runner) roleStep(ctx context.Context, c *wizard.Controller, snap wizard.Snapshot) error {
	defaultIdx := 0
	if snap.Role == model.RoleTeacher {
		defaultIdx = 1
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      r.prompt("I want to join as"),
		Options:      []string{"Student (find teachers and learn)", "Teacher (share my expertise)"},
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return err
	}
	role := model.RoleStudent
	if idx == 1 {
		role = model.RoleTeacher
	}
	if err := c.SelectRole(role); err != nil {
		return err
	}
	return c.Advance()
}

func (r *Runner) basicStep(ctx context.Context, c *wizard.Controller, snap wizard.Snapshot) error {
	for _, field := range snap.VisibleFields {
		value, err := r.promptScalar(ctx, field, snap.Values[field.Key])
		if err != nil {
			return err
		}
		if err := c.SetField(field.Key, value); err != nil {
			return err
		}
	}

	choice, err := r.navigate(ctx, navContinue)
	if err != nil {
		return err
	}
	if choice == navBack {
		return c.Retreat()
	}
	return c.Advance()
}

func (r *Runner) detailsStep(ctx context.Context, c *wizard.Controller, snap wizard.Snapshot) error {
	for _, field := range snap.VisibleFields {
		var err error
		switch field.Kind {
		case visibility.KindMultiSelect:
			err = r.promptSelection(ctx, c, field, snap.Selections[field.Key])
		case visibility.KindSelect:
			err = r.promptExperience(ctx, c, field, snap.Values[field.Key])
		case visibility.KindFiles:
			err = r.promptAttachments(ctx, c, field)
		default:
			var value string
			value, err = r.promptScalar(ctx, field, snap.Values[field.Key])
			if err == nil {
				err = c.SetField(field.Key, value)
			}
		}
		if err != nil {
			return err
		}
	}

	agreed, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: r.prompt("I agree to the Terms of Service and Privacy Policy"),
		Default: snap.AgreedToTerms,
	})
	if err != nil {
		return err
	}
	if err := c.SetAgreedToTerms(agreed); err != nil {
		return err
	}

	choice, err := r.navigate(ctx, navReview)
	if err != nil {
		return err
	}
	if choice == navBack {
		return c.Retreat()
	}

	payload, err := c.Review()
	if err != nil {
		return err
	}
	text, err := r.summary.render(payload)
	if err != nil {
		return err
	}
	if err := r.info(ctx, "", text); err != nil {
		return err
	}
	confirmed, err := r.driver.Confirm(ctx, ConfirmConfig{
		Message: r.prompt("Create my account?"),
		Default: true,
	})
	if err != nil || !confirmed {
		return err
	}

	receipt, err := c.Submit(ctx)
	if err != nil {
		return err
	}
	return r.info(ctx, r.theme.InfoPrefix, "Registration complete. Confirmation: "+receipt.ConfirmationID)
}

func (r *Runner) navigate(ctx context.Context, forward string) (string, error) {
	options := []string{forward, navBack}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message: r.prompt("Next"),
		Options: options,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return forward, nil
	}
	return options[idx], nil
}

func (r *Runner) promptScalar(ctx context.Context, field visibility.Field, current string) (string, error) {
	cfg := InputConfig{
		Message: r.prompt(fieldMessage(field)),
		Default: current,
	}
	switch field.Kind {
	case visibility.KindPassword:
		cfg.Default = ""
		return r.driver.Password(ctx, cfg)
	case visibility.KindTextArea:
		return r.driver.TextArea(ctx, TextAreaConfig{Message: cfg.Message, Default: current})
	case visibility.KindNumber:
		cfg.Help = "Numbers only, for example 45 or 37.50"
	}
	return r.driver.Input(ctx, cfg)
}

func (r *Runner) promptSelection(ctx context.Context, c *wizard.Controller, field visibility.Field, current []string) error {
	defaults := make([]int, 0, len(current))
	for i, subject := range r.subjects {
		for _, selected := range current {
			if selected == subject {
				defaults = append(defaults, i)
			}
		}
	}
	picked, err := r.driver.MultiSelect(ctx, SelectConfig{
		Message:  r.prompt(fieldMessage(field)),
		Options:  r.subjects,
		Defaults: defaults,
		PageSize: 10,
	})
	if err != nil {
		return err
	}

	want := make(map[string]struct{}, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(r.subjects) {
			want[r.subjects[idx]] = struct{}{}
		}
	}
	have := make(map[string]struct{}, len(current))
	for _, selected := range current {
		have[selected] = struct{}{}
		if _, keep := want[selected]; !keep {
			if _, err := c.ToggleMember(field.Key, selected); err != nil {
				return err
			}
		}
	}
	for _, idx := range picked {
		if idx < 0 || idx >= len(r.subjects) {
			continue
		}
		subject := r.subjects[idx]
		if _, ok := have[subject]; ok {
			continue
		}
		have[subject] = struct{}{}
		if _, err := c.ToggleMember(field.Key, subject); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) promptExperience(ctx context.Context, c *wizard.Controller, field visibility.Field, current string) error {
	options := make([]string, 0, len(model.ExperienceBands))
	defaultIdx := 0
	for i, band := range model.ExperienceBands {
		options = append(options, band.Label())
		if string(band) == current {
			defaultIdx = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      r.prompt(fieldMessage(field)),
		Options:      options,
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(model.ExperienceBands) {
		return nil
	}
	return c.SetField(field.Key, string(model.ExperienceBands[idx]))
}

func (r *Runner) promptAttachments(ctx context.Context, c *wizard.Controller, field visibility.Field) error {
	for {
		snap := c.Snapshot()
		for i, file := range snap.Attachments {
			line := fmt.Sprintf("  %d. %s (%s, %s)", i+1, file.DisplayName, file.MimeCategory, humanSize(file.SizeBytes))
			if err := r.info(ctx, "", line); err != nil {
				return err
			}
		}

		options := []string{fileDone, fileAdd}
		if len(snap.Attachments) > 0 {
			options = append(options, fileRemove)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message: r.prompt(fieldMessage(field)),
			Options: options,
		})
		if err != nil {
			return err
		}
		if idx <= 0 || idx >= len(options) {
			return nil
		}

		switch options[idx] {
		case fileAdd:
			if err := r.addAttachment(ctx, c); err != nil {
				return err
			}
		case fileRemove:
			if err := r.removeAttachment(ctx, c, snap.Attachments); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) addAttachment(ctx context.Context, c *wizard.Controller) error {
	path, err := r.driver.Input(ctx, InputConfig{
		Message: r.prompt("Path to file"),
		Help:    "PDF, JPG, JPEG or PNG up to 5 MB",
	})
	if err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	candidate, err := r.stat(path)
	if err != nil {
		return r.info(ctx, r.theme.ErrorPrefix, fmt.Sprintf("cannot read %s: %v", path, err))
	}
	_, rejected, err := c.AddAttachments([]attachment.Candidate{candidate})
	if err != nil {
		return err
	}
	if len(rejected) > 0 {
		for _, message := range c.Snapshot().Errors.For(model.FieldAttachments) {
			if err := r.info(ctx, r.theme.ErrorPrefix, message); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) removeAttachment(ctx context.Context, c *wizard.Controller, files []model.Attachment) error {
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.DisplayName)
	}
	idx, err := r.driver.Select(ctx, SelectConfig{
		Message: r.prompt("Remove which file?"),
		Options: names,
	})
	if err != nil {
		return err
	}
	return c.RemoveAttachment(idx)
}

func (r *Runner) showErrors(ctx context.Context, snap wizard.Snapshot) error {
	if snap.Errors.Empty() {
		return nil
	}
	for _, message := range snap.Errors.Form {
		if err := r.info(ctx, r.theme.ErrorPrefix, message); err != nil {
			return err
		}
	}
	for _, key := range model.FieldKeys {
		for _, message := range snap.Errors.For(key) {
			if err := r.info(ctx, r.theme.ErrorPrefix, fieldLabel(snap.VisibleFields, key)+": "+message); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) info(ctx context.Context, prefix, msg string) error {
	return r.driver.Info(ctx, prefix+msg)
}

func (r *Runner) prompt(msg string) string {
	return r.theme.PromptPrefix + msg
}

func fieldMessage(field visibility.Field) string {
	if field.Required {
		return field.Label + " *"
	}
	return field.Label
}

func fieldLabel(fields visibility.FieldSet, key model.FieldKey) string {
	if field, ok := fields.Lookup(key); ok {
		return field.Label
	}
	if key == model.FieldAgreedToTerms {
		return "Terms"
	}
	return string(key)
}
