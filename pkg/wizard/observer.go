package wizard

import (
	"github.com/goliatone/go-regwizard/pkg/attachment"
	"github.com/goliatone/go-regwizard/pkg/model"
)

// Outcome classifies a submit intent.
type Outcome string

const (
	OutcomeSubmitted Outcome = "submitted"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeFailed    Outcome = "failed"
	OutcomeInFlight  Outcome = "in_flight"
)

// Observer receives wizard events. Calls happen while the controller lock is
// held, so implementations must not call back into the controller.
type Observer interface {
	OnTransition(from, to model.Step)
	OnAttachmentRejected(reason attachment.Reason)
	OnSubmission(outcome Outcome)
}

type nopObserver struct{}

func (nopObserver) OnTransition(model.Step, model.Step)   {}
func (nopObserver) OnAttachmentRejected(attachment.Reason) {}
func (nopObserver) OnSubmission(Outcome)                   {}

// Observers fans events out to several observers.
type Observers []Observer

func (o Observers) OnTransition(from, to model.Step) {
	for _, obs := range o {
		obs.OnTransition(from, to)
	}
}

func (o Observers) OnAttachmentRejected(reason attachment.Reason) {
	for _, obs := range o {
		obs.OnAttachmentRejected(reason)
	}
}

func (o Observers) OnSubmission(outcome Outcome) {
	for _, obs := range o {
		obs.OnSubmission(outcome)
	}
}
