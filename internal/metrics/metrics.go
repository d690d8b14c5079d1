package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-regwizard/pkg/attachment"
	"github.com/goliatone/go-regwizard/pkg/model"
	"github.com/goliatone/go-regwizard/pkg/wizard"
)

// Observer records wizard events as Prometheus counters.
type Observer struct {
	transitions *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	submissions *prometheus.CounterVec
}

var _ wizard.Observer = (*Observer)(nil)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Observer, error) {
	o := &Observer{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regwizard_transitions_total",
				Help: "Wizard step transitions by source and target step.",
			},
			[]string{"from", "to"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regwizard_attachments_rejected_total",
				Help: "Rejected attachment candidates by reason.",
			},
			[]string{"reason"},
		),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regwizard_submissions_total",
				Help: "Submit intents by outcome (submitted/invalid/failed/in_flight).",
			},
			[]string{"outcome"},
		),
	}
	for _, c := range []prometheus.Collector{o.transitions, o.rejections, o.submissions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (o *Observer) OnTransition(from, to model.Step) {
	o.transitions.WithLabelValues(from.String(), to.String()).Inc()
}

func (o *Observer) OnAttachmentRejected(reason attachment.Reason) {
	o.rejections.WithLabelValues(string(reason)).Inc()
}

func (o *Observer) OnSubmission(outcome wizard.Outcome) {
	o.submissions.WithLabelValues(string(outcome)).Inc()
}
