package notification

import (
	"github.com/wagoodman/go-partybus"

	"github.com/bastionlabs/vulnsync/internal/bus"
	"github.com/bastionlabs/vulnsync/internal/bus/event"
	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/pkg/analysis"
	"github.com/bastionlabs/vulnsync/pkg/component"
	"github.com/bastionlabs/vulnsync/pkg/store"
	"github.com/bastionlabs/vulnsync/pkg/vuln"
)

// Finding is the payload dispatched for an association that passed the criteria. Level
// carries what triggered the analysis so notification consumers can distinguish upload
// scans from periodic sweeps.
type Finding struct {
	Component     component.Component
	Vulnerability vuln.Record
	Analyzer      string
	Level         analysis.Level
}

// Evaluator decides whether an imminent association warrants a notification, and
// dispatches it. Called before every association write, on both the live and the
// cached analysis paths.
type Evaluator interface {
	Evaluate(subject component.Component, record vuln.Record, analyzer string, level analysis.Level)
}

// BusEvaluator dispatches findings over the event bus, but only for associations that
// are genuinely new for the (component, vulnerability) pair. Evaluation never aborts the
// surrounding merge: lookup failures are logged and swallowed.
type BusEvaluator struct {
	store store.Store
}

func NewBusEvaluator(s store.Store) *BusEvaluator {
	return &BusEvaluator{store: s}
}

func (e *BusEvaluator) Evaluate(subject component.Component, record vuln.Record, analyzer string, level analysis.Level) {
	existing, err := e.store.GetAssociations(subject.ID)
	if err != nil {
		log.WithFields("component", subject.ID, "error", err).Warn("unable to evaluate notification criteria")
		return
	}
	for _, a := range existing {
		if a.Source == record.Source && a.VulnID == record.ID {
			return
		}
	}

	bus.Publish(partybus.Event{
		Type:   event.NewAssociation,
		Source: analyzer,
		Value: Finding{
			Component:     subject,
			Vulnerability: record,
			Analyzer:      analyzer,
			Level:         level,
		},
	})
}
