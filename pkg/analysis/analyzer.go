package analysis

import (
	"github.com/bastionlabs/vulnsync/pkg/component"
)

// Level tags what triggered an analysis run.
type Level string

const (
	LevelOnUpload Level = "ON_UPLOAD"
	LevelPeriodic Level = "PERIODIC"
)

// Request is the typed entry point for one analysis run over a set of components.
type Request struct {
	Components []component.Component
	Level      Level
}

// Analyzer is one vulnerability-intelligence integration. Implementations are
// independent types composed by the Coordinator.
type Analyzer interface {
	// Identity names the analyzer; it tags every association the analyzer writes.
	Identity() string

	// IsCapable reports whether the component carries an identifier this analyzer can
	// work with at all.
	IsCapable(c component.Component) bool

	// ShouldAnalyze reports whether this analyzer wants the component in the current
	// run (capability plus any per-run policy such as internal-only exclusion).
	ShouldAnalyze(c component.Component) bool

	// Analyze runs the integration over the request's components. Components the
	// analyzer is not capable of are skipped, not errored.
	Analyze(request Request) error
}
