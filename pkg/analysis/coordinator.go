package analysis

import (
	"github.com/wagoodman/go-partybus"
	"golang.org/x/sync/errgroup"

	"github.com/bastionlabs/vulnsync/internal/bus"
	"github.com/bastionlabs/vulnsync/internal/bus/event"
	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/pkg/component"
)

// Coordinator fans one request out to every registered analyzer. Analyzers run
// concurrently with respect to each other; each analyzer processes its own subset
// sequentially.
type Coordinator struct {
	analyzers []Analyzer
}

func NewCoordinator(analyzers ...Analyzer) *Coordinator {
	return &Coordinator{analyzers: analyzers}
}

// Process dispatches the request. Each analyzer receives only the components it reports
// it should analyze; analyzers with an empty subset are not invoked. The first analyzer
// failure is returned after all analyzers have finished.
func (c *Coordinator) Process(request Request) error {
	var g errgroup.Group

	for _, analyzer := range c.analyzers {
		analyzer := analyzer
		subset := filterFor(analyzer, request.Components)
		if len(subset) == 0 {
			log.WithFields("analyzer", analyzer.Identity()).Trace("no eligible components, skipping")
			continue
		}

		g.Go(func() error {
			if err := analyzer.Analyze(Request{Components: subset, Level: request.Level}); err != nil {
				log.WithFields("analyzer", analyzer.Identity(), "error", err).Error("analysis failed")
				return err
			}
			bus.Publish(partybus.Event{
				Type:   event.AnalysisCompleted,
				Source: analyzer.Identity(),
			})
			return nil
		})
	}

	return g.Wait()
}

func filterFor(analyzer Analyzer, components []component.Component) []component.Component {
	var out []component.Component
	for _, c := range components {
		if analyzer.ShouldAnalyze(c) {
			out = append(out, c)
		}
	}
	return out
}
