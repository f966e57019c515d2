package loggerui

import (
	"github.com/dustin/go-humanize"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/bastionlabs/vulnsync/internal/bus/event"
	"github.com/bastionlabs/vulnsync/internal/log"
)

// UI is a passive renderer: it narrates bus events through the logger instead of
// drawing an interactive terminal.
type UI struct {
	debug bool
	quiet bool
}

func New(debug, quiet bool) *UI {
	return &UI{
		debug: debug,
		quiet: quiet,
	}
}

func (u *UI) Setup(_ func() error) error {
	return nil
}

func (u *UI) Handle(e partybus.Event) error {
	if u.quiet {
		return nil
	}

	switch e.Type {
	case event.FeedIngestionStarted:
		if monitor, ok := e.Value.(*progress.Manual); ok && monitor.Size() > 0 {
			log.WithFields("entries", humanize.Comma(monitor.Size())).Info("feed ingestion started")
		} else {
			log.Info("feed ingestion started")
		}
	case event.IndexCommit:
		log.Info("search index commit requested")
	case event.AnalysisCompleted:
		log.WithFields("analyzer", e.Source).Info("analysis completed")
	case event.NewAssociation:
		log.WithFields("analyzer", e.Source).Debug("new vulnerability association")
	}
	return nil
}

func (u *UI) Teardown(_ bool) error {
	return nil
}
