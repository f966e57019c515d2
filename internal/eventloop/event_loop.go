package eventloop

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/wagoodman/go-partybus"

	"github.com/bastionlabs/vulnsync/internal/bus/event"
	"github.com/bastionlabs/vulnsync/internal/log"
	"github.com/bastionlabs/vulnsync/internal/ui"
)

// Run drives the event loop for a foreground task: it dispatches bus events to the
// first usable UI until the task signals completion (or fails, or the context is
// cancelled), then tears the UI down.
func Run(ctx context.Context, workerErrs <-chan error, subscription *partybus.Subscription, cleanupFn func(), uxs ...ui.UI) error {
	if cleanupFn != nil {
		defer cleanupFn()
	}

	ux := setupUI(subscription.Unsubscribe, uxs...)

	events := subscription.Events()
	var retErr error
	var forceTeardown bool

loop:
	for {
		if workerErrs == nil && events == nil {
			break
		}

		select {
		case err, isOpen := <-workerErrs:
			if !isOpen {
				workerErrs = nil
				continue
			}
			if err != nil {
				retErr = multierror.Append(retErr, err)
			}

		case e, isOpen := <-events:
			if !isOpen {
				events = nil
				continue
			}

			if ux != nil {
				if err := ux.Handle(e); err != nil {
					log.WithFields("error", err).Warn("unable to show UI event")
				}
			}

			if e.Type == event.CLIExit {
				break loop
			}

		case <-ctx.Done():
			retErr = multierror.Append(retErr, ctx.Err())
			forceTeardown = true
			break loop
		}
	}

	if ux != nil {
		if err := ux.Teardown(forceTeardown); err != nil {
			log.WithFields("error", err).Warn("unable to tear down UI")
		}
	}

	return retErr
}

// setupUI returns the first UI that sets up successfully.
func setupUI(unsubscribe func() error, uxs ...ui.UI) ui.UI {
	for _, ux := range uxs {
		if err := ux.Setup(unsubscribe); err != nil {
			log.WithFields("error", err).Warn("unable to set up UI, trying next")
			continue
		}
		return ux
	}
	return nil
}
