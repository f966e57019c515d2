package bus

import (
	"github.com/wagoodman/go-partybus"

	"github.com/bastionlabs/vulnsync/internal/bus/event"
)

var publisher partybus.Publisher

func SetPublisher(p partybus.Publisher) {
	publisher = p
}

func Publish(e partybus.Event) {
	if publisher != nil {
		publisher.Publish(e)
	}
}

// Exit signals the event loop that the foreground task is done.
func Exit() {
	Publish(partybus.Event{Type: event.CLIExit})
}
