package notify

import "context"

type nopDispatcher struct{}

// Nop returns a Dispatcher that drops every notification.
func Nop() Dispatcher {
	return nopDispatcher{}
}

func (nopDispatcher) Notify(context.Context, int64, Kind, Payload) {}

var _ Dispatcher = nopDispatcher{}
