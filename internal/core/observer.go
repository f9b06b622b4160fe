package core

import (
	"context"

	"github.com/vovakirdan/wirefeed/internal/store"
)

// Observer receives newly posted messages.
// Observers are compared by identity, so implementations should be pointer types.
type Observer interface {
	Notify(ctx context.Context, msg store.Message) error
}

// ObserverFunc adapts a function to the Observer interface via NewFuncObserver.
type ObserverFunc func(ctx context.Context, msg store.Message) error

type funcObserver struct {
	fn ObserverFunc
}

// NewFuncObserver wraps fn in a comparable observer. Keep the returned value to detach it later.
func NewFuncObserver(fn ObserverFunc) Observer {
	return &funcObserver{fn: fn}
}

func (o *funcObserver) Notify(ctx context.Context, msg store.Message) error {
	return o.fn(ctx, msg)
}

type channelObserver struct {
	next     Observer
	channels map[int64]struct{}
}

// ForChannels wraps an observer so it only sees messages of the given channels.
func ForChannels(next Observer, channelIDs ...int64) Observer {
	channels := make(map[int64]struct{}, len(channelIDs))
	for _, id := range channelIDs {
		channels[id] = struct{}{}
	}
	return &channelObserver{next: next, channels: channels}
}

func (o *channelObserver) Notify(ctx context.Context, msg store.Message) error {
	if _, ok := o.channels[msg.ChannelID]; !ok {
		return nil
	}
	return o.next.Notify(ctx, msg)
}
