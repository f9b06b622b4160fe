package core

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/wirefeed/internal/store"
)

const (
	defaultMaxConcurrent   = 16
	defaultDeliveryTimeout = 2 * time.Second
)

// Options tunes fan-out.
type Options struct {
	// MaxConcurrent bounds the number of deliveries a single Publish runs at once.
	MaxConcurrent int
	// DeliveryTimeout bounds how long Publish waits for one observer.
	DeliveryTimeout time.Duration
}

type subscription struct {
	id       string
	observer Observer
}

// Hub is the registry of live message observers.
// Membership is copy-on-write: writers swap in a new slice under mu,
// Publish iterates over an immutable snapshot.
type Hub struct {
	mu          sync.Mutex
	subscribers atomic.Pointer[[]subscription]
	opts        Options
	log         *zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zerolog.Logger, opts Options) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = defaultDeliveryTimeout
	}

	h := &Hub{opts: opts, log: logger}
	h.subscribers.Store(&[]subscription{})
	return h
}

func (h *Hub) snapshot() []subscription {
	return *h.subscribers.Load()
}

// Attach registers an observer. Attaching an already attached observer is a no-op.
func (h *Hub) Attach(o Observer) {
	if !isComparable(o) {
		h.log.Error().Str("type", fmt.Sprintf("%T", o)).Msg("refusing to attach nil or non-comparable observer")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	current := h.snapshot()
	for _, sub := range current {
		if sub.observer == o {
			return
		}
	}

	next := make([]subscription, len(current), len(current)+1)
	copy(next, current)
	sub := subscription{id: uuid.NewString(), observer: o}
	next = append(next, sub)
	h.subscribers.Store(&next)

	h.log.Debug().Str("subscriber_id", sub.id).Int("subscribers", len(next)).Msg("observer attached")
}

// Detach removes an observer. Detaching an unknown observer is a no-op.
func (h *Hub) Detach(o Observer) {
	if !isComparable(o) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	current := h.snapshot()
	for i, sub := range current {
		if sub.observer != o {
			continue
		}
		next := make([]subscription, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		h.subscribers.Store(&next)

		h.log.Debug().Str("subscriber_id", sub.id).Int("subscribers", len(next)).Msg("observer detached")
		return
	}
}

// Count returns the number of attached observers.
func (h *Hub) Count() int {
	return len(h.snapshot())
}

// Clear detaches every observer.
func (h *Hub) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.subscribers.Store(&[]subscription{})
	h.log.Debug().Msg("all observers detached")
}

// Publish delivers msg to every observer attached when the call begins.
// Deliveries run in parallel, each bounded by the delivery timeout.
// Observer failures are logged and never returned.
func (h *Hub) Publish(msg store.Message) {
	subs := h.snapshot()
	if len(subs) == 0 {
		return
	}

	h.log.Debug().
		Int64("message_id", msg.ID).
		Int64("channel_id", msg.ChannelID).
		Int("subscribers", len(subs)).
		Msg("publishing message")

	var g errgroup.Group
	g.SetLimit(h.opts.MaxConcurrent)
	for _, sub := range subs {
		g.Go(func() error {
			h.deliver(sub, msg)
			return nil
		})
	}
	_ = g.Wait()
}

func (h *Hub) deliver(sub subscription, msg store.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), h.opts.DeliveryTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- &ObserverPanicError{Value: r}
			}
		}()
		done <- sub.observer.Notify(ctx, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			h.log.Warn().Err(err).
				Str("subscriber_id", sub.id).
				Int64("message_id", msg.ID).
				Msg("observer failed to handle message")
		}
	case <-ctx.Done():
		h.log.Warn().
			Str("subscriber_id", sub.id).
			Int64("message_id", msg.ID).
			Dur("timeout", h.opts.DeliveryTimeout).
			Msg("observer delivery timed out")
	}
}

func isComparable(o Observer) bool {
	if o == nil {
		return false
	}
	return reflect.TypeOf(o).Comparable()
}
