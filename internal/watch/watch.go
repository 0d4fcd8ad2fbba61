// Package watch turns the record store into a source of live snapshots.
//
// Writers call Hub.Notify after every committed mutation; a Stream re-runs
// its snapshot function whenever any of its topics fires and pushes the fresh
// value downstream. There is no debouncing and no mixing of old and new
// inputs: every emission is computed from the store state at wake-up time.
package watch

import (
	"context"
	"log/slog"
	"sync"
)

const (
	TopicClients  Topic = "clients"
	TopicLoans    Topic = "loans"
	TopicPayments Topic = "payments"
)

// Topic names one entity collection whose changes a stream can wake on.
type Topic string

// Hub fans change notifications out to subscribed streams. The zero value is
// not usable; construct with NewHub and share one instance per store.
type Hub struct {
	mu   sync.Mutex
	subs map[chan struct{}]map[Topic]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan struct{}]map[Topic]struct{})}
}

// Notify wakes every stream subscribed to any of the given topics. Signals
// coalesce: a stream that has not yet drained its pending signal is woken
// once, not queued.
func (h *Hub) Notify(topics ...Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, filter := range h.subs {
		for _, t := range topics {
			if _, ok := filter[t]; ok {
				select {
				case ch <- struct{}{}:
				default:
				}
				break
			}
		}
	}
}

func (h *Hub) subscribe(topics []Topic) (chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	filter := make(map[Topic]struct{}, len(topics))
	for _, t := range topics {
		filter[t] = struct{}{}
	}

	h.mu.Lock()
	h.subs[ch] = filter
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

// Stream is a live-updating snapshot sequence. Snapshots arrive in the order
// they were computed; a slow consumer sees the latest value, never a stale
// backlog.
type Stream[T any] struct {
	ch chan T
}

// NewStream computes an initial snapshot immediately, then recomputes on
// every notification for the given topics. The stream stops and its channel
// closes when ctx is cancelled. A failing snapshot function is logged and the
// previous value stands, matching the rule that a failed read produces no
// derived emission.
func NewStream[T any](ctx context.Context, hub *Hub, topics []Topic, snapshot func(context.Context) (T, error)) *Stream[T] {
	s := &Stream[T]{ch: make(chan T, 1)}
	signal, cancel := hub.subscribe(topics)

	go func() {
		defer cancel()
		defer close(s.ch)

		emit := func() {
			v, err := snapshot(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.WarnContext(ctx, "Snapshot recompute failed", "error", err, "topics", topics)
				}
				return
			}
			s.deliver(v)
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
				emit()
			}
		}
	}()

	return s
}

// Updates is the snapshot channel. It closes when the stream's context is
// cancelled.
func (s *Stream[T]) Updates() <-chan T {
	return s.ch
}

// deliver replaces any undrained value so the consumer always reads the
// newest snapshot.
func (s *Stream[T]) deliver(v T) {
	for {
		select {
		case s.ch <- v:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
