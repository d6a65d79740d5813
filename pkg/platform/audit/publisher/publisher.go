// Package publisher decouples audit emission from storage. Synchronous by
// default; an async buffer keeps the auth hot path off the audit store's
// latency when configured.
package publisher

import (
	"context"
	"sync"
	"time"

	audit "greensquirrel/pkg/platform/audit"
)

// Store is the audit sink the publisher writes to.
type Store interface {
	Append(ctx context.Context, event audit.Event) error
	ListByUser(ctx context.Context, userID string) ([]audit.Event, error)
}

// Publisher fans audit events into a store.
type Publisher struct {
	store Store

	buffer chan audit.Event
	wg     sync.WaitGroup
	once   sync.Once
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to asynchronous mode with the given
// channel capacity. Emit drops events when the buffer is full rather than
// blocking the caller.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.buffer = make(chan audit.Event, size)
	}
}

// NewPublisher constructs a publisher over the given store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.buffer != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. Timestamps default to now.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if p.buffer == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.buffer <- event:
	default:
		// Buffer full: audit is best-effort, never back-pressure auth.
	}
	return nil
}

// List returns the events recorded for a user.
func (p *Publisher) List(ctx context.Context, userID string) ([]audit.Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close stops the async drain, flushing buffered events first.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.buffer != nil {
			close(p.buffer)
			p.wg.Wait()
		}
	})
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	for event := range p.buffer {
		_ = p.store.Append(context.Background(), event)
	}
}
