// Package events fans session lifecycle events out to side-effect sinks
// (live feed, redis mirror, postgres journal, metrics) on a single goroutine.
package events

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"chargesim/backend/services/charging-sim/internal/models"
)

const (
	defaultBufferSize  = 256
	defaultSinkTimeout = 2 * time.Second
)

// Sink consumes lifecycle events. Handle is only ever called from the bus
// goroutine, one event at a time.
type Sink interface {
	Name() string
	Handle(ctx context.Context, event models.SessionEvent) error
}

// Bus is a bounded queue between the lifecycle engine and the sinks.
type Bus struct {
	events      chan models.SessionEvent
	sinks       []Sink
	sinkTimeout time.Duration
	dropped     atomic.Uint64
	logger      *zap.Logger
}

// NewBus creates a bus holding up to size undelivered events.
func NewBus(size int, logger *zap.Logger, sinks ...Sink) *Bus {
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Bus{
		events:      make(chan models.SessionEvent, size),
		sinks:       sinks,
		sinkTimeout: defaultSinkTimeout,
		logger:      logger,
	}
}

// Publish enqueues the event, dropping it when the queue is full.
func (b *Bus) Publish(event models.SessionEvent) {
	select {
	case b.events <- event:
	default:
		b.dropped.Add(1)
		b.logger.Warn("event bus full, dropping event",
			zap.String("type", string(event.Type)),
			zap.String("session_id", event.Session.ID),
		)
	}
}

// Dropped reports how many events were discarded because the queue was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Run delivers events until ctx is cancelled, then flushes whatever is
// still queued.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			b.drain()
			return
		case event := <-b.events:
			b.dispatch(ctx, event)
		}
	}
}

func (b *Bus) drain() {
	for {
		select {
		case event := <-b.events:
			b.dispatch(context.Background(), event)
		default:
			return
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, event models.SessionEvent) {
	for _, sink := range b.sinks {
		sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.sinkTimeout)
		err := sink.Handle(sinkCtx, event)
		cancel()
		if err != nil {
			b.logger.Warn("event sink failed",
				zap.String("sink", sink.Name()),
				zap.String("type", string(event.Type)),
				zap.String("session_id", event.Session.ID),
				zap.Error(err),
			)
		}
	}
}
