package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// MemoryPublisher records events in memory. Used by tests and as a default when
// no broker is configured.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Emit(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a snapshot of everything emitted so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Event{}, p.events...)
}

// OfType filters the snapshot by event type.
func (p *MemoryPublisher) OfType(eventType Type) []Event {
	var out []Event
	for _, e := range p.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// LogPublisher writes events to the structured log. Useful in dev when Kafka is
// not configured but visibility is still wanted.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Emit(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "registry event",
		"event_id", event.ID,
		"type", string(event.Type),
		"entity_id", event.EntityID,
		"actor", event.Actor,
	)
	return nil
}

// Worker drains an event channel into a publisher. It decouples the request
// path from slow sinks; services write to the channel, the worker delivers.
type Worker struct {
	logger    *slog.Logger
	publisher Publisher
	inbox     <-chan Event
}

func NewWorker(publisher Publisher, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{logger: logger, publisher: publisher, inbox: inbox}
}

// Run delivers events until ctx is cancelled. Delivery errors are logged and
// dropped: an event sink outage must not stall registry mutations.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			if err := w.publisher.Emit(deliverCtx, event); err != nil {
				w.logger.ErrorContext(ctx, "event delivery failed",
					"event_id", event.ID,
					"type", string(event.Type),
					"error", err,
				)
			}
			cancel()
		}
	}
}

// ChannelPublisher adapts a channel to the Publisher interface for services
// that hand events to a Worker.
type ChannelPublisher struct {
	outbox chan<- Event
}

func NewChannelPublisher(outbox chan<- Event) *ChannelPublisher {
	return &ChannelPublisher{outbox: outbox}
}

// ErrInboxFull reports a saturated event buffer. Emitters treat it as a
// delivery failure, never as a reason to roll back the entity commit.
var ErrInboxFull = errors.New("event inbox full")

// Emit enqueues without blocking the mutation path; if the buffer is full the
// event is dropped rather than stalling a commit.
func (p *ChannelPublisher) Emit(_ context.Context, event Event) error {
	select {
	case p.outbox <- event:
		return nil
	default:
		return ErrInboxFull
	}
}
