package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrPublisherClosed = errors.New("event publisher closed")

// AsyncPublisher hands events to a background goroutine so callers never
// wait on the broker. When the buffer is full the event is dropped and
// logged; event_logs still has it.
type AsyncPublisher struct {
	next  Publisher
	queue chan Event
	log   *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

func NewAsyncPublisher(next Publisher, buffer int, log *zap.Logger) *AsyncPublisher {
	if buffer <= 0 {
		buffer = 256
	}
	p := &AsyncPublisher{
		next:  next,
		queue: make(chan Event, buffer),
		log:   log,
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for ev := range p.queue {
		// The request that produced ev may be long gone.
		if err := p.next.Publish(context.Background(), ev); err != nil {
			p.log.Warn("failed to publish event",
				zap.String("type", ev.Type),
				zap.String("appointment_id", ev.AppointmentID.String()),
				zap.Error(err),
			)
		}
	}
}

// Publish enqueues ev and returns immediately.
func (p *AsyncPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	select {
	case p.queue <- ev:
		return nil
	default:
		p.log.Warn("event buffer full, dropping event",
			zap.String("type", ev.Type),
			zap.String("appointment_id", ev.AppointmentID.String()),
		)
		return nil
	}
}

// Close stops accepting events, waits up to drainTimeout for the queue to
// flush, then closes the wrapped publisher.
func (p *AsyncPublisher) Close() error {
	return p.CloseTimeout(5 * time.Second)
}

func (p *AsyncPublisher) CloseTimeout(drainTimeout time.Duration) error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()
	})

	select {
	case <-p.done:
	case <-time.After(drainTimeout):
		p.log.Warn("event queue not drained before shutdown", zap.Int("pending", len(p.queue)))
	}
	return p.next.Close()
}
