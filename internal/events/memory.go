package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Patrick-Hull/MySQLWrapper/internal/core"
)

// ErrBufferFull is returned when the memory publisher has no room left.
var ErrBufferFull = errors.New("memory publisher buffer is full")

// MemoryPublisher buffers events in a channel. It is useful for tests and
// for embedding applications that consume events in-process.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events chan *core.MutationEvent
	closed bool
}

// NewMemoryPublisher creates a publisher holding up to bufferSize events.
func NewMemoryPublisher(bufferSize int) *MemoryPublisher {
	if bufferSize <= 0 {
		bufferSize = 1000
	}
	return &MemoryPublisher{events: make(chan *core.MutationEvent, bufferSize)}
}

// Publish enqueues the event without blocking.
func (p *MemoryPublisher) Publish(ctx context.Context, event *core.MutationEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	if err := validateEvent(event); err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case p.events <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// Events returns the channel events are delivered on. It is closed by Close.
func (p *MemoryPublisher) Events() <-chan *core.MutationEvent {
	return p.events
}

// Drain returns every buffered event without blocking.
func (p *MemoryPublisher) Drain() []*core.MutationEvent {
	var out []*core.MutationEvent
	for {
		select {
		case ev, ok := <-p.events:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

// Close stops accepting events and closes the channel.
func (p *MemoryPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.events)
	return nil
}
