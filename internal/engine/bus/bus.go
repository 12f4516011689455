// Package bus delivers build lifecycle events to listeners.
package bus

import (
	"fmt"
	"sync"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/zerr"
)

// Bus publishes events synchronously to its subscribers, in subscription order.
type Bus struct {
	mu        sync.RWMutex
	listeners []ports.Listener
	logger    ports.Logger
}

// New creates a Bus that reports listener failures to logger.
func New(logger ports.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe adds a listener.
func (b *Bus) Subscribe(l ports.Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Publish delivers the event to every listener on the calling goroutine.
// A listener that fails or panics is logged and skipped.
func (b *Bus) Publish(event domain.Event) {
	b.mu.RLock()
	listeners := b.listeners
	b.mu.RUnlock()

	for i, l := range listeners {
		if err := deliver(l, event); err != nil && b.logger != nil {
			b.logger.Error(zerr.With(zerr.With(err, "listener", i), "event", event.Kind.String()))
		}
	}
}

func deliver(l ports.Listener, event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = zerr.New(fmt.Sprintf("listener panicked: %v", r))
		}
	}()
	if err := l.OnEvent(event); err != nil {
		return zerr.Wrap(err, "listener failed")
	}
	return nil
}
