package ports

import "go.trai.ch/emmet/internal/core/domain"

// Listener observes build lifecycle events.
//
// Listeners are called synchronously on the build goroutine, in the order
// they were subscribed. A returned error is logged and does not affect the build.
//
//go:generate mockgen -source=listener.go -destination=mocks/mock_listener.go -package=mocks
type Listener interface {
	OnEvent(event domain.Event) error
}
