package ports

import (
	"context"
	"time"
)

// Renderer presents the spans of a build.
// It decouples telemetry collection from presentation.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error
	// Stop flushes buffered output and releases resources.
	Stop() error

	// OnSpanStart is called when a target or task begins.
	// parentID is empty for root spans.
	OnSpanStart(spanID, parentID, name string, startTime time.Time)

	// OnSpanEnd is called when a target or task finishes. err is nil on success.
	OnSpanEnd(spanID string, endTime time.Time, err error)
}
