// Package progrock records build spans as progrock vertices and prints a
// per-span timing summary.
package progrock

import (
	"context"
	"sync"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/emmet/internal/core/ports"
)

var _ ports.Renderer = (*Recorder)(nil)

// Recorder implements ports.Renderer on top of a progrock recorder.
type Recorder struct {
	w   progrock.Writer
	rec *progrock.Recorder

	mu       sync.Mutex
	vertices map[string]*progrock.VertexRecorder
}

// NewRecorder creates a Recorder writing vertex updates to w.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:        w,
		rec:      progrock.NewRecorder(w),
		vertices: make(map[string]*progrock.VertexRecorder),
	}
}

// Start does nothing; vertices are recorded as spans arrive.
func (r *Recorder) Start(context.Context) error {
	return nil
}

// OnSpanStart records a new vertex for the span.
func (r *Recorder) OnSpanStart(spanID, parentID, name string, _ time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var opts []progrock.VertexOpt
	if parentID != "" {
		opts = append(opts, progrock.WithInputs(vertexDigest(parentID)))
	}
	r.vertices[spanID] = r.rec.Vertex(vertexDigest(spanID), name, opts...)
}

// OnSpanEnd completes the vertex of the span.
func (r *Recorder) OnSpanEnd(spanID string, _ time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.vertices[spanID]
	if !ok {
		return
	}
	v.Done(err)
	delete(r.vertices, spanID)
}

// Stop completes dangling vertices and closes the writer.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, v := range r.vertices {
		v.Done(nil)
		delete(r.vertices, id)
	}
	return r.w.Close()
}

func vertexDigest(spanID string) digest.Digest {
	return digest.FromString(spanID)
}
