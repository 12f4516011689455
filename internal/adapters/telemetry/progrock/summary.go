package progrock

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"github.com/vito/progrock"
	"go.trai.ch/emmet/internal/ui/output"
	"go.trai.ch/emmet/internal/ui/style"
	"google.golang.org/protobuf/types/known/timestamppb"
)

var _ progrock.Writer = (*Summary)(nil)

// Summary is a progrock.Writer that keeps the latest state of every vertex
// and prints a timing table when closed.
type Summary struct {
	out *termenv.Output

	mu       sync.Mutex
	vertices map[string]*progrock.Vertex
	order    []string
	depth    map[string]int
	closed   bool
}

// NewSummary creates a Summary printing to w.
func NewSummary(w io.Writer) *Summary {
	return &Summary{
		out:      output.New(w),
		vertices: make(map[string]*progrock.Vertex),
		depth:    make(map[string]int),
	}
}

// WriteStatus merges a status update.
func (s *Summary) WriteStatus(update *progrock.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range update.GetVertexes() {
		id := v.GetId()
		if _, seen := s.vertices[id]; !seen {
			s.order = append(s.order, id)
			s.depth[id] = s.parentDepth(v) + 1
		}
		s.vertices[id] = v
	}
	return nil
}

func (s *Summary) parentDepth(v *progrock.Vertex) int {
	for _, in := range v.GetInputs() {
		if d, ok := s.depth[in]; ok {
			return d
		}
	}
	return -1
}

// Close prints the summary. Subsequent calls do nothing.
func (s *Summary) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if len(s.order) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(s.out, "\n%s\n", s.out.String("Summary").Bold()); err != nil {
		return err
	}

	rows := s.rows()
	width := 0
	for _, r := range rows {
		width = max(width, len(r.label))
	}
	for _, r := range rows {
		line := fmt.Sprintf("  %s %-*s  %8s", r.icon, width, r.label, r.duration)
		if _, err := fmt.Fprintln(s.out, s.out.String(line).Foreground(r.color)); err != nil {
			return err
		}
	}
	return nil
}

type row struct {
	icon     string
	label    string
	duration string
	color    termenv.Color
}

func (s *Summary) rows() []row {
	rows := make([]row, 0, len(s.order))
	for _, id := range s.order {
		v := s.vertices[id]
		r := row{
			icon:     style.Check,
			label:    strings.Repeat("  ", s.depth[id]) + v.GetName(),
			duration: formatDuration(v.GetStarted(), v.GetCompleted()),
			color:    termenv.RGBColor(string(style.Green)),
		}
		switch {
		case v.Error != nil:
			r.icon = style.Cross
			r.color = termenv.RGBColor(string(style.Red))
		case v.GetCompleted() == nil:
			r.icon = style.Dot
			r.color = termenv.RGBColor(string(style.Yellow))
		}
		rows = append(rows, r)
	}
	return rows
}

func timestamp(ts *timestamppb.Timestamp) time.Time {
	if ts == nil || ts.CheckValid() != nil {
		return time.Time{}
	}
	return ts.AsTime()
}

func formatDuration(started, completed *timestamppb.Timestamp) string {
	start, end := timestamp(started), timestamp(completed)
	if start.IsZero() || end.IsZero() {
		return "-"
	}
	return end.Sub(start).Round(time.Millisecond).String()
}
