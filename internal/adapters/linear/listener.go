// Package linear prints build events as chronological, line-oriented output.
package linear

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports"
	"go.trai.ch/emmet/internal/ui/output"
	"go.trai.ch/emmet/internal/ui/style"
)

var _ ports.Listener = (*Listener)(nil)

// prefixWidth is the column at which task output starts.
const prefixWidth = 12

// Listener implements ports.Listener for terminals and CI logs. Task messages
// are prefixed with the task name, targets get a header line.
type Listener struct {
	out       *termenv.Output
	threshold domain.Level

	mu      sync.Mutex
	started time.Time
}

// NewListener creates a Listener writing to w. Messages below threshold are
// dropped.
func NewListener(w io.Writer, threshold domain.Level) *Listener {
	return &Listener{
		out:       output.New(w),
		threshold: threshold,
	}
}

// OnEvent renders a single event.
func (l *Listener) OnEvent(event domain.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch event.Kind {
	case domain.BuildStarted:
		l.started = event.Time
	case domain.TargetStarted:
		if l.threshold <= domain.LevelInfo {
			return l.printf("\n%s:\n\n", l.out.String(event.Target).Bold())
		}
	case domain.TargetSkipped:
		if l.threshold <= domain.LevelVerbose {
			line := fmt.Sprintf("%s target '%s' skipped: %s", style.Skip, event.Target, event.Reason)
			return l.printf("%s\n", l.color(line, style.Slate))
		}
	case domain.Message:
		if event.Level >= l.threshold {
			return l.message(event)
		}
	case domain.BuildFinished:
		if event.Err == nil && l.threshold <= domain.LevelInfo {
			return l.finished(event)
		}
	default:
	}
	return nil
}

func (l *Listener) message(event domain.Event) error {
	prefix := ""
	if event.Task != "" {
		prefix = fmt.Sprintf("%*s ", prefixWidth, "["+event.Task+"]")
	}

	for line := range strings.SplitSeq(strings.TrimRight(event.Message, "\n"), "\n") {
		text := prefix + line
		switch {
		case event.Level >= domain.LevelError:
			text = l.color(text, style.Red)
		case event.Level >= domain.LevelWarning:
			text = l.color(text, style.Yellow)
		case event.Level < domain.LevelInfo:
			text = l.color(text, style.Slate)
		}
		if err := l.printf("%s\n", text); err != nil {
			return err
		}
	}
	return nil
}

func (l *Listener) finished(event domain.Event) error {
	status := l.color(style.Check+" BUILD SUCCEEDED", style.Green)
	if err := l.printf("\n%s\n\n", status); err != nil {
		return err
	}
	if l.started.IsZero() {
		return nil
	}
	elapsed := event.Time.Sub(l.started)
	return l.printf("Total time: %.1f seconds.\n\n", elapsed.Seconds())
}

func (l *Listener) color(s string, c lipgloss.Color) string {
	return l.out.String(s).Foreground(termenv.RGBColor(string(c))).String()
}

func (l *Listener) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(l.out, format, args...)
	return err
}
