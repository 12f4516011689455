package progrock_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/emmet/internal/adapters/telemetry/progrock"
	"go.trai.ch/zerr"
)

func TestRecorder_Summary(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	rec := progrock.NewRecorder(progrock.NewSummary(&buf))

	now := time.Now()
	rec.OnSpanStart("b1", "", "build demo", now)
	rec.OnSpanStart("t1", "b1", "compile", now)
	rec.OnSpanStart("k1", "t1", "exec", now)
	rec.OnSpanEnd("k1", now, zerr.New("exit status 1"))
	rec.OnSpanEnd("t1", now, zerr.New("task failed"))
	rec.OnSpanStart("t2", "b1", "docs", now)
	rec.OnSpanEnd("t2", now, nil)

	require.NoError(t, rec.Stop())

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Summary", lines[0])
	assert.Contains(t, lines[1], "✓ build demo")
	assert.Contains(t, lines[2], "✗   compile")
	assert.Contains(t, lines[3], "✗     exec")
	assert.Contains(t, lines[4], "✓   docs")
}

func TestRecorder_UnknownSpan(t *testing.T) {
	var buf bytes.Buffer
	rec := progrock.NewRecorder(progrock.NewSummary(&buf))

	rec.OnSpanEnd("missing", time.Now(), nil)
	require.NoError(t, rec.Stop())
	assert.Empty(t, buf.String())
}

func TestSummary_CloseTwice(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	summary := progrock.NewSummary(&buf)
	rec := progrock.NewRecorder(summary)

	rec.OnSpanStart("b1", "", "build", time.Now())
	require.NoError(t, rec.Stop())
	first := buf.String()

	require.NoError(t, summary.Close())
	assert.Equal(t, first, buf.String())
	assert.Contains(t, first, "build")
}
