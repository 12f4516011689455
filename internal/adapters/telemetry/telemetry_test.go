package telemetry_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/emmet/internal/adapters/telemetry"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func buildEvents(taskErr error) []domain.Event {
	now := time.Now()
	targetErr := error(nil)
	if taskErr != nil {
		targetErr = zerr.Wrap(taskErr, "target 'build' failed")
	}
	return []domain.Event{
		{Kind: domain.BuildStarted, Project: "demo", Time: now},
		{Kind: domain.TargetStarted, Target: "build", Time: now},
		{Kind: domain.TaskStarted, Target: "build", Task: "echo", Time: now},
		{Kind: domain.Message, Target: "build", Task: "echo", Level: domain.LevelInfo, Message: "hi", Time: now},
		{Kind: domain.TaskFinished, Target: "build", Task: "echo", Time: now, Err: taskErr},
		{Kind: domain.TargetFinished, Target: "build", Time: now, Err: targetErr},
		{Kind: domain.TargetSkipped, Target: "docs", Reason: "if is false", Time: now},
		{Kind: domain.BuildFinished, Project: "demo", Time: now, Err: targetErr},
	}
}

func TestListener_SpanHierarchy(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	l := telemetry.NewListener(tp.Tracer("test"))

	for _, ev := range buildEvents(nil) {
		require.NoError(t, l.OnEvent(ev))
	}

	spans := sr.Ended()
	require.Len(t, spans, 3)
	task, target, build := spans[0], spans[1], spans[2]

	assert.Equal(t, "echo", task.Name())
	assert.Equal(t, "build", target.Name())
	assert.Equal(t, "build demo", build.Name())

	assert.Equal(t, target.SpanContext().SpanID(), task.Parent().SpanID())
	assert.Equal(t, build.SpanContext().SpanID(), target.Parent().SpanID())
	assert.False(t, build.Parent().IsValid())

	require.Len(t, task.Events(), 1)
	assert.Equal(t, "message", task.Events()[0].Name)
	require.Len(t, build.Events(), 1)
	assert.Equal(t, "target skipped", build.Events()[0].Name)

	assert.Equal(t, codes.Ok, build.Status().Code)
}

func TestListener_FailureStatus(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	l := telemetry.NewListener(tp.Tracer("test"))

	for _, ev := range buildEvents(zerr.New("exit status 1")) {
		require.NoError(t, l.OnEvent(ev))
	}

	for _, s := range sr.Ended() {
		assert.Equal(t, codes.Error, s.Status().Code, s.Name())
	}
	assert.Equal(t, "exit status 1", sr.Ended()[0].Status().Description)
}

func TestListener_UnbalancedEvents(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	l := telemetry.NewListener(tp.Tracer("test"))

	require.NoError(t, l.OnEvent(domain.Event{Kind: domain.TaskFinished}))
	require.NoError(t, l.OnEvent(domain.Event{Kind: domain.Message, Message: "orphan"}))
	assert.Empty(t, sr.Ended())
}

func TestBridge_ForwardsSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)

	var rootID string
	gomock.InOrder(
		renderer.EXPECT().OnSpanStart(gomock.Any(), "", "root", gomock.Any()).
			Do(func(id, _, _ string, _ time.Time) { rootID = id }),
		renderer.EXPECT().OnSpanStart(gomock.Any(), gomock.Any(), "child", gomock.Any()).
			Do(func(_, parentID, _ string, _ time.Time) { assert.Equal(t, rootID, parentID) }),
		renderer.EXPECT().OnSpanEnd(gomock.Any(), gomock.Any(), gomock.Any()).
			Do(func(_ string, _ time.Time, err error) { require.EqualError(t, err, "broken") }),
		renderer.EXPECT().OnSpanEnd(gomock.Any(), gomock.Any(), nil),
		renderer.EXPECT().Stop().Return(nil),
	)

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(renderer)))
	tracer := tp.Tracer("test")

	ctx, root := tracer.Start(context.Background(), "root")
	_, child := tracer.Start(ctx, "child")
	child.SetStatus(codes.Error, "broken")
	child.End()
	root.End()

	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestProvider_TraceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")

	ctrl := gomock.NewController(t)
	renderer := mocks.NewMockRenderer(ctrl)
	renderer.EXPECT().Start(gomock.Any()).Return(nil)
	renderer.EXPECT().OnSpanStart(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	renderer.EXPECT().OnSpanEnd(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	renderer.EXPECT().Stop().Return(nil)

	p, err := telemetry.NewProvider(context.Background(),
		telemetry.WithTraceFile(path),
		telemetry.WithRenderer(renderer),
	)
	require.NoError(t, err)

	l := telemetry.NewListener(p.Tracer())
	for _, ev := range buildEvents(nil) {
		require.NoError(t, l.OnEvent(ev))
	}
	require.NoError(t, p.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	dec := json.NewDecoder(bytes.NewReader(data))
	var names []string
	for dec.More() {
		var span struct{ Name string }
		require.NoError(t, dec.Decode(&span))
		names = append(names, span.Name)
	}
	assert.Equal(t, []string{"echo", "build", "build demo"}, names)
}

func TestProvider_BadTraceFile(t *testing.T) {
	_, err := telemetry.NewProvider(context.Background(),
		telemetry.WithTraceFile(filepath.Join(t.TempDir(), "missing", "trace.json")),
	)
	require.ErrorContains(t, err, "failed to create trace file")
}
