package bus_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/core/ports/mocks"
	"go.trai.ch/emmet/internal/engine/bus"
	"go.uber.org/mock/gomock"
)

type listenerFunc func(domain.Event) error

func (f listenerFunc) OnEvent(e domain.Event) error { return f(e) }

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	b := bus.New(nil)

	var got []string
	b.Subscribe(listenerFunc(func(e domain.Event) error {
		got = append(got, "first:"+e.Target)
		return nil
	}))
	b.Subscribe(listenerFunc(func(e domain.Event) error {
		got = append(got, "second:"+e.Target)
		return nil
	}))

	b.Publish(domain.Event{Kind: domain.TargetStarted, Target: "a"})
	b.Publish(domain.Event{Kind: domain.TargetStarted, Target: "b"})

	assert.Equal(t, []string{"first:a", "second:a", "first:b", "second:b"}, got)
}

func TestBus_IsolatesListenerFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Error(gomock.Any()).Times(2)

	b := bus.New(logger)

	delivered := 0
	b.Subscribe(listenerFunc(func(domain.Event) error { return errors.New("disk full") }))
	b.Subscribe(listenerFunc(func(domain.Event) error { panic("boom") }))
	b.Subscribe(listenerFunc(func(domain.Event) error {
		delivered++
		return nil
	}))

	assert.NotPanics(t, func() {
		b.Publish(domain.Event{Kind: domain.BuildStarted})
	})
	assert.Equal(t, 1, delivered)
}

func TestBus_MockListener(t *testing.T) {
	ctrl := gomock.NewController(t)
	l := mocks.NewMockListener(ctrl)

	event := domain.Event{Kind: domain.Message, Level: domain.LevelInfo, Message: "hi"}
	l.EXPECT().OnEvent(event).Return(nil)

	b := bus.New(nil)
	b.Subscribe(l)
	b.Publish(event)
}
