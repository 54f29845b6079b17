package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stateIdle = iota
	stateRunning
	stateDone
)

const (
	transitionGo = iota
	transitionFinish
)

const (
	eventKick = iota
	eventStop
	eventUnknown
)

func buildMachine(t *testing.T, onRunning, onDone BeginStateFunc) *StateMachine {
	t.Helper()
	b := NewBuilder("test")
	require.True(t, b.RegisterState(stateIdle, nil))
	require.True(t, b.RegisterState(stateRunning, onRunning))
	require.True(t, b.RegisterState(stateDone, onDone))
	require.True(t, b.LinkStates(stateIdle, transitionGo, stateRunning))
	require.True(t, b.LinkStates(stateRunning, transitionFinish, stateDone))
	require.True(t, b.TranslateEvent(stateIdle, eventKick, func(int) int { return transitionGo }))
	require.True(t, b.TranslateEvent(stateRunning, eventStop, func(int) int { return transitionFinish }))
	return b.Build()
}

func TestTransitionRunsBeginWithPrevAndTransition(t *testing.T) {
	var gotPrev, gotTransition int
	m := buildMachine(t, func(prev, tr int) error {
		gotPrev, gotTransition = prev, tr
		return nil
	}, nil)
	require.NoError(t, m.Start(stateIdle))

	require.NoError(t, m.OnEventReceived(eventKick))
	assert.Equal(t, stateRunning, m.CurrentStateID())
	assert.Equal(t, stateIdle, gotPrev)
	assert.Equal(t, transitionGo, gotTransition)
}

func TestUntranslatedEventIsNoOp(t *testing.T) {
	m := buildMachine(t, nil, nil)
	require.NoError(t, m.Start(stateIdle))

	// Unknown event, and an event translated only in another state.
	require.NoError(t, m.OnEventReceived(eventUnknown))
	require.NoError(t, m.OnEventReceived(eventStop))
	assert.Equal(t, stateIdle, m.CurrentStateID())
}

func TestNoTransitionLeavesState(t *testing.T) {
	b := NewBuilder("test")
	require.True(t, b.RegisterState(stateIdle, nil))
	require.True(t, b.TranslateEvent(stateIdle, eventKick, func(int) int { return NoTransition }))
	m := b.Build()
	require.NoError(t, m.Start(stateIdle))

	require.NoError(t, m.OnEventReceived(eventKick))
	assert.Equal(t, stateIdle, m.CurrentStateID())
}

func TestBeginMayFeedEventsBack(t *testing.T) {
	var m *StateMachine
	m = buildMachine(t, func(int, int) error {
		// The machine is already in the target state here.
		return m.OnEventReceived(eventStop)
	}, nil)
	require.NoError(t, m.Start(stateIdle))

	require.NoError(t, m.OnEventReceived(eventKick))
	assert.Equal(t, stateDone, m.CurrentStateID())
}

func TestStartSkipsBegin(t *testing.T) {
	entered := false
	m := buildMachine(t, func(int, int) error {
		entered = true
		return nil
	}, nil)

	require.NoError(t, m.Start(stateRunning))
	assert.False(t, entered)
	assert.Equal(t, stateRunning, m.CurrentStateID())

	assert.Error(t, m.Start(99))
}

func TestDuplicateRegistrationRejected(t *testing.T) {
	b := NewBuilder("test")
	assert.True(t, b.RegisterState(stateIdle, nil))
	assert.False(t, b.RegisterState(stateIdle, nil))
	assert.False(t, b.LinkStates(stateIdle, transitionGo, stateDone))
	assert.False(t, b.TranslateEvent(stateDone, eventKick, func(int) int { return NoTransition }))
}

func TestSingleEventBus(t *testing.T) {
	m := buildMachine(t, nil, nil)
	require.NoError(t, m.Start(stateIdle))

	bus := NewSingleEventBus()
	require.NoError(t, bus.FireEvent(eventKick))

	bus.Subscribe(m)
	require.NoError(t, bus.FireEvent(eventKick))
	assert.Equal(t, stateRunning, m.CurrentStateID())

	bus.Unsubscribe(m)
	require.NoError(t, bus.FireEvent(eventStop))
	assert.Equal(t, stateRunning, m.CurrentStateID())
}

func TestStaticEventBusPreservesSubscriptionOrder(t *testing.T) {
	var order []string
	mk := func(name string) *StateMachine {
		b := NewBuilder(name)
		b.RegisterState(stateIdle, nil)
		b.RegisterState(stateRunning, func(int, int) error {
			order = append(order, name)
			return nil
		})
		b.LinkStates(stateIdle, transitionGo, stateRunning)
		b.TranslateEvent(stateIdle, eventKick, func(int) int { return transitionGo })
		m := b.Build()
		m.Start(stateIdle)
		return m
	}

	bus := NewStaticEventBus()
	first := mk("first")
	second := mk("second")
	bus.Subscribe(first)
	bus.Subscribe(second)

	require.NoError(t, bus.FireEvent(eventKick))
	assert.Equal(t, []string{"first", "second"}, order)

	bus.Unsubscribe(first)
	order = nil
	require.NoError(t, bus.FireEvent(eventKick))
	assert.Empty(t, order)
}
