// Package statemachine provides the builder-based finite state machine that
// drives the per-security strategy automatons. States, events and transitions
// are plain integer identifiers owned by the caller; an event with no
// translation in the current state is a no-op, never an error.
package statemachine

import "fmt"

// NoTransition is returned by an EventTranslator when the event should not
// move the machine.
const NoTransition = -1

// EventTranslator maps an event id to a transition id for one state.
type EventTranslator func(eventID int) int

// BeginStateFunc runs when a state is entered, with the state it came from
// and the transition that carried it there.
type BeginStateFunc func(prevStateID, transitionID int) error

type state struct {
	id          int
	onBegin     BeginStateFunc
	translators map[int]EventTranslator
	links       map[int]*state
}

// Builder assembles a StateMachine. Registration methods return false on
// duplicate or unknown identifiers instead of failing the build.
type Builder struct {
	name   string
	states map[int]*state
}

// NewBuilder starts a machine definition. The name appears in errors only.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, states: make(map[int]*state)}
}

// RegisterState adds a state. Returns false if the id is already registered.
func (b *Builder) RegisterState(id int, onBegin BeginStateFunc) bool {
	if _, ok := b.states[id]; ok {
		return false
	}
	b.states[id] = &state{
		id:          id,
		onBegin:     onBegin,
		translators: make(map[int]EventTranslator),
		links:       make(map[int]*state),
	}
	return true
}

// LinkStates wires a transition from one state to another. Returns false if
// either state is unknown.
func (b *Builder) LinkStates(fromID, transitionID, toID int) bool {
	from, ok := b.states[fromID]
	if !ok {
		return false
	}
	to, ok := b.states[toID]
	if !ok {
		return false
	}
	from.links[transitionID] = to
	return true
}

// TranslateEvent attaches an event translator to one state. Returns false if
// the state is unknown.
func (b *Builder) TranslateEvent(stateID, eventID int, tr EventTranslator) bool {
	s, ok := b.states[stateID]
	if !ok {
		return false
	}
	s.translators[eventID] = tr
	return true
}

// TranslateEventForStates attaches the same translator to several states.
func (b *Builder) TranslateEventForStates(stateIDs []int, eventID int, tr EventTranslator) bool {
	for _, id := range stateIDs {
		if !b.TranslateEvent(id, eventID, tr) {
			return false
		}
	}
	return true
}

// Build produces the machine. The builder must not be reused afterwards.
func (b *Builder) Build() *StateMachine {
	return &StateMachine{name: b.name, states: b.states}
}

// StateMachine is the running automaton. It is not safe for concurrent use;
// all dispatch happens on the single strategy thread.
type StateMachine struct {
	name    string
	states  map[int]*state
	current *state
}

// Name returns the machine's label.
func (m *StateMachine) Name() string { return m.name }

// Start places the machine in its initial state without running the state's
// begin function.
func (m *StateMachine) Start(stateID int) error {
	s, ok := m.states[stateID]
	if !ok {
		return fmt.Errorf("statemachine %s: unknown start state %d", m.name, stateID)
	}
	m.current = s
	return nil
}

// CurrentStateID returns the id of the current state.
func (m *StateMachine) CurrentStateID() int {
	if m.current == nil {
		return NoTransition
	}
	return m.current.id
}

// OnEventReceived translates the event in the current state and, when a
// transition applies, moves the machine and runs the target state's begin
// function. The begin function may itself feed events back in; the machine
// is already in the target state when it runs.
func (m *StateMachine) OnEventReceived(eventID int) error {
	if m.current == nil {
		return fmt.Errorf("statemachine %s: not started", m.name)
	}
	tr, ok := m.current.translators[eventID]
	if !ok {
		return nil
	}
	transitionID := tr(eventID)
	if transitionID == NoTransition {
		return nil
	}
	return m.proceed(transitionID)
}

func (m *StateMachine) proceed(transitionID int) error {
	target, ok := m.current.links[transitionID]
	if !ok {
		return fmt.Errorf("statemachine %s: state %d has no link for transition %d", m.name, m.current.id, transitionID)
	}
	prev := m.current
	m.current = target
	if target.onBegin != nil {
		return target.onBegin(prev.id, transitionID)
	}
	return nil
}
