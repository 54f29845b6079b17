package statemachine

// EventBus fans events out to subscribed machines.
type EventBus interface {
	Subscribe(m *StateMachine)
	Unsubscribe(m *StateMachine)
	FireEvent(eventID int) error
}

// SingleEventBus feeds exactly one machine; used for per-security events.
type SingleEventBus struct {
	machine *StateMachine
}

// NewSingleEventBus returns an empty single-machine bus.
func NewSingleEventBus() *SingleEventBus { return &SingleEventBus{} }

func (b *SingleEventBus) Subscribe(m *StateMachine) { b.machine = m }

func (b *SingleEventBus) Unsubscribe(m *StateMachine) {
	if b.machine == m {
		b.machine = nil
	}
}

// FireEvent delivers the event to the subscribed machine, if any.
func (b *SingleEventBus) FireEvent(eventID int) error {
	if b.machine == nil {
		return nil
	}
	return b.machine.OnEventReceived(eventID)
}

// StaticEventBus fans one event out to every subscribed machine in
// subscription order; used for underlying-level events shared by all
// warrants on one option side. Subscription order is load-bearing.
type StaticEventBus struct {
	machines []*StateMachine
}

// NewStaticEventBus returns an empty fan-out bus.
func NewStaticEventBus() *StaticEventBus {
	return &StaticEventBus{machines: make([]*StateMachine, 0, 8)}
}

func (b *StaticEventBus) Subscribe(m *StateMachine) {
	b.machines = append(b.machines, m)
}

func (b *StaticEventBus) Unsubscribe(m *StateMachine) {
	for i, r := range b.machines {
		if r == m {
			b.machines = append(b.machines[:i], b.machines[i+1:]...)
			return
		}
	}
}

// FireEvent stops at the first machine error.
func (b *StaticEventBus) FireEvent(eventID int) error {
	for _, m := range b.machines {
		if err := m.OnEventReceived(eventID); err != nil {
			return err
		}
	}
	return nil
}
