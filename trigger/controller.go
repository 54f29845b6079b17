package trigger

import (
	"fmt"

	"github.com/wonvincal/lunar-sub006/logs"
	"github.com/wonvincal/lunar-sub006/params"
)

// Controller is the subscription registry mapping each warrant to exactly
// one trigger generator of its underlying.
type Controller struct {
	generators    map[int64]map[params.TriggerType]Generator
	subscriptions map[int64]Generator
	allowAll      Generator
}

// NewController returns a registry seeded with the shared allow-all source.
func NewController() *Controller {
	return &Controller{
		generators:    make(map[int64]map[params.TriggerType]Generator),
		subscriptions: make(map[int64]Generator),
		allowAll:      NewAllowAllTriggerGenerator(),
	}
}

// RegisterGenerator adds an underlying-scoped generator.
func (c *Controller) RegisterGenerator(undSid int64, g Generator) {
	m, ok := c.generators[undSid]
	if !ok {
		m = make(map[params.TriggerType]Generator)
		c.generators[undSid] = m
	}
	m[g.Type()] = g
}

func (c *Controller) lookup(undSid int64, t params.TriggerType) (Generator, error) {
	if t == params.TriggerTypeAllowAll {
		return c.allowAll, nil
	}
	if m, ok := c.generators[undSid]; ok {
		if g, ok := m[t]; ok {
			return g, nil
		}
	}
	return nil, fmt.Errorf("trigger: no generator of type %s for underlying %d", t, undSid)
}

// Subscribe attaches the handler's warrant to the generator of the given
// type, detaching any previous subscription of a different type first.
func (c *Controller) Subscribe(h Handler, t params.TriggerType) error {
	secSid := h.Security().Sid()
	undSid := h.Security().Underlying().Sid()
	next, err := c.lookup(undSid, t)
	if err != nil {
		return err
	}
	if prev, ok := c.subscriptions[secSid]; ok {
		if prev == next {
			return nil
		}
		prev.UnregisterHandler(h)
	}
	next.RegisterHandler(h)
	c.subscriptions[secSid] = next
	logs.Infof("[TriggerController] Subscribed warrant %s to trigger %s", h.Security().Code(), t)
	return nil
}

// Unsubscribe drops the warrant's current subscription, if any.
func (c *Controller) Unsubscribe(h Handler) {
	secSid := h.Security().Sid()
	if prev, ok := c.subscriptions[secSid]; ok {
		prev.UnregisterHandler(h)
		delete(c.subscriptions, secSid)
	}
}

// GeneratorFor returns the warrant's current generator, nil when none.
func (c *Controller) GeneratorFor(secSid int64) Generator {
	return c.subscriptions[secSid]
}

// ResetAllTriggers clears accumulated state in every generator scoped to
// the underlying; used on strategy reset.
func (c *Controller) ResetAllTriggers(undSid int64) {
	for _, g := range c.generators[undSid] {
		g.Reset()
	}
}
