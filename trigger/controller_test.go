package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonvincal/lunar-sub006/params"
)

func TestControllerSubscribeAndSwitch(t *testing.T) {
	und := newUnderlying()
	up := params.NewUndParams()
	vel := NewVelocityTriggerGenerator(params.TriggerTypeVelocity5ms, und, up, testWindowNs, 128)

	c := NewController()
	c.RegisterGenerator(und.Sid(), vel)

	h := &stubHandler{sec: newWarrantOn(5001, und)}
	require.NoError(t, c.Subscribe(h, params.TriggerTypeVelocity5ms))
	assert.Same(t, Generator(vel), c.GeneratorFor(5001))
	require.Len(t, h.subscribed, 1)

	// Re-subscribing to the same generator is a no-op.
	require.NoError(t, c.Subscribe(h, params.TriggerTypeVelocity5ms))
	assert.Len(t, h.subscribed, 1)

	// Switching detaches the previous generator first.
	require.NoError(t, c.Subscribe(h, params.TriggerTypeAllowAll))
	require.Len(t, h.unsubscribed, 1)
	assert.Same(t, Generator(vel), h.unsubscribed[0])
	assert.Equal(t, params.TriggerTypeAllowAll, c.GeneratorFor(5001).Type())
}

func TestControllerRejectsUnknownGenerator(t *testing.T) {
	und := newUnderlying()
	c := NewController()

	h := &stubHandler{sec: newWarrantOn(5001, und)}
	err := c.Subscribe(h, params.TriggerTypeVelocity10ms)
	assert.Error(t, err)
	assert.Nil(t, c.GeneratorFor(5001))
}

func TestControllerUnsubscribe(t *testing.T) {
	und := newUnderlying()
	up := params.NewUndParams()
	vel := NewVelocityTriggerGenerator(params.TriggerTypeVelocity5ms, und, up, testWindowNs, 128)

	c := NewController()
	c.RegisterGenerator(und.Sid(), vel)

	h := &stubHandler{sec: newWarrantOn(5001, und)}
	require.NoError(t, c.Subscribe(h, params.TriggerTypeVelocity5ms))

	c.Unsubscribe(h)
	assert.Nil(t, c.GeneratorFor(5001))
	assert.Len(t, h.unsubscribed, 1)

	// A second unsubscribe has nothing to drop.
	c.Unsubscribe(h)
	assert.Len(t, h.unsubscribed, 1)
}

func TestControllerResetAllTriggers(t *testing.T) {
	und := newUnderlying()
	up := params.NewUndParams()
	up.SetVelocityThreshold(1_000_000)
	vel := NewVelocityTriggerGenerator(params.TriggerTypeVelocity5ms, und, up, testWindowNs, 128)

	c := NewController()
	c.RegisterGenerator(und.Sid(), vel)

	require.NoError(t, vel.OnTradeReceived(1_000, buyTrade(1_000, 10_000, 100)))
	require.True(t, vel.IsTriggeredForCall())

	c.ResetAllTriggers(und.Sid())
	assert.False(t, vel.IsTriggeredForCall())
	assert.Equal(t, int64(0), vel.Velocity())
}
