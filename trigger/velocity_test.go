package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonvincal/lunar-sub006/market"
	"github.com/wonvincal/lunar-sub006/params"
)

const testWindowNs = 5_000_000

func newUnderlying() *market.Security {
	return market.NewSecurity(700, "700", market.SecurityTypeStock,
		market.SideNone, market.NewFixedSpreadTable(200), 100, 0, 0, nil)
}

func newWarrantOn(sid int64, und *market.Security) *market.Security {
	return market.NewSecurity(sid, "18888", market.SecurityTypeWarrant,
		market.SideCall, market.NewWarrantSpreadTable(), 10_000, 8_000, 3, und)
}

// stubHandler records generator subscription callbacks.
type stubHandler struct {
	sec          *market.Security
	subscribed   []Generator
	unsubscribed []Generator
}

func (h *stubHandler) Security() *market.Security { return h.sec }

func (h *stubHandler) OnTriggerGeneratorSubscribed(g Generator) {
	h.subscribed = append(h.subscribed, g)
}

func (h *stubHandler) OnTriggerGeneratorUnsubscribed(g Generator) {
	h.unsubscribed = append(h.unsubscribed, g)
}

func buyTrade(nano, price, qty int64) market.Trade {
	return market.Trade{SecSid: 700, Price: price, Quantity: qty, Side: market.AggressorAsk, NanoOfDay: nano}
}

func sellTrade(nano, price, qty int64) market.Trade {
	return market.Trade{SecSid: 700, Price: price, Quantity: qty, Side: market.AggressorBid, NanoOfDay: nano}
}

func TestVelocityAccumulatesSignedNotional(t *testing.T) {
	up := params.NewUndParams()
	g := NewVelocityTriggerGenerator(params.TriggerTypeVelocity5ms, newUnderlying(), up, testWindowNs, 128)

	require.NoError(t, g.OnTradeReceived(1_000, buyTrade(1_000, 10_000, 100)))
	assert.Equal(t, int64(1_000_000), g.Velocity())

	require.NoError(t, g.OnTradeReceived(2_000, sellTrade(2_000, 10_000, 30)))
	assert.Equal(t, int64(700_000), g.Velocity())
}

func TestVelocityTriggerThresholds(t *testing.T) {
	up := params.NewUndParams()
	g := NewVelocityTriggerGenerator(params.TriggerTypeVelocity5ms, newUnderlying(), up, testWindowNs, 128)

	// Zero threshold never authorizes.
	require.NoError(t, g.OnTradeReceived(1_000, buyTrade(1_000, 10_000, 500)))
	assert.False(t, g.IsTriggeredForCall())
	assert.False(t, g.IsTriggeredForPut())
	assert.Equal(t, StrengthNone, g.StrengthForCall())

	up.SetVelocityThreshold(1_000_000)
	assert.True(t, g.IsTriggeredForCall())
	assert.False(t, g.IsTriggeredForPut())

	g.Reset()
	require.NoError(t, g.OnTradeReceived(2_000, sellTrade(2_000, 10_000, 500)))
	assert.False(t, g.IsTriggeredForCall())
	assert.True(t, g.IsTriggeredForPut())
}

func TestVelocityStrengthTiers(t *testing.T) {
	up := params.NewUndParams()
	up.SetVelocityThreshold(1_000_000)
	g := NewVelocityTriggerGenerator(params.TriggerTypeVelocity5ms, newUnderlying(), up, testWindowNs, 128)

	require.NoError(t, g.OnTradeReceived(1_000, buyTrade(1_000, 10_000, 50)))
	assert.Equal(t, StrengthNone, g.StrengthForCall())

	require.NoError(t, g.OnTradeReceived(1_100, buyTrade(1_100, 10_000, 50)))
	assert.Equal(t, StrengthWeak, g.StrengthForCall())

	require.NoError(t, g.OnTradeReceived(1_200, buyTrade(1_200, 10_000, 100)))
	assert.Equal(t, StrengthMedium, g.StrengthForCall())

	require.NoError(t, g.OnTradeReceived(1_300, buyTrade(1_300, 10_000, 100)))
	assert.Equal(t, StrengthStrong, g.StrengthForCall())
	assert.Equal(t, StrengthNone, g.StrengthForPut())
}

func TestVelocityWindowAgesOut(t *testing.T) {
	up := params.NewUndParams()
	up.SetVelocityThreshold(1_000_000)
	g := NewVelocityTriggerGenerator(params.TriggerTypeVelocity5ms, newUnderlying(), up, testWindowNs, 128)

	require.NoError(t, g.OnTradeReceived(1_000_000, buyTrade(1_000_000, 10_000, 100)))
	assert.True(t, g.IsTriggeredForCall())

	// Aging is driven by book ticks on the same stream.
	require.NoError(t, g.OnOrderBookUpdated(6_000_000, nil))
	assert.Equal(t, int64(0), g.Velocity())
	assert.False(t, g.IsTriggeredForCall())
}

func TestVelocityRegisterTapsUnderlyingFeed(t *testing.T) {
	und := newUnderlying()
	up := params.NewUndParams()
	g := NewVelocityTriggerGenerator(params.TriggerTypeVelocity5ms, und, up, testWindowNs, 128)

	h := &stubHandler{sec: newWarrantOn(5001, und)}
	g.RegisterHandler(h)
	require.Len(t, h.subscribed, 1)
	assert.Same(t, Generator(g), h.subscribed[0])

	require.NoError(t, und.OnTradeReceived(1_000, buyTrade(1_000, 10_000, 100)))
	assert.Equal(t, int64(1_000_000), g.Velocity())

	g.UnregisterHandler(h)
	require.Len(t, h.unsubscribed, 1)

	// The tap is gone, further prints no longer accumulate.
	require.NoError(t, und.OnTradeReceived(2_000, buyTrade(2_000, 10_000, 100)))
	assert.Equal(t, int64(1_000_000), g.Velocity())
}
