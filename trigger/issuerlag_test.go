package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lagRecorder struct {
	lags       []int64
	smoothings []int64
}

func (r *lagRecorder) OnIssuerLagUpdated(lagNs int64) error {
	r.lags = append(r.lags, lagNs)
	return nil
}

func (r *lagRecorder) OnIssuerSmoothingUpdated(timeInWideSpreadNs int64) error {
	r.smoothings = append(r.smoothings, timeInWideSpreadNs)
	return nil
}

func newLagFixture() (*IssuerResponseTimeGenerator, *TickScheduler, *lagRecorder) {
	sched := NewTickScheduler()
	g := NewIssuerResponseTimeGenerator(newWarrantOn(5001, newUnderlying()), sched)
	r := &lagRecorder{}
	g.SetHandler(r)
	return g, sched, r
}

func TestIssuerLagStartsInErrorUntilQuoteQualifies(t *testing.T) {
	g, _, _ := newLagFixture()
	assert.Equal(t, lagStateError, g.CurrentStateID())

	// Bid below the minimum tick level keeps the machine in error.
	require.NoError(t, g.OnMmOrderBookUpdated(1_000, 0, 101, 1, true))
	assert.Equal(t, lagStateError, g.CurrentStateID())

	require.NoError(t, g.OnMmOrderBookUpdated(2_000, 100, 101, 1, true))
	assert.Equal(t, lagStateTight, g.CurrentStateID())
}

func TestIssuerLagMeasuresAskLiftThenSmoothing(t *testing.T) {
	g, _, r := newLagFixture()

	require.NoError(t, g.OnMmOrderBookUpdated(1_000, 100, 101, 1, true))
	require.Equal(t, lagStateTight, g.CurrentStateID())

	require.NoError(t, g.OnTriggerUp(10_000, 1))
	require.Equal(t, lagStateWaitingAsk, g.CurrentStateID())

	// The issuer lifts its ask 25us after the trigger.
	require.NoError(t, g.OnMmOrderBookUpdated(35_000, 100, 103, 1, false))
	require.Equal(t, lagStateWaitingTight, g.CurrentStateID())
	require.Equal(t, []int64{25_000}, r.lags)

	// It sits wide until tightening again at the same target spread.
	require.NoError(t, g.OnMmOrderBookUpdated(60_000, 100, 103, 1, false))
	assert.Equal(t, lagStateWaitingTight, g.CurrentStateID())

	require.NoError(t, g.OnMmOrderBookUpdated(95_000, 102, 103, 1, true))
	assert.Equal(t, lagStateTight, g.CurrentStateID())
	assert.Equal(t, []int64{60_000}, r.smoothings)
}

func TestIssuerLagTimesOutWithoutResponse(t *testing.T) {
	g, sched, r := newLagFixture()

	require.NoError(t, g.OnMmOrderBookUpdated(1_000, 100, 101, 1, true))
	require.NoError(t, g.OnTriggerUp(10_000, 1))
	require.Equal(t, lagStateWaitingAsk, g.CurrentStateID())

	sched.Advance(10_000 + initialResponseTimeoutNs)
	assert.Equal(t, lagStateError, g.CurrentStateID())
	assert.Empty(t, r.lags)
}

func TestIssuerLagAskLiftCancelsInitialTimeout(t *testing.T) {
	g, sched, _ := newLagFixture()

	require.NoError(t, g.OnMmOrderBookUpdated(1_000, 100, 101, 1, true))
	require.NoError(t, g.OnTriggerUp(10_000, 1))
	require.NoError(t, g.OnMmOrderBookUpdated(35_000, 100, 103, 1, false))
	require.Equal(t, lagStateWaitingTight, g.CurrentStateID())

	// The initial timeout is dead; only the full-response one is armed.
	sched.Advance(10_000 + initialResponseTimeoutNs)
	assert.Equal(t, lagStateWaitingTight, g.CurrentStateID())

	sched.Advance(35_000 + fullResponseTimeoutNs)
	assert.Equal(t, lagStateError, g.CurrentStateID())
}

func TestIssuerLagAbandonsWhenTargetSpreadMoves(t *testing.T) {
	g, _, r := newLagFixture()

	require.NoError(t, g.OnMmOrderBookUpdated(1_000, 100, 101, 1, true))
	require.NoError(t, g.OnTriggerUp(10_000, 1))
	require.NoError(t, g.OnMmOrderBookUpdated(35_000, 100, 103, 1, false))
	require.Equal(t, lagStateWaitingTight, g.CurrentStateID())

	// The target spread shifted; the measurement ends without a smoothing
	// sample, and the quote is tight so the machine lands back in tight.
	require.NoError(t, g.OnMmOrderBookUpdated(50_000, 102, 103, 2, true))
	assert.Equal(t, lagStateTight, g.CurrentStateID())
	assert.Empty(t, r.smoothings)
}

func TestIssuerLagResetAbandonsMeasurement(t *testing.T) {
	g, sched, r := newLagFixture()

	require.NoError(t, g.OnMmOrderBookUpdated(1_000, 100, 101, 1, true))
	require.NoError(t, g.OnTriggerUp(10_000, 1))
	require.Equal(t, lagStateWaitingAsk, g.CurrentStateID())

	g.Reset()
	assert.Equal(t, lagStateError, g.CurrentStateID())

	// The armed timeout was cancelled along with the measurement.
	sched.Advance(10_000 + initialResponseTimeoutNs)
	assert.Empty(t, r.lags)
	assert.Equal(t, lagStateError, g.CurrentStateID())
}
