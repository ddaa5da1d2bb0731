package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTwoListenersEachInvokedOnce is spec scenario S6: two listeners
// subscribe to the same event ID, the payload [0x01, 0x02, 0x03] is
// published once, and both listeners see it exactly once.
func TestTwoListenersEachInvokedOnce(t *testing.T) {
	q := New(8)

	var a, b []byte
	aCalls, bCalls := 0, 0
	_, ok := q.Subscribe(PanelButton, func(ev Event) {
		a = append([]byte(nil), ev.Data...)
		aCalls++
	})
	require.True(t, ok)
	_, ok = q.Subscribe(PanelButton, func(ev Event) {
		b = append([]byte(nil), ev.Data...)
		bCalls++
	})
	require.True(t, ok)

	require.True(t, q.Publish(PanelButton, []byte{0x01, 0x02, 0x03}))
	q.Dispatch()

	assert.Equal(t, 1, aCalls)
	assert.Equal(t, 1, bCalls)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, a)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, b)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	q := New(8)
	calls := 0
	unsub, ok := q.Subscribe(Touchpad, func(Event) { calls++ })
	require.True(t, ok)

	q.Publish(Touchpad, []byte{1})
	q.Dispatch()
	assert.Equal(t, 1, calls)

	unsub()
	q.Publish(Touchpad, []byte{2})
	q.Dispatch()
	assert.Equal(t, 1, calls, "unsubscribed listener must not be invoked again")
}

func TestPublishDroppedWhenBacklogFull(t *testing.T) {
	q := New(2)
	require.True(t, q.Publish(MIDICCRx, []byte{1}))
	require.True(t, q.Publish(MIDICCRx, []byte{2}))
	assert.False(t, q.Publish(MIDICCRx, []byte{3}), "backlog at capacity must drop, not force")
}

func TestDispatchDeliversInPublishOrder(t *testing.T) {
	q := New(8)
	var seen []byte
	q.Subscribe(HeldButtons, func(ev Event) { seen = append(seen, ev.Data[0]) })

	q.Publish(HeldButtons, []byte{1})
	q.Publish(HeldButtons, []byte{2})
	q.Publish(HeldButtons, []byte{3})
	q.Dispatch()

	assert.Equal(t, []byte{1, 2, 3}, seen)
}

func TestListenersOnDifferentIDsAreIndependent(t *testing.T) {
	q := New(8)
	var encoderCalls, knobCalls int
	q.Subscribe(PanelEncoder, func(Event) { encoderCalls++ })
	q.Subscribe(PanelKnob, func(Event) { knobCalls++ })

	q.Publish(PanelEncoder, []byte{1})
	q.Dispatch()

	assert.Equal(t, 1, encoderCalls)
	assert.Equal(t, 0, knobCalls)
}
