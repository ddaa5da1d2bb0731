package audio

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freetribe/dspmodule"
	"freetribe/errcode"
)

type silentFrontend struct{}

func (silentFrontend) Fill(in []int32) int { return len(in) / 2 }
func (silentFrontend) Drain(out []int32)   {}

// fakeClock advances by a fixed step on each call, standing in for a
// free-running cycle counter.
func fakeClock(step *uint32) Clock {
	var cycles uint32
	return func() uint32 {
		cycles += *step
		return cycles
	}
}

func TestRunOnceIsNoOpUntilFrameReceived(t *testing.T) {
	step := uint32(1)
	l := New(silentFrontend{}, fakeClock(&step), 4)

	calls := 0
	l.SetModule(countingModule{calls: &calls})

	require.Equal(t, errcode.Success, l.RunOnce(context.Background()))
	assert.Equal(t, 0, calls, "Process must not run before OnFrame sets frame_received")
}

func TestOnFrameThenRunOnceInvokesProcessExactlyOnce(t *testing.T) {
	step := uint32(5)
	l := New(silentFrontend{}, fakeClock(&step), 4)
	calls := 0
	l.SetModule(countingModule{calls: &calls})

	l.OnFrame()
	l.RunOnce(context.Background())
	assert.Equal(t, 1, calls)

	// Flag is cleared; a second RunOnce without a new OnFrame does nothing.
	l.RunOnce(context.Background())
	assert.Equal(t, 1, calls)
}

// TestProfileRatioWithinUnitRange is spec scenario S5: cycles <= period and
// cycles/period in [0, 1].
func TestProfileRatioWithinUnitRange(t *testing.T) {
	step := uint32(1)
	l := New(silentFrontend{}, fakeClock(&step), 4)
	l.SetModule(dspmodule.Default{})

	l.OnFrame()
	l.RunOnce(context.Background())
	l.OnFrame() // second frame establishes a period delta
	l.RunOnce(context.Background())

	stats := l.Stats()
	require.Greater(t, stats.Period, uint32(0))
	assert.LessOrEqual(t, stats.Cycles, stats.Period)
	ratio := float64(stats.Cycles) / float64(stats.Period)
	assert.GreaterOrEqual(t, ratio, 0.0)
	assert.LessOrEqual(t, ratio, 1.0)
}

type countingModule struct {
	dspmodule.Default
	calls *int
}

func (c countingModule) Process(in, out []int32) { *c.calls++ }
