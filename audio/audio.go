// Package audio implements spec §4.I: the DSP audio block loop. Two
// simulated DMA buffers stand in for the real SPORT/DMA pair; a Frontend
// supplies them (a host soundcard via hostaudio.go, or a synthetic
// generator for tests). The cycle-counting/profile snapshot ordering
// follows knl_profile.c exactly: frame_end_cycles is snapshotted before
// frame_received is set, frame_start_cycles immediately after.
package audio

import (
	"context"
	"sync"
	"sync/atomic"

	"freetribe/dspmodule"
	"freetribe/errcode"
)

// Frontend delivers one block of interleaved stereo input samples and
// collects one block of output samples per call, standing in for the
// codec's DMA buffers.
type Frontend interface {
	// Fill copies the next input block into in and returns the number of
	// sample pairs written (<= len(in)/2).
	Fill(in []int32) int
	// Drain consumes the output block produced for the frame just ended.
	Drain(out []int32)
}

// Clock returns a monotonically increasing cycle count. Real hardware
// reads a free-running cycle counter register; tests and the host backend
// use a plain counter.
type Clock func() uint32

// Profile is the {period, cycles} pair spec §4.D's GET_PROFILE/PROFILE
// messages carry: period is the cycle count between successive audio
// frames, cycles is how long the last Process call took.
type Profile struct {
	Period uint32
	Cycles uint32
}

// Loop is the DSP audio block loop: it polls a frame-received flag a
// simulated RX-DMA-done ISR sets, and between cycle-counter reads calls
// the installed Module's Process once per frame.
type Loop struct {
	frontend Frontend
	clock    Clock
	blockLen int // sample pairs per block

	mu     sync.Mutex
	module dspmodule.Module

	frameReceived    atomic.Bool
	prevFrameEnd     atomic.Uint32
	period           atomic.Uint32
	lastCycles       atomic.Uint32
	haveFirstFrame   atomic.Bool

	in, out []int32
}

// New returns a Loop driving frontend at blockLen sample pairs per frame,
// with dspmodule.Default installed until SetModule is called.
func New(frontend Frontend, clock Clock, blockLen int) *Loop {
	return &Loop{
		frontend: frontend,
		clock:    clock,
		blockLen: blockLen,
		module:   dspmodule.Default{},
		in:       make([]int32, blockLen*2),
		out:      make([]int32, blockLen*2),
	}
}

// SetModule installs the active DSP module. Safe to call while the loop is
// running; the next frame picks it up.
func (l *Loop) SetModule(m dspmodule.Module) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.module = m
}

// OnFrame simulates the RX-DMA-done ISR: copy the DMA-filled buffer into
// codec_in, copy codec_out into the TX buffer, snapshot frame_end_cycles,
// set frame_received, then snapshot frame_start_cycles — in that exact
// order, per spec §4.I. The inter-frame period is the delta between this
// call's frame_end_cycles and the previous call's, matching the source's
// "period between this and the next frame_end is the inter-frame period".
func (l *Loop) OnFrame() {
	l.frontend.Fill(l.in)
	l.frontend.Drain(l.out)

	frameEnd := l.clock()
	if l.haveFirstFrame.Load() {
		l.period.Store(frameEnd - l.prevFrameEnd.Load())
	} else {
		l.haveFirstFrame.Store(true)
	}
	l.prevFrameEnd.Store(frameEnd)

	l.frameReceived.Store(true)
	_ = l.clock() // frame_start_cycles snapshot; not otherwise retained
}

// RunOnce is the main loop's poll-and-process step: if frame_received is
// set, call module.Process between cycle reads, record the delta, and
// clear the flag. It is a no-op, returning Success, if no frame is
// pending — the main loop is expected to call this every kernel
// iteration without blocking.
func (l *Loop) RunOnce(ctx context.Context) errcode.Code {
	if !l.frameReceived.CompareAndSwap(true, false) {
		return errcode.Success
	}

	l.mu.Lock()
	m := l.module
	l.mu.Unlock()

	start := l.clock()
	m.Process(l.in, l.out)
	end := l.clock()
	l.lastCycles.Store(end - start)
	return errcode.Success
}

// Stats returns the {period, cycles} pair from the most recent snapshots,
// exactly as GET_PROFILE reports them.
func (l *Loop) Stats() Profile {
	return Profile{
		Period: l.period.Load(),
		Cycles: l.lastCycles.Load(),
	}
}
