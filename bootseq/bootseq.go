// Package bootseq implements spec §4.E: the DSP boot sequencer state
// machine (Init -> AssertReset -> ReleaseReset -> Boot -> Run), its exact
// timings, and the boot-specific-vs-runtime SPI format switch. The boot
// image transfer is bulk and synchronous, bypassing transport.Device's TX
// ring entirely, since the loader expects uninterrupted bytes with nothing
// else sharing the bus.
package bootseq

import (
	"context"
	"fmt"
	"time"

	"freetribe/errcode"
)

// Minimum timings from spec §4.E, measured from the relevant edge.
const (
	ResetHold        = 2100 * time.Microsecond
	PostReleaseSettle = 1000 * time.Microsecond
)

// State is the sequencer's own state, distinct from kernel.State: the boot
// sequencer is itself a kernel.Task, and these are its task-local substates.
type State int

const (
	Init State = iota
	AssertReset
	ReleaseReset
	Boot
	Run
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case AssertReset:
		return "assert_reset"
	case ReleaseReset:
		return "release_reset"
	case Boot:
		return "boot"
	case Run:
		return "run"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ResetLine drives the DSP's reset GPIO — asserted (true) holds the DSP in
// reset, per dev_dsp_reset's "true puts DSP in reset" convention.
type ResetLine interface {
	SetReset(asserted bool) error
}

// SPIFormatter switches the boot SPI link between the format used to ship
// the loader image and the runtime format used for command traffic. Real
// hardware reprograms clock polarity/word length/frequency; this interface
// abstracts that switch away from any concrete SPI driver.
type SPIFormatter interface {
	SetBootFormat() error
	SetRuntimeFormat() error
}

// BulkWriter performs the synchronous, uninterrupted boot-image transfer —
// it does not go through transport.Device's TX ring, since nothing else
// may share the bus mid-image per spec §4.E.
type BulkWriter interface {
	WriteAll(p []byte) error
}

// Sequencer drives the DSP boot state machine. It implements kernel.Task
// so it can run as one cooperative task alongside everything else.
type Sequencer struct {
	reset   ResetLine
	format  SPIFormatter
	bulk    BulkWriter
	image   []byte
	sleep   func(time.Duration)

	state        State
	stateEntered time.Time
}

// New returns a Sequencer that will ship image as the boot blob (the
// compiled-in bfin_ldr[] equivalent) once started.
func New(reset ResetLine, format SPIFormatter, bulk BulkWriter, image []byte) *Sequencer {
	return &Sequencer{
		reset:  reset,
		format: format,
		bulk:   bulk,
		image:  image,
		sleep:  time.Sleep,
		state:  Init,
	}
}

func (s *Sequencer) Name() string { return "dsp-boot" }

// TaskInit transitions Init -> AssertReset on first call; the kernel's Init
// state already retries on failure, so TaskInit itself need not loop.
func (s *Sequencer) TaskInit(ctx context.Context) errcode.Code {
	s.enter(AssertReset)
	return errcode.Success
}

// Step advances exactly one state transition's worth of work per call,
// consistent with spec §4.F's run-to-completion, never-block rule:
// AssertReset and ReleaseReset sleep for bounded, known-short durations
// (sub-millisecond/low-millisecond) rather than blocking indefinitely, and
// Boot performs one bulk synchronous write before returning.
func (s *Sequencer) Step(ctx context.Context) errcode.Code {
	switch s.state {
	case AssertReset:
		if err := s.reset.SetReset(true); err != nil {
			return errcode.Error
		}
		s.sleep(ResetHold)
		if err := s.reset.SetReset(false); err != nil {
			return errcode.Error
		}
		s.enter(ReleaseReset)

	case ReleaseReset:
		s.sleep(PostReleaseSettle)
		s.enter(Boot)

	case Boot:
		if err := s.format.SetBootFormat(); err != nil {
			return errcode.Error
		}
		if err := s.bulk.WriteAll(s.image); err != nil {
			return errcode.Error
		}
		if err := s.format.SetRuntimeFormat(); err != nil {
			return errcode.Error
		}
		// No explicit handshake here: the first SYSTEM/READY message
		// received from the DSP (handled by protocol.Dispatcher) is the
		// ack that boot completed, per spec §4.E.
		s.enter(Run)

	case Run:
		// Steady state; nothing to do per-iteration once booted.

	default:
		return errcode.Error
	}
	return errcode.Success
}

func (s *Sequencer) ErrorHook() {}

// State reports the sequencer's current boot-state for diagnostics.
func (s *Sequencer) State() State { return s.state }

func (s *Sequencer) enter(st State) {
	s.state = st
	s.stateEntered = time.Now()
}
