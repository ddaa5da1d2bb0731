// Package syscalls implements spec §4.K: the kernel's syscall jump table,
// the mechanism a separately-linked user application uses to call back
// into kernel services (print, put_pixel, fill_frame, set_led, delay
// start/test, register_callback, shutdown) without linking against the
// kernel directly.
//
// The original is a fixed pointer at a known flash address holding a
// pointer to a function that returns the jump table pointer, so the user
// application binary can be rebuilt without relinking the kernel. This
// module has no separately-linked binaries to decouple, so the same
// indirection is modeled as a package-level injection point — the same
// shape services/bridge uses for its UARTDial hook — rather than an actual
// fixed memory address.
package syscalls

import "freetribe/errcode"

// Index identifies one syscall's fixed table slot. The table is
// append-only at these indices for ABI stability; adding a new syscall
// means adding a new Index constant after the last one, never reordering
// or reusing an index.
type Index int

const (
	Print Index = iota
	PutPixel
	FillFrame
	SetLED
	StartDelay
	TestDelay
	RegisterCallback
	Shutdown

	count // sentinel; not callable
)

// Services is the concrete set of kernel services a user application may
// invoke. Each method corresponds to one Index slot in that order.
type Services interface {
	Print(s string)
	PutPixel(x, y int, color uint32)
	FillFrame(color uint32)
	SetLED(index int, on bool)
	StartDelay(durationUs uint32) DelayHandle
	TestDelay(h DelayHandle) (expired bool)
	RegisterCallback(event int, fn func())
	Shutdown()
}

// DelayHandle identifies an in-flight delay started via StartDelay, opaque
// to the user application — mirroring the Delay value type's ownership:
// the kernel, not the caller, holds the actual Delay state.
type DelayHandle int

// Table is the jump table: one method per Index slot, each forwarding to
// the installed Services. A nil Table, or one built with a nil Services,
// stands in for the original's "unused entries are null" rule — every call
// is a no-op returning errcode.UnknownCapability rather than a panic, since
// a real jump to a null pointer would fault but this module has no such
// hardware boundary to reproduce.
type Table struct {
	svc Services
}

// NewTable builds a jump table backed by svc. Every Index slot is
// satisfied by one Services method; there are no null entries once a
// Services implementation is installed.
func NewTable(svc Services) *Table {
	return &Table{svc: svc}
}

// JumpTable is the injection point a user-application harness calls to
// obtain the installed jump table, mirroring services/bridge's
// package-level `var UARTDial func(...)` hook: kernel init sets this once,
// and anything acting as "the user application" dereferences it rather
// than importing kernel internals directly.
var JumpTable func() *Table

// Installed reports whether the jump table has been set up, the
// user-application-facing analogue of checking the fixed pointer for nil
// before dereferencing it.
func Installed() bool { return JumpTable != nil }

// Print calls Services.Print through the table, or returns
// errcode.UnknownCapability if no table is installed.
func (t *Table) Print(s string) errcode.Code {
	if t == nil || t.svc == nil {
		return errcode.UnknownCapability
	}
	t.svc.Print(s)
	return errcode.Success
}

func (t *Table) PutPixel(x, y int, color uint32) errcode.Code {
	if t == nil || t.svc == nil {
		return errcode.UnknownCapability
	}
	t.svc.PutPixel(x, y, color)
	return errcode.Success
}

func (t *Table) FillFrame(color uint32) errcode.Code {
	if t == nil || t.svc == nil {
		return errcode.UnknownCapability
	}
	t.svc.FillFrame(color)
	return errcode.Success
}

func (t *Table) SetLED(index int, on bool) errcode.Code {
	if t == nil || t.svc == nil {
		return errcode.UnknownCapability
	}
	t.svc.SetLED(index, on)
	return errcode.Success
}

func (t *Table) StartDelay(durationUs uint32) (DelayHandle, errcode.Code) {
	if t == nil || t.svc == nil {
		return 0, errcode.UnknownCapability
	}
	return t.svc.StartDelay(durationUs), errcode.Success
}

func (t *Table) TestDelay(h DelayHandle) (bool, errcode.Code) {
	if t == nil || t.svc == nil {
		return false, errcode.UnknownCapability
	}
	return t.svc.TestDelay(h), errcode.Success
}

func (t *Table) RegisterCallback(event int, fn func()) errcode.Code {
	if t == nil || t.svc == nil {
		return errcode.UnknownCapability
	}
	t.svc.RegisterCallback(event, fn)
	return errcode.Success
}

func (t *Table) Shutdown() errcode.Code {
	if t == nil || t.svc == nil {
		return errcode.UnknownCapability
	}
	t.svc.Shutdown()
	return errcode.Success
}
