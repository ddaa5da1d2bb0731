package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK                Code = "ok"
	Busy              Code = "busy"
	Unsupported       Code = "unsupported"
	InvalidParams     Code = "invalid_params"
	InvalidPayload    Code = "invalid_payload"
	UnknownCapability Code = "unknown_capability"
	HALNotReady       Code = "hal_not_ready"
	InvalidTopic      Code = "invalid_topic"

	UnknownBus Code = "unknown_bus"
	BusInUse   Code = "bus_in_use"
	UnknownPin Code = "unknown_pin"
	PinInUse   Code = "pin_in_use"
	Timeout    Code = "timeout"

	Error Code = "error" // generic fallback

	// Task return-code taxonomy (spec §7). kernel.Task's TaskInit and Step
	// return one of these as a Code; kernel's errorCheck is the single point
	// that converts them into a state transition. Success and Warning both
	// leave the task in its current state; any other Code moves it to Error.
	Success             Code = "success"
	Warning             Code = "warning"
	TaskInitError       Code = "task_init_error"
	UnhandledStateError Code = "unhandled_state_error"
	MIDIBadChannelState Code = "midi_bad_channel_state"

	// Wire-level codes (protocol/transport).
	UnknownMessageType Code = "unknown_message_type"
	UnknownMessageID   Code = "unknown_message_id"
	RingFull           Code = "ring_full"
	DSPNeverAcked      Code = "dsp_never_acked"
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return string(e.C) + ": " + e.Msg
	}
	return string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps low-level driver errors to a Code.
// Extend the heuristics per platform/driver.
func MapDriverErr(err error) Code {
	if err == nil {
		return OK
	}
	return Error
}
