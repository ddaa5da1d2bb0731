package protocol

import (
	"freetribe/errcode"
)

// Module message IDs (msg_type == Module).
const (
	GetParamValue byte = 0x00
	SetParamValue byte = 0x01
	ParamValue    byte = 0x02
	GetParamName  byte = 0x03
	ParamName     byte = 0x04
)

// System message IDs (msg_type == System).
const (
	CheckReady   byte = 0x00
	Ready        byte = 0x01
	GetPortState byte = 0x02
	SetPortState byte = 0x03
	PortState    byte = 0x04
	GetProfile   byte = 0x05
	Profile      byte = 0x06
)

// MaxParamNameLength bounds PARAM_NAME's NUL-terminated, NUL-padded name
// field (spec §3, DSP module handle).
const MaxParamNameLength = 16

// GetParamValuePayload is MODULE/GET_PARAM_VALUE's payload.
type GetParamValuePayload struct {
	ModuleID   uint16
	ParamIndex uint16
}

func (p GetParamValuePayload) Encode() []byte {
	b := make([]byte, 4)
	putU16(b[0:2], p.ModuleID)
	putU16(b[2:4], p.ParamIndex)
	return b
}

func decodeGetParamValue(b []byte) (GetParamValuePayload, bool) {
	if len(b) < 4 {
		return GetParamValuePayload{}, false
	}
	return GetParamValuePayload{ModuleID: getU16(b[0:2]), ParamIndex: getU16(b[2:4])}, true
}

// ParamValuePayload is MODULE/SET_PARAM_VALUE and MODULE/PARAM_VALUE's
// payload shape.
type ParamValuePayload struct {
	ModuleID   uint16
	ParamIndex uint16
	Value      int32
}

func (p ParamValuePayload) Encode() []byte {
	b := make([]byte, 8)
	putU16(b[0:2], p.ModuleID)
	putU16(b[2:4], p.ParamIndex)
	putI32(b[4:8], p.Value)
	return b
}

func decodeParamValue(b []byte) (ParamValuePayload, bool) {
	if len(b) < 8 {
		return ParamValuePayload{}, false
	}
	return ParamValuePayload{
		ModuleID:   getU16(b[0:2]),
		ParamIndex: getU16(b[2:4]),
		Value:      getI32(b[4:8]),
	}, true
}

// GetParamNamePayload is MODULE/GET_PARAM_NAME's payload.
type GetParamNamePayload struct {
	ModuleID   uint16
	ParamIndex uint16
}

func decodeGetParamName(b []byte) (GetParamNamePayload, bool) {
	if len(b) < 4 {
		return GetParamNamePayload{}, false
	}
	return GetParamNamePayload{ModuleID: getU16(b[0:2]), ParamIndex: getU16(b[2:4])}, true
}

// ParamNamePayload is MODULE/PARAM_NAME's payload; Name is NUL-padded to the
// wire's payload_length by Encode.
type ParamNamePayload struct {
	ModuleID   uint16
	ParamIndex uint16
	Name       string
}

func (p ParamNamePayload) Encode() []byte {
	name := p.Name
	if len(name) > MaxParamNameLength {
		name = name[:MaxParamNameLength]
	}
	b := make([]byte, 4+MaxParamNameLength)
	putU16(b[0:2], p.ModuleID)
	putU16(b[2:4], p.ParamIndex)
	copy(b[4:], name)
	return b
}

// PortStatePayload is SYSTEM/SET_PORT_STATE and SYSTEM/PORT_STATE's payload.
type PortStatePayload struct {
	PortF, PortG, PortH uint16
}

func (p PortStatePayload) Encode() []byte {
	b := make([]byte, 6)
	putU16(b[0:2], p.PortF)
	putU16(b[2:4], p.PortG)
	putU16(b[4:6], p.PortH)
	return b
}

func decodePortState(b []byte) (PortStatePayload, bool) {
	if len(b) < 6 {
		return PortStatePayload{}, false
	}
	return PortStatePayload{PortF: getU16(b[0:2]), PortG: getU16(b[2:4]), PortH: getU16(b[4:6])}, true
}

// ProfilePayload is SYSTEM/PROFILE's payload: period is the clock-cycle
// count between successive audio frames, cycles is the last process() call's
// cost. cycles/period in [0,1] is the instantaneous DSP load.
type ProfilePayload struct {
	Period uint32
	Cycles uint32
}

func (p ProfilePayload) Encode() []byte {
	b := make([]byte, 8)
	putU32(b[0:4], p.Period)
	putU32(b[4:8], p.Cycles)
	return b
}

func decodeProfile(b []byte) (ProfilePayload, bool) {
	if len(b) < 8 {
		return ProfilePayload{}, false
	}
	return ProfilePayload{Period: getU32(b[0:4]), Cycles: getU32(b[4:8])}, true
}

// Handlers groups the callbacks a Dispatcher invokes per message. Any nil
// handler makes that message silently dropped, same as an unknown msg_id.
type Handlers struct {
	OnGetParamValue func(GetParamValuePayload)
	OnSetParamValue func(ParamValuePayload)
	OnParamValue    func(ParamValuePayload)
	OnGetParamName  func(GetParamNamePayload)
	OnParamName     func(ParamNamePayload)

	OnCheckReady   func()
	OnReady        func()
	OnGetPortState func()
	OnSetPortState func(PortStatePayload)
	OnPortState    func(PortStatePayload)
	OnGetProfile   func()
	OnProfile      func(ProfilePayload)
}

// Dispatcher routes a decoded Frame to the matching Handlers callback and
// tracks request/response correlation via Pending. Unknown msg_type or
// msg_id is silently discarded, per spec §4.D.
type Dispatcher struct {
	h       Handlers
	Pending *Pending
}

// NewDispatcher returns a Dispatcher. Pass an initialized Pending only on
// the CPU side — the DSP side never issues requests that expect replies, so
// it tracks nothing.
func NewDispatcher(h Handlers, pending *Pending) *Dispatcher {
	return &Dispatcher{h: h, Pending: pending}
}

// Handle decodes f's payload per its Type/ID and invokes the matching
// handler. It is the function passed as a Parser's Dispatch.
func (d *Dispatcher) Handle(f Frame) errcode.Code {
	switch f.Type {
	case Module:
		return d.handleModule(f)
	case System:
		return d.handleSystem(f)
	default:
		return errcode.UnknownMessageType
	}
}

func (d *Dispatcher) handleModule(f Frame) errcode.Code {
	switch f.ID {
	case GetParamValue:
		p, ok := decodeGetParamValue(f.Payload)
		if !ok {
			return errcode.InvalidPayload
		}
		if d.h.OnGetParamValue != nil {
			d.h.OnGetParamValue(p)
		}
	case SetParamValue:
		p, ok := decodeParamValue(f.Payload)
		if !ok {
			return errcode.InvalidPayload
		}
		if d.h.OnSetParamValue != nil {
			d.h.OnSetParamValue(p)
		}
	case ParamValue:
		p, ok := decodeParamValue(f.Payload)
		if !ok {
			return errcode.InvalidPayload
		}
		if d.Pending != nil {
			d.Pending.Ack()
		}
		if d.h.OnParamValue != nil {
			d.h.OnParamValue(p)
		}
	case GetParamName:
		p, ok := decodeGetParamName(f.Payload)
		if !ok {
			return errcode.InvalidPayload
		}
		if d.h.OnGetParamName != nil {
			d.h.OnGetParamName(p)
		}
	case ParamName:
		name := f.Payload
		if len(name) < 4 {
			return errcode.InvalidPayload
		}
		p := ParamNamePayload{
			ModuleID:   getU16(name[0:2]),
			ParamIndex: getU16(name[2:4]),
			Name:       nulTrim(name[4:]),
		}
		if d.Pending != nil {
			d.Pending.Ack()
		}
		if d.h.OnParamName != nil {
			d.h.OnParamName(p)
		}
	default:
		return errcode.UnknownMessageID
	}
	return errcode.Success
}

func (d *Dispatcher) handleSystem(f Frame) errcode.Code {
	switch f.ID {
	case CheckReady:
		if d.h.OnCheckReady != nil {
			d.h.OnCheckReady()
		}
	case Ready:
		if d.Pending != nil {
			d.Pending.Ack()
		}
		if d.h.OnReady != nil {
			d.h.OnReady()
		}
	case GetPortState:
		if d.h.OnGetPortState != nil {
			d.h.OnGetPortState()
		}
	case SetPortState:
		p, ok := decodePortState(f.Payload)
		if !ok {
			return errcode.InvalidPayload
		}
		if d.h.OnSetPortState != nil {
			d.h.OnSetPortState(p)
		}
	case PortState:
		p, ok := decodePortState(f.Payload)
		if !ok {
			return errcode.InvalidPayload
		}
		if d.Pending != nil {
			d.Pending.Ack()
		}
		if d.h.OnPortState != nil {
			d.h.OnPortState(p)
		}
	case GetProfile:
		if d.h.OnGetProfile != nil {
			d.h.OnGetProfile()
		}
	case Profile:
		p, ok := decodeProfile(f.Payload)
		if !ok {
			return errcode.InvalidPayload
		}
		if d.Pending != nil {
			d.Pending.Ack()
		}
		if d.h.OnProfile != nil {
			d.h.OnProfile(p)
		}
	default:
		return errcode.UnknownMessageID
	}
	return errcode.Success
}

func nulTrim(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
