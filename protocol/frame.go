// Package protocol implements the framed-message codec and dispatcher that
// sit on top of a transport.Device: Frame encode/decode (frame.go), the
// MODULE/SYSTEM message catalog and request/response correlation
// (dispatcher.go, pending.go), and a payload-assertion helper (reply.go)
// in the style of services/hal/internal/core's As[T].
package protocol

import (
	"encoding/binary"
)

// StartByte marks the beginning of a frame. Any other byte seen while the
// parser is in StateStart is discarded silently — there is no escaping or
// byte stuffing, so a spurious StartByte inside a payload can desync the
// parser for at most one message.
const StartByte = 0xF0

// MaxPayloadLen is the largest representable payload — payload_length is a
// single byte, so overlength payloads are impossible by representation.
const MaxPayloadLen = 255

// MsgType is the top-level message space selector.
type MsgType byte

const (
	Module MsgType = 0x00
	System MsgType = 0x01
)

// Frame is one decoded wire message.
type Frame struct {
	Type    MsgType
	ID      byte
	Payload []byte
}

// Encode writes the four header bytes followed by the payload to w, exactly
// as they appear on the wire. w typically enqueues each byte to a
// transport.Device's TX ring.
func Encode(f Frame, w func(b byte) bool) bool {
	if len(f.Payload) > MaxPayloadLen {
		return false
	}
	if !w(StartByte) {
		return false
	}
	if !w(byte(f.Type)) {
		return false
	}
	if !w(f.ID) {
		return false
	}
	if !w(byte(len(f.Payload))) {
		return false
	}
	for _, b := range f.Payload {
		if !w(b) {
			return false
		}
	}
	return true
}

// parseState is the five-state machine §4.C names: Start/Type/Id/Length/
// Payload.
type parseState int

const (
	stateStart parseState = iota
	stateType
	stateID
	stateLength
	statePayload
)

// Dispatch is invoked inline, in the same call to Parser.Feed that completed
// a frame — never on the next byte — so a message completed during a quiet
// period on the wire is not left sitting undispatched.
type Dispatch func(Frame)

// Parser is one endpoint's incoming byte-stream decoder. It is not
// goroutine-safe; a Parser belongs to exactly one consumer of one
// transport.Device's RX side.
type Parser struct {
	state   parseState
	msgType MsgType
	msgID   byte
	length  byte
	buf     [MaxPayloadLen]byte
	count   byte

	dispatch Dispatch
}

// NewParser returns a Parser that invokes dispatch on every completed frame.
func NewParser(dispatch Dispatch) *Parser {
	return &Parser{dispatch: dispatch}
}

// Feed processes one incoming byte. On dispatcher error the parser still
// returns to Start — the protocol has no NAK; resynchronization is implicit
// in returning to Start regardless of outcome.
func (p *Parser) Feed(b byte) {
	switch p.state {
	case stateStart:
		if b == StartByte {
			p.state = stateType
		}
		// Any other byte: stay in Start, discard silently.

	case stateType:
		p.msgType = MsgType(b)
		p.state = stateID

	case stateID:
		p.msgID = b
		p.state = stateLength

	case stateLength:
		p.length = b
		p.count = 0
		if p.length == 0 {
			p.dispatchAndReset()
		} else {
			p.state = statePayload
		}

	case statePayload:
		p.buf[p.count] = b
		p.count++
		if p.count >= p.length {
			p.dispatchAndReset()
		}
	}
}

func (p *Parser) dispatchAndReset() {
	f := Frame{
		Type:    p.msgType,
		ID:      p.msgID,
		Payload: append([]byte{}, p.buf[:p.length]...),
	}
	p.state = stateStart
	if p.dispatch != nil {
		p.dispatch(f)
	}
}

// --- little-endian payload field helpers ---

func putU16(dst []byte, v uint16) { binary.LittleEndian.PutUint16(dst, v) }
func getU16(src []byte) uint16    { return binary.LittleEndian.Uint16(src) }
func putU32(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) }
func getU32(src []byte) uint32    { return binary.LittleEndian.Uint32(src) }
func putI32(dst []byte, v int32)  { putU32(dst, uint32(v)) }
func getI32(src []byte) int32     { return int32(getU32(src)) }
