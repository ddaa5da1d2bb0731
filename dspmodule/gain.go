package dspmodule

import "freetribe/x/mathx"

// Gain is a minimal example Module: one parameter, a linear output level,
// applied identically to every sample of the interleaved stereo stream.
// It exists to give the six-function ABI a non-default implementation to
// exercise end to end; the concrete DSP algorithms the ABI is meant to
// host are otherwise out of scope.
type Gain struct {
	level uint16 // Q16: 0 = silence, 65535 = unity
}

// NewGain returns a Gain module at unity level.
func NewGain() *Gain { return &Gain{level: 65535} }

func (g *Gain) Init() error { return nil }

// Process scales every sample by level/65535 in Q16 fixed point, via a
// 64-bit intermediate so it is exact for the full int32 sample range
// LerpU16/MapU16 can't represent directly (both are uint16-domain).
func (g *Gain) Process(in, out []int32) {
	level := int64(g.level)
	for i, s := range in {
		out[i] = int32((int64(s) * level) / 65535)
	}
}

// SetParam accepts a raw i32 in [0, 16383] (this module's own param-value
// range) and maps it onto the Q16 gain level via mathx.MapU16.
func (g *Gain) SetParam(index uint16, value int32) {
	if index != 0 {
		return
	}
	if value < 0 {
		value = 0
	}
	if value > 16383 {
		value = 16383
	}
	g.level = mathx.MapU16(uint16(value), 0, 16383, 0, 65535)
}

func (g *Gain) GetParam(index uint16) int32 {
	if index != 0 {
		return 0
	}
	return int32(mathx.MapU16(g.level, 0, 65535, 0, 16383))
}

func (g *Gain) ParamCount() uint32 { return 1 }

func (g *Gain) ParamName(index uint16, buf []byte) int {
	if len(buf) == 0 {
		return 0
	}
	if index != 0 {
		buf[0] = 0
		return 1
	}
	n := copy(buf, "level")
	if n < len(buf) {
		buf[n] = 0
		n++
	}
	return n
}
