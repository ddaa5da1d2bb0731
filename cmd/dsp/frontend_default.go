//go:build !hostaudio

package main

import (
	"time"

	"freetribe/audio"
)

// newFrontend returns a silent audio.Frontend for a plain host build: with
// no soundcard attached, the audio loop still needs something to call
// Fill/Drain against so it can be exercised without -tags hostaudio (see
// audio/hostaudio.go for the portaudio-backed alternative).
func newFrontend(blockLen int) audio.Frontend { return silentFrontend{} }

type silentFrontend struct{}

func (silentFrontend) Fill(in []int32) int { return len(in) / 2 }
func (silentFrontend) Drain(out []int32)   {}

// hardwareClock stands in for the DSP's free-running cycle counter
// register on a host build, counting nanoseconds since process start
// rather than CPU cycles; GET_PROFILE's period/cycles fields are still
// meaningful as relative timings even though the units differ from real
// hardware.
func hardwareClock() audio.Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Nanoseconds())
	}
}
