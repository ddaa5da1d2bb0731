//go:build hostaudio

package main

import (
	"log"
	"time"

	"freetribe/audio"
)

// newFrontend opens the default host soundcard via audio.PortaudioFrontend
// when built with -tags hostaudio, so cmd/dsp can be exercised against
// real audio hardware instead of silence.
func newFrontend(blockLen int) audio.Frontend {
	f, err := audio.OpenPortaudioFrontend(defaultSampleRate, blockLen)
	if err != nil {
		log.Fatalf("dsp: opening portaudio frontend: %v", err)
	}
	return f
}

func hardwareClock() audio.Clock {
	start := time.Now()
	return func() uint32 {
		return uint32(time.Since(start).Nanoseconds())
	}
}
