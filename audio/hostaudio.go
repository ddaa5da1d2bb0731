//go:build hostaudio

// Host soundcard backend for audio.Frontend, used by cmd/dsp when built
// with -tags hostaudio to exercise the DSP audio loop against a real sound
// card instead of the embedded codec.
package audio

import (
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortaudioFrontend drives a host soundcard via gordonklaus/portaudio,
// copying one block at a time between the portaudio capture/playback
// callbacks and Loop's Fill/Drain calls. in/out fields are interleaved
// stereo float32, the type portaudio's streams want; Loop's int32 buffers
// are converted at the boundary.
type PortaudioFrontend struct {
	capture, playback *portaudio.Stream

	mu            sync.Mutex
	captureBuf    []float32
	playbackBuf   []float32
}

// OpenPortaudioFrontend opens the default input/output devices at
// sampleRate with blockLen stereo sample pairs per buffer.
func OpenPortaudioFrontend(sampleRate float64, blockLen int) (*PortaudioFrontend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	in, err := portaudio.DefaultInputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	out, err := portaudio.DefaultOutputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	f := &PortaudioFrontend{
		captureBuf:  make([]float32, blockLen*2),
		playbackBuf: make([]float32, blockLen*2),
	}

	capParams := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   in,
			Channels: 2,
			Latency:  in.DefaultLowInputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: blockLen,
	}
	capStream, err := portaudio.OpenStream(capParams, f.captureBuf)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	playParams := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   out,
			Channels: 2,
			Latency:  out.DefaultLowOutputLatency,
		},
		SampleRate:      sampleRate,
		FramesPerBuffer: blockLen,
	}
	playStream, err := portaudio.OpenStream(playParams, f.playbackBuf)
	if err != nil {
		capStream.Close()
		portaudio.Terminate()
		return nil, err
	}

	f.capture = capStream
	f.playback = playStream

	if err := capStream.Start(); err != nil {
		return nil, err
	}
	if err := playStream.Start(); err != nil {
		return nil, err
	}
	return f, nil
}

// Fill reads the most recent capture block, converting float32 to the
// loop's int32 sample representation.
func (f *PortaudioFrontend) Fill(in []int32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = f.capture.Read()
	n := len(in)
	if n > len(f.captureBuf) {
		n = len(f.captureBuf)
	}
	for i := 0; i < n; i++ {
		in[i] = int32(f.captureBuf[i] * (1 << 24))
	}
	return n / 2
}

// Drain converts out back to float32 and writes it to the playback stream.
func (f *PortaudioFrontend) Drain(out []int32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(out)
	if n > len(f.playbackBuf) {
		n = len(f.playbackBuf)
	}
	for i := 0; i < n; i++ {
		f.playbackBuf[i] = float32(out[i]) / (1 << 24)
	}
	_ = f.playback.Write()
}

// Close stops both streams and releases portaudio.
func (f *PortaudioFrontend) Close() error {
	if err := f.capture.Stop(); err != nil {
		return err
	}
	if err := f.playback.Stop(); err != nil {
		return err
	}
	if err := f.capture.Close(); err != nil {
		return err
	}
	if err := f.playback.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
