//go:build !tinygo

package transport

import (
	"fmt"

	"github.com/pkg/term"
)

// HostSerial opens a raw-mode serial device on a Linux bench rig and
// presents it as a Link — the panel-MCU and MIDI-TRS byte streams run over
// this when developing or testing against real hardware from a host build.
type HostSerial struct {
	t *term.Term
}

// OpenHostSerial opens path at baud in raw mode. Supported baud rates match
// standard UART speeds; an unsupported value is an error rather than a
// silent fallback.
func OpenHostSerial(path string, baud int) (*HostSerial, error) {
	t, err := term.Open(path, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", path, err)
	}
	switch baud {
	case 0:
	case 1200, 2400, 4800, 9600, 19200, 31250, 38400, 57600, 115200:
		if err := t.SetSpeed(baud); err != nil {
			t.Close()
			return nil, fmt.Errorf("transport: set speed %d on %s: %w", baud, path, err)
		}
	default:
		t.Close()
		return nil, fmt.Errorf("transport: unsupported baud %d", baud)
	}
	return &HostSerial{t: t}, nil
}

func (h *HostSerial) Read(p []byte) (int, error)  { return h.t.Read(p) }
func (h *HostSerial) Write(p []byte) (int, error) { return h.t.Write(p) }
func (h *HostSerial) Close() error                { return h.t.Close() }
