//go:build tinygo

package transport

import (
	"context"

	"github.com/jangala-dev/tinygo-uartx/uartx"
)

// TinygoUART adapts a tinygo-uartx ring-buffered UART to the Link interface,
// backing the panel-MCU and MIDI-TRS byte streams on the embedded target.
type TinygoUART struct {
	u *uartx.UART
}

// OpenTinygoUART configures u at baud with 8N1 framing (panel MCU and MIDI
// TRS both run fixed framing; only the baud differs, 31250 for MIDI).
func OpenTinygoUART(u *uartx.UART, baud uint32) (*TinygoUART, error) {
	if err := u.Configure(uartx.UARTConfig{}); err != nil {
		return nil, err
	}
	u.SetBaudRate(baud)
	if err := u.SetFormat(8, 1, uartx.ParityNone); err != nil {
		return nil, err
	}
	return &TinygoUART{u: u}, nil
}

func (t *TinygoUART) Read(p []byte) (int, error)  { return t.u.Read(p) }
func (t *TinygoUART) Write(p []byte) (int, error) { return t.u.Write(p) }

// RecvSomeContext exposes the underlying cancellable receive tinygo-uartx
// provides, for a read loop that must also observe shutdown.
func (t *TinygoUART) RecvSomeContext(ctx context.Context, p []byte) (int, error) {
	return t.u.RecvSomeContext(ctx, p)
}
