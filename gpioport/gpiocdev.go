// Package gpioport backs spec §4.D's SYSTEM/GET_PORT_STATE and
// SYSTEM/SET_PORT_STATE messages with real GPIO lines on a host Linux bench
// rig, via the kernel gpiochip character device — standing in for the
// three 16-bit GPIO port registers (port_f, port_g, port_h) the DSP reads
// and writes directly on real hardware.
package gpioport

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// OpenPort opens chipName (e.g. "gpiochip0") and requests portWidth line
// offsets as either inputs or outputs, depending on asOutput.
func OpenPort(chipName string, offsets []int, asOutput bool) (*Port, error) {
	if len(offsets) != portWidth {
		return nil, fmt.Errorf("gpioport: need %d line offsets, got %d", portWidth, len(offsets))
	}
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, err
	}
	defer chip.Close()

	opt := gpiocdev.AsInput
	if asOutput {
		opt = gpiocdev.AsOutput()
	}
	lines, err := chip.RequestLines(offsets, opt)
	if err != nil {
		return nil, err
	}
	return &Port{lines: lines}, nil
}

// OpenBank opens all three port registers on chipName, using consecutive
// offset ranges f, g, h (each portWidth long).
func OpenBank(chipName string, f, g, h []int, asOutput bool) (*Bank, error) {
	pf, err := OpenPort(chipName, f, asOutput)
	if err != nil {
		return nil, err
	}
	pg, err := OpenPort(chipName, g, asOutput)
	if err != nil {
		pf.Close()
		return nil, err
	}
	ph, err := OpenPort(chipName, h, asOutput)
	if err != nil {
		pf.Close()
		pg.Close()
		return nil, err
	}
	return &Bank{F: pf, G: pg, H: ph}, nil
}
