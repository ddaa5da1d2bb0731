//go:build tinygo

package transport

import (
	"tinygo.org/x/drivers"
)

// TinygoSPI adapts a tinygo.org/x/drivers.SPI to SPIConn, backing the DSP
// link and the shared flash chip behind an SPIArbiter on the embedded
// target.
type TinygoSPI struct {
	bus drivers.SPI
}

// NewTinygoSPI wraps an already-configured SPI peripheral.
func NewTinygoSPI(bus drivers.SPI) *TinygoSPI { return &TinygoSPI{bus: bus} }

func (s *TinygoSPI) Tx(w, r []byte) error { return s.bus.Tx(w, r) }
