package transport

import "sync"

// SPIConn is the minimal transaction interface an SPI peripheral exposes:
// a full-duplex transfer of w out / r in, same length.
type SPIConn interface {
	Tx(w, r []byte) error
}

// SPIArbiter gates a shared SPI bus between the DSP protocol device and a
// second peripheral (on hardware that wires flash to the same bus) so their
// transactions never interleave. The original driver never finished this —
// see DESIGN.md's open-question note — but spec §5 requires it.
type SPIArbiter struct {
	mu   sync.Mutex
	conn SPIConn
}

// NewSPIArbiter wraps conn with a mutex gate.
func NewSPIArbiter(conn SPIConn) *SPIArbiter {
	return &SPIArbiter{conn: conn}
}

// Client returns a SPIConn bound to this arbiter; every Tx through it holds
// the shared mutex for the duration of the transaction.
func (a *SPIArbiter) Client() SPIConn { return arbiterClient{a} }

type arbiterClient struct{ a *SPIArbiter }

func (c arbiterClient) Tx(w, r []byte) error {
	c.a.mu.Lock()
	defer c.a.mu.Unlock()
	return c.a.conn.Tx(w, r)
}
