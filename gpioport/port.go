package gpioport

import "freetribe/util"

// lineGroup is the subset of *gpiocdev.Lines a Port needs; extracted so
// the bit-packing logic in Port can be tested without a real gpiochip.
type lineGroup interface {
	Values(values []int) error
	SetValues(values map[int]int) error
	Close() error
}

// portWidth is the number of lines making up one 16-bit port register.
const portWidth = 16

// Port drives one 16-bit GPIO port register as a block of portWidth lines
// on a single gpiochip, read and written together as a unit to match the
// wire protocol's per-port u16 granularity.
type Port struct {
	lines lineGroup
}

// Read packs the current state of all portWidth lines into a u16, bit i
// corresponding to offset i in the request passed to OpenPort.
func (p *Port) Read() (uint16, error) {
	vals := make([]int, portWidth)
	if err := p.lines.Values(vals); err != nil {
		return 0, err
	}
	var v uint16
	for i, bit := range vals {
		if bit != 0 {
			v |= 1 << uint(i)
		}
	}
	return v, nil
}

// Write drives all portWidth lines from the bits of v.
func (p *Port) Write(v uint16) error {
	vals := make(map[int]int, portWidth)
	for i := 0; i < portWidth; i++ {
		vals[i] = util.BoolToInt(v&(1<<uint(i)) != 0)
	}
	return p.lines.SetValues(vals)
}

// Close releases the underlying line request.
func (p *Port) Close() error { return p.lines.Close() }

// Bank groups the three port registers the protocol's PORT_STATE/
// SET_PORT_STATE messages carry as one unit, so the dispatcher has a
// single place to read/write all three together.
type Bank struct {
	F, G, H *Port
}

// ReadAll reads all three ports in port_f/port_g/port_h order, matching
// protocol.PortStatePayload's field order.
func (b *Bank) ReadAll() (f, g, h uint16, err error) {
	if f, err = b.F.Read(); err != nil {
		return
	}
	if g, err = b.G.Read(); err != nil {
		return
	}
	h, err = b.H.Read()
	return
}

// WriteAll writes all three ports in one call.
func (b *Bank) WriteAll(f, g, h uint16) error {
	if err := b.F.Write(f); err != nil {
		return err
	}
	if err := b.G.Write(g); err != nil {
		return err
	}
	return b.H.Write(h)
}

// Close releases all three underlying ports.
func (b *Bank) Close() error {
	for _, err := range []error{b.F.Close(), b.G.Close(), b.H.Close()} {
		if err != nil {
			return err
		}
	}
	return nil
}
