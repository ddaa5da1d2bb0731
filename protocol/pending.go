package protocol

import "sync/atomic"

// Pending tracks the CPU-side pending_responses counter (spec §4.D): every
// call that expects a reply increments it; a matching reply decrements it.
// While nonzero, the DSP-SPI task periodically Polls the DSP device driver
// to clock bytes out of the slave — see PollWhilePending. There is no
// timeout: the count only falls through Ack, and nothing in this package
// raises DSPNeverAcked.
type Pending struct {
	count atomic.Uint32
}

// NewPending returns a zeroed Pending counter.
func NewPending() *Pending { return &Pending{} }

// Request marks that a reply is now expected — call when issuing any
// GET_* or CHECK_READY message.
func (p *Pending) Request() { p.count.Add(1) }

// Ack marks that a reply has been ingested — call from the Dispatcher on
// receipt of a matching response. Saturates at zero: an unmatched extra
// reply does not wrap the counter negative.
func (p *Pending) Ack() {
	for {
		cur := p.count.Load()
		if cur == 0 {
			return
		}
		if p.count.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// Outstanding reports whether at least one reply is still expected.
func (p *Pending) Outstanding() bool { return p.count.Load() > 0 }

// Count reports the current pending_responses value.
func (p *Pending) Count() uint32 { return p.count.Load() }

// Poller is the subset of transport.Device needed to clock a slave-mode
// response out while a reply is outstanding.
type Poller interface {
	Poll()
}

// PollWhilePending calls dev.Poll() once if and only if a reply is still
// outstanding. The DSP-SPI task calls this once per outer kernel iteration
// — see kernel.Task — so idle periods cost nothing and a response in
// flight is bounded by one tick of latency.
func (p *Pending) PollWhilePending(dev Poller) {
	if p.Outstanding() {
		dev.Poll()
	}
}
