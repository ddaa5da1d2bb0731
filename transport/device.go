// Package transport implements the byte-stream device drivers each protocol
// endpoint sits on top of: the DSP SPI link, the panel MCU UART, and the
// MIDI TRS UART. Every device wraps a TX ring and an RX ring (ring.Ring) and
// a simulated interrupt pipeline — a goroutine standing in for the hardware
// ISR, handing received bytes to a registered callback and draining the TX
// ring self-clocking once kicked.
package transport

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"freetribe/ring"
)

// Link is the byte-stream underneath a Device: a real serial port, a real
// SPI conn, or an in-memory net.Pipe half for host development and tests.
type Link interface {
	io.Reader
	io.Writer
}

// Mode distinguishes a master device, which clocks its own transfers, from
// a slave device, which only transmits/receives in response to an external
// clock and must be polled to obtain a response.
type Mode int

const (
	Master Mode = iota
	Slave
)

const (
	txRingCapacity = 256
	rxRingCapacity = 256
)

// Device is a byte-stream device driver: init/tx_enqueue/rx_dequeue/
// register_callback/poll, per spec §4.B.
type Device struct {
	name string
	link Link
	mode Mode

	tx *ring.Ring
	rx *ring.Ring

	txComplete atomic.Bool
	txKick     chan struct{}

	onData func([]byte)
	mu     sync.Mutex // guards onData

	drops atomic.Uint32 // RX PutForce drops, ISR-side best-effort counter

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New wires a Device to link and starts its simulated ISR pipeline. mode
// Slave means the device will not spontaneously receive: Poll must be
// called to clock a dummy byte out and read a response byte in.
func New(name string, link Link, mode Mode) *Device {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Device{
		name:   name,
		link:   link,
		mode:   mode,
		tx:     ring.NewRing(txRingCapacity, 1),
		rx:     ring.NewRing(rxRingCapacity, 1),
		txKick: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	d.txComplete.Store(true)
	go d.run()
	return d
}

// RegisterCallback installs the "data ready" hook the simulated RX ISR
// invokes after enqueueing a received byte. This is the single path through
// which device traffic becomes kernel events.
func (d *Device) RegisterCallback(fn func(b []byte)) {
	d.mu.Lock()
	d.onData = fn
	d.mu.Unlock()
}

// TxEnqueue pushes b to the TX ring. If the TX pipeline is currently idle
// (tx_complete == true) it kicks the TX goroutine so the byte ships
// immediately; a running pipeline drains the ring itself. Returns false
// (Full) if the TX ring had no room — the frame then ships malformed, same
// as the source's unbuffered, no-retry enqueue.
func (d *Device) TxEnqueue(b byte) bool {
	ok := d.tx.Put([]byte{b})
	if !ok {
		return false
	}
	if d.txComplete.Load() {
		select {
		case d.txKick <- struct{}{}:
		default:
		}
	}
	return true
}

// RxDequeue pulls one byte from the RX ring. ok is false (Empty) if none is
// buffered.
func (d *Device) RxDequeue() (b byte, ok bool) {
	var buf [1]byte
	if !d.rx.Get(buf[:]) {
		return 0, false
	}
	return buf[0], true
}

// Poll sends a single dummy byte to clock a response out of a slave device.
// Used by the protocol layer only while pending_responses > 0 — see
// protocol.Pending.PollWhilePending.
func (d *Device) Poll() {
	if d.mode != Slave {
		return
	}
	d.transferOne(0x00)
}

// ISRDrops reports how many RX bytes were dropped under PutForce overflow.
func (d *Device) ISRDrops() uint32 { return d.drops.Load() }

// Close stops the simulated ISR goroutine.
func (d *Device) Close() {
	d.cancel()
	<-d.done
}

func (d *Device) run() {
	defer close(d.done)
	if d.mode == Master {
		go d.readLoop()
	}
	for {
		select {
		case <-d.ctx.Done():
			return
		case <-d.txKick:
			d.drainTx()
		}
	}
}

// drainTx is the simulated TX-done ISR: pull bytes from the TX ring and
// write them out one at a time until the ring empties, then mark the
// pipeline idle. Because Go scheduling is cooperative at the channel level
// rather than truly interrupt-driven, this goroutine plays the role the
// hardware TX-complete interrupt plays in the source.
func (d *Device) drainTx() {
	d.txComplete.Store(false)
	var buf [1]byte
	for d.tx.Get(buf[:]) {
		if _, err := d.link.Write(buf[:1]); err != nil {
			break
		}
	}
	d.txComplete.Store(true)
}

// readLoop is the simulated RX ISR for a master device: block on the link,
// enqueue every byte received, invoke the data-ready callback.
func (d *Device) readLoop() {
	var buf [1]byte
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
		}
		n, err := d.link.Read(buf[:])
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		d.deliver(buf[0])
	}
}

// transferOne performs one synchronous master-clocked byte exchange: write
// out, then read the byte clocked back in, and deliver it exactly as the
// read loop would.
func (d *Device) transferOne(out byte) {
	if _, err := d.link.Write([]byte{out}); err != nil {
		return
	}
	var in [1]byte
	n, err := d.link.Read(in[:])
	if err != nil || n == 0 {
		return
	}
	d.deliver(in[0])
}

func (d *Device) deliver(b byte) {
	wasFull := d.rx.Len() == d.rx.Cap()-1
	d.rx.PutForce([]byte{b})
	if wasFull {
		d.drops.Add(1)
	}
	d.mu.Lock()
	cb := d.onData
	d.mu.Unlock()
	if cb != nil {
		cb([]byte{b})
	}
}
