// Package event implements the central event queue spec §4.G describes: a
// fixed-capacity index queue of heap-allocated payloads and a per-EventID
// listener table, dispatched synchronously from a single task in the
// kernel loop. It is the one place in this module with a true critical
// section — publish may be called from any goroutine (standing in for a
// publisher that is an ISR), so the queue itself is guarded by a mutex even
// though dispatch is single-threaded.
package event

import "sync"

// ID names a kernel event, mirroring the original's e_event_id catalog —
// restored here beyond the four wire-carrying messages named in spec.md §3,
// per SPEC_FULL.md's supplemented-features section, so a user application
// riding on this core's ABI sees the same event surface the original
// firmware offered.
type ID int

const (
	TRSDataRX ID = iota
	TRSDataTX

	MCUDataRX
	MCUDataTX

	PanelAck
	HeldButtons
	PanelButton
	PanelEncoder
	PanelTrigger
	PanelKnob
	Touchpad

	MIDICCRx
	MIDICCTx

	PutPixel
	FillFrame

	count // sentinel; not a publishable event
)

// maxListenersPerID is the original's default of 255 per event ID.
const maxListenersPerID = 255

// Event is one published occurrence: an ID and an owned copy of its
// payload. The queue, not the publisher, owns the payload's lifetime from
// enqueue to the point every listener has returned.
type Event struct {
	ID   ID
	Data []byte
}

// Listener receives a read-only view of an Event's payload. It must not
// retain the slice past return — the queue frees (drops the reference to)
// the backing array once every listener for this dispatch has run.
type Listener func(Event)

type listenerSlot struct {
	fn     Listener
	active bool
}

// Queue is the central event queue: one fixed-capacity backlog and a
// listener table keyed by ID.
type Queue struct {
	mu        sync.Mutex // the spec's one mandated critical section: publish
	listeners [count][]listenerSlot
	backlog   []Event
	capacity  int
}

// New returns a Queue whose backlog can hold at most capacity unsent
// events. Publish beyond capacity drops the event (ring-overflow policy is
// the caller's concern via Publish's return value, not a silent force-push,
// since event loss is not on the put_force side of spec §4.A's overflow
// policy).
func New(capacity int) *Queue {
	return &Queue{capacity: capacity}
}

// Subscribe registers fn for id. Subscriptions never fail under the
// maxListenersPerID limit; beyond it, Subscribe returns false. Unsubscribe
// marks the slot inactive but does not compact the table — matching the
// original's top-high-water-mark convention, where the slice never shrinks.
func (q *Queue) Subscribe(id ID, fn Listener) (unsubscribe func(), ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.listeners[id]) >= maxListenersPerID {
		return nil, false
	}
	idx := len(q.listeners[id])
	q.listeners[id] = append(q.listeners[id], listenerSlot{fn: fn, active: true})
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		if idx < len(q.listeners[id]) {
			q.listeners[id][idx].active = false
		}
	}, true
}

// Publish enqueues an occurrence of id with an owned copy of data. Returns
// false if the backlog is full — the publish is dropped, the caller
// decides whether that's fatal (spec §7, ring-overflow-on-put policy
// applied to event publish: this path is the put, not the put_force, side).
func (q *Queue) Publish(id ID, data []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.backlog) >= q.capacity {
		return false
	}
	owned := append([]byte(nil), data...)
	q.backlog = append(q.backlog, Event{ID: id, Data: owned})
	return true
}

// Dispatch drains the backlog, invoking every active listener for each
// event's ID exactly once, in subscription order. Run from exactly one
// task per kernel iteration (see kernel.Task) — dispatch itself is not
// reentrant and assumes single-threaded use, per spec §5's "dispatch runs
// with interrupts enabled" design: only publish needs the lock.
func (q *Queue) Dispatch() {
	q.mu.Lock()
	pending := q.backlog
	q.backlog = nil
	q.mu.Unlock()

	for _, ev := range pending {
		q.mu.Lock()
		slots := append([]listenerSlot(nil), q.listeners[ev.ID]...)
		q.mu.Unlock()
		for _, s := range slots {
			if s.active {
				s.fn(ev)
			}
		}
	}
}
