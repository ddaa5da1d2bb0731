// Package tick implements spec §4.H: a 1ms systick service with a
// configurable user-tick divisor, plus the Delay value type tasks use for
// non-blocking elapsed-time predicates. There is no real hardware timer to
// drive this in a hosted Go process, so Service runs its own ticker
// goroutine in place of the systick ISR — everything downstream of that
// (the divisor arithmetic, Delay semantics) matches the original exactly.
package tick

import (
	"sync"
	"sync/atomic"
	"time"
)

// Service drives a 1ms systick and derives a lower-frequency "user tick"
// from it via a configurable divisor, mirroring
// knl_main.c's _systick_callback/knl_register_user_tick_callback pair.
type Service struct {
	micros atomic.Uint32 // free-running microsecond counter

	mu       sync.Mutex
	divisor  uint32
	count    uint32
	callback func()

	ticker *time.Ticker
	stop   chan struct{}
	done   chan struct{}
}

// New returns a Service that has not yet started ticking; call Start to
// begin driving it.
func New() *Service {
	return &Service{stop: make(chan struct{}), done: make(chan struct{})}
}

// Start begins the 1ms tick loop. It is not meant to be called twice.
func (s *Service) Start() {
	s.ticker = time.NewTicker(time.Millisecond)
	go s.run()
}

// Stop halts the tick loop and waits for it to exit.
func (s *Service) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Service) run() {
	defer close(s.done)
	defer s.ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-s.ticker.C:
			s.onSystick()
		}
	}
}

// onSystick is the simulated 1ms ISR: it advances the free-running
// microsecond counter and fires the user-tick callback once per
// divisor+1 systicks, exactly matching the original's
// "user_tick >= g_user_tick_div" reset-on-fire rule.
func (s *Service) onSystick() {
	s.micros.Add(1000)

	s.mu.Lock()
	var fire func()
	s.count++
	if s.count > s.divisor {
		s.count = 0
		fire = s.callback
	}
	s.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// RegisterUserTick installs the user-tick callback and its divisor. A
// divisor of 0 fires the callback on every systick; a divisor of n fires it
// once per n+1 systicks, per spec §4.H.
func (s *Service) RegisterUserTick(divisor uint32, callback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.divisor = divisor
	s.count = 0
	s.callback = callback
}

// Micros returns the current value of the free-running microsecond
// counter. Delay methods read this to snapshot and measure elapsed time.
func (s *Service) Micros() uint32 {
	return s.micros.Load()
}

// Delay is the value type spec §3/§4.H describes: a snapshot of the
// microsecond counter at start, a duration, and the elapsed/expired state
// as of the last call to Update. It carries no reference to the Service
// beyond the values passed into Start and Update, so it can be embedded in
// any task's private state.
type Delay struct {
	start         uint32
	durationUs    uint32
	elapsedCycles uint32
	elapsedUs     uint32
	expired       bool
}

// Start snapshots now (typically Service.Micros()) and arms the delay for
// durationUs. A zero duration expires on the very next Update call.
func (d *Delay) Start(now uint32, durationUs uint32) {
	*d = Delay{start: now, durationUs: durationUs}
}

// Update recomputes elapsed time and the expired predicate from now. It is
// idempotent: calling it repeatedly after expiry continues to report
// expired=true, matching spec §4.H's "safe to call many times after
// expiry" rule. elapsedCycles counts Update calls since Start, giving
// tasks a cheap call-count in addition to the microsecond measurement.
func (d *Delay) Update(now uint32) {
	d.elapsedCycles++
	d.elapsedUs = now - d.start // wraps correctly for uint32 free-running counters
	if d.elapsedUs >= d.durationUs {
		d.expired = true
	}
}

// Expired reports whether the delay has elapsed as of the last Update.
func (d *Delay) Expired() bool { return d.expired }

// ElapsedUs returns the microseconds elapsed as of the last Update.
func (d *Delay) ElapsedUs() uint32 { return d.elapsedUs }

// ElapsedCycles returns the number of Update calls since Start.
func (d *Delay) ElapsedCycles() uint32 { return d.elapsedCycles }
