// Command simctl is an interactive development console standing in for
// the panel MCU: it allocates a pty, prints the path a cmd/cpu instance
// should open as its --panel-link, and turns typed commands into
// panel-report bytes written to that pty. Every command and every byte
// read back from the pty is also published on a bus.Bus so other tools
// (or a future simctl -monitor mode) can observe live traffic without
// owning the pty themselves.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/creack/pty"

	"freetribe/bus"
)

// Bus topics simctl publishes to; any Connection can subscribe to watch
// traffic live.
var (
	topicPanelTX = bus.T("panel", "tx") // bytes written to the pty (reports we generated)
	topicLinkRX  = bus.T("link", "rx")  // bytes read back from the pty (cmd/cpu's own output)
	topicParam   = bus.T("module", "param")
)

func main() {
	ptmx, tty, err := pty.Open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "simctl: opening pty: %v\n", err)
		os.Exit(1)
	}
	defer ptmx.Close()
	defer tty.Close()

	fmt.Printf("simctl: panel link ready at %s\n", tty.Name())
	fmt.Println(`simctl: start cmd/cpu with --panel-link ` + tty.Name())
	printHelp()

	b := bus.NewBus(32)
	conn := b.NewConnection("simctl")

	monitor := conn.Subscribe(bus.T("#"))
	go func() {
		for msg := range monitor.Channel() {
			fmt.Printf("[bus] %v: %v\n", msg.Topic, msg.Payload)
		}
	}()

	go watchLinkRX(ptmx, conn)

	state := &replState{ptmx: ptmx, conn: conn}
	runREPL(state)
}

// watchLinkRX republishes every byte cmd/cpu writes back through the pty
// onto topicLinkRX, so the bus monitor surfaces outbound panel traffic
// (e.g. a MIDI-TRS passthrough) alongside the commands simctl generated.
func watchLinkRX(ptmx *os.File, conn *bus.Connection) {
	buf := make([]byte, 256)
	for {
		n, err := ptmx.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		conn.Publish(conn.NewMessage(topicLinkRX, append([]byte(nil), buf[:n]...), false))
	}
}

func runREPL(state *replState) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("simctl> ")
		if !scanner.Scan() {
			return
		}
		cmd, err := parseCommand(scanner.Text())
		if err != nil {
			fmt.Println(err)
			continue
		}
		dispatch(state, cmd)
		if state.quit {
			return
		}
	}
}

// replState implements console against the live pty and bus connection.
type replState struct {
	ptmx *os.File
	conn *bus.Connection
	quit bool
}

// Panel report tags: simctl's own minimal encoding (see console.go's
// command doc comment) — a one-byte tag followed by a fixed payload,
// distinct from the framed MODULE/SYSTEM wire protocol cmd/cpu and
// cmd/dsp speak to each other.
const (
	reportButton  byte = 0x01
	reportEncoder byte = 0x02
	reportKnob    byte = 0x03
)

func (s *replState) Button(index uint8, down bool) {
	var d byte
	if down {
		d = 1
	}
	s.emit(topicPanelTX, "button", index, down, []byte{reportButton, index, d})
}

func (s *replState) Encoder(delta int8) {
	s.emit(topicPanelTX, "encoder", delta, nil, []byte{reportEncoder, byte(delta)})
}

func (s *replState) Knob(index uint8, value uint16) {
	s.emit(topicPanelTX, "knob", index, value, []byte{reportKnob, index, byte(value), byte(value >> 8)})
}

// Param is not a panel report: it has no physical panel-MCU byte encoding
// and is published for observability only, standing in for a sideband a
// fuller harness would use to poke a running DSP module's parameters
// directly (the real path is MODULE/SET_PARAM_VALUE over the CPU<->DSP
// link, which simctl does not open).
func (s *replState) Param(index uint16, value int32) {
	s.conn.Publish(s.conn.NewMessage(topicParam, map[string]any{"index": index, "value": value}, false))
	fmt.Printf("simctl: published param set (index=%d value=%d); wire this into a running dsp module via MODULE/SET_PARAM_VALUE yourself\n", index, value)
}

func (s *replState) Quit() { s.quit = true }

func (s *replState) emit(topic bus.Topic, label string, a, b any, wire []byte) {
	if _, err := s.ptmx.Write(wire); err != nil {
		fmt.Printf("simctl: writing %s report: %v\n", label, err)
		return
	}
	s.conn.Publish(s.conn.NewMessage(topic, map[string]any{"kind": label, "a": a, "b": b}, false))
}
