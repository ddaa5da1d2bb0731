// Package devlink opens the byte-stream link underneath a transport.Device
// for cmd/cpu and cmd/dsp: a real raw-mode serial device on a bench rig
// (transport.HostSerial), or a Unix domain socket standing in for the
// point-to-point SPI/UART link when the two binaries are run against each
// other on one host for development, matching transport's own doc comment
// that the teacher's Link interface is satisfied by "a real serial port ...
// or an in-memory net.Pipe half for host development and tests".
package devlink

import (
	"fmt"
	"net"
	"strings"

	"freetribe/transport"
)

// Link is the minimal byte-stream transport.Device needs.
type Link interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Open resolves addr into a Link. An address of the form "unix:<path>"
// opens a Unix domain socket: dial if dial is true, otherwise listen and
// accept exactly one connection. Any other address is treated as a serial
// device path opened at baud via transport.HostSerial.
func Open(addr string, baud int, dial bool) (Link, error) {
	if rest, ok := strings.CutPrefix(addr, "unix:"); ok {
		return openUnix(rest, dial)
	}
	return transport.OpenHostSerial(addr, baud)
}

func openUnix(path string, dial bool) (Link, error) {
	if dial {
		conn, err := net.Dial("unix", path)
		if err != nil {
			return nil, fmt.Errorf("devlink: dial %s: %w", path, err)
		}
		return conn, nil
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("devlink: listen %s: %w", path, err)
	}
	defer ln.Close()

	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("devlink: accept on %s: %w", path, err)
	}
	return conn, nil
}
