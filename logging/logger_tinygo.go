//go:build tinygo

package logging

import (
	"freetribe/ring"
	"freetribe/x/conv"
)

// Logger is the embedded target's zero-allocation logger: it writes every
// part straight to the console via print() and, if a UART TX ring has been
// attached, mirrors the same bytes there. Adapted from the teacher's
// main.go Logger, generalized from a single fixed UART1 mirror to any
// ring.Ring so cmd/dsp and cmd/cpu can each attach their own debug UART.
type Logger struct {
	mirror *ring.Ring
}

// New returns a Logger with no mirror attached; component is accepted for
// host-build API parity but not printed — tinygo builds have no spare
// cycles for per-call string formatting.
func New(component string, level int) *Logger { return &Logger{} }

// SetMirror attaches (or detaches, with nil) a UART TX ring every logged
// part is also written to, best-effort.
func (l *Logger) SetMirror(r *ring.Ring) { l.mirror = r }

func (l *Logger) writeString(s string) {
	if s == "" {
		return
	}
	print(s)
	if l.mirror != nil {
		var b [1]byte
		for i := 0; i < len(s); i++ {
			b[0] = s[i]
			_ = l.mirror.Put(b[:])
		}
	}
}

// Info, Warn, and Error all reduce to the same plain print on this target;
// the level name is the only prefix distinguishing them.
func (l *Logger) Info(msg string, keyvals ...any) { l.log("INFO", msg, keyvals) }
func (l *Logger) Warn(msg string, keyvals ...any) { l.log("WARN", msg, keyvals) }
func (l *Logger) Error(msg string, keyvals ...any) { l.log("ERROR", msg, keyvals) }

func (l *Logger) log(level, msg string, keyvals []any) {
	l.writeString(level)
	l.writeString(" ")
	l.writeString(msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		l.writeString(" ")
		if k, ok := keyvals[i].(string); ok {
			l.writeString(k)
		} else {
			l.writeString("?")
		}
		l.writeString("=")
		l.writeValue(keyvals[i+1])
	}
	l.writeString("\n")
}

// writeValue formats v without pulling in fmt/strconv, the same
// no-allocation discipline x/conv's helpers were written under: a tinygo
// build has no spare flash for a general formatter.
func (l *Logger) writeValue(v any) {
	var buf [20]byte
	switch x := v.(type) {
	case string:
		l.writeString(x)
	case bool:
		if x {
			l.writeString("true")
		} else {
			l.writeString("false")
		}
	case int:
		l.writeString(string(conv.Itoa(buf[:], int64(x))))
	case int32:
		l.writeString(string(conv.Itoa(buf[:], int64(x))))
	case int64:
		l.writeString(string(conv.Itoa(buf[:], x)))
	case uint32:
		l.writeString(string(conv.Utoa(buf[:], uint64(x))))
	case uint64:
		l.writeString(string(conv.Utoa(buf[:], x)))
	default:
		l.writeString("?")
	}
}
