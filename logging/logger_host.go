//go:build !tinygo

// Package logging provides the leveled logger used by cmd/cpu and cmd/dsp
// on a host build, and the minimal print-based logger used on the
// tinygo embedded target (logger_tinygo.go). Host and embedded builds share
// no code: the embedded target has no os.Stderr worth formatting onto.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the host build's structured logger, one per named component
// (kernel, transport, dsp-link, panel-link, ...) via With("component", name).
type Logger = log.Logger

// New returns a Logger writing to stderr at the given level, named after
// component so interleaved task/device output stays attributable.
func New(component string, level log.Level) *Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
		Level:           level,
	})
	return l.With("component", component)
}

// ParseLevel wraps log.ParseLevel so cmd/* can turn a --log-level flag
// straight into a Level without importing charmbracelet/log directly.
func ParseLevel(s string) (log.Level, error) {
	return log.ParseLevel(s)
}
