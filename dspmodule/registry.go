package dspmodule

import (
	"sync"

	"freetribe/x/fmtx"
)

// Factory builds a fresh Module instance. Registered factories let
// cmd/dsp select an installed module by name at startup instead of
// hardcoding a switch over every module this package ships.
type Factory func() Module

var (
	regMu    sync.RWMutex
	builders = map[string]Factory{}
)

// Register adds a named module factory. It panics on a duplicate name,
// since two modules registering under the same name is a build-time
// mistake, not a runtime condition to recover from.
func Register(name string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	if _, exists := builders[name]; exists {
		panic(fmtx.Sprintf("dspmodule: duplicate module registered: %s", name))
	}
	builders[name] = f
}

// Lookup returns the factory registered under name, if any.
func Lookup(name string) (Factory, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	f, ok := builders[name]
	return f, ok
}

func init() {
	Register("gain", func() Module { return NewGain() })
}
