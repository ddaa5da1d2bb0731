package dspmodule

import "testing"

func TestRegistryLookupKnownModule(t *testing.T) {
	factory, ok := Lookup("gain")
	if !ok {
		t.Fatal("want gain registered by package init, found nothing")
	}
	m := factory()
	if _, ok := m.(*Gain); !ok {
		t.Fatalf("want *Gain from gain factory, got %T", m)
	}
}

func TestRegistryLookupUnknownModule(t *testing.T) {
	if _, ok := Lookup("no-such-module"); ok {
		t.Fatal("want ok=false for an unregistered name")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("want panic on duplicate registration")
		}
	}()
	Register("gain", func() Module { return NewGain() })
}
