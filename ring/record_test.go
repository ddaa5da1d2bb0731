package ring

import "testing"

type panelReport struct {
	buttons  uint8
	encoder  int8
	knobIdx  uint8
	knobVal  uint16
}

func TestRecordRingPutGetOrder(t *testing.T) {
	r := NewRecordRing[panelReport](4)
	for i := 0; i < 3; i++ {
		if !r.Put(panelReport{buttons: uint8(i)}) {
			t.Fatalf("put %d: unexpected full", i)
		}
	}
	for i := 0; i < 3; i++ {
		elem, ok := r.Get()
		if !ok {
			t.Fatalf("get %d: unexpected empty", i)
		}
		if elem.buttons != uint8(i) {
			t.Fatalf("get %d: want buttons %d, got %d", i, i, elem.buttons)
		}
	}
	if _, ok := r.Get(); ok {
		t.Fatal("expected empty ring after draining all puts")
	}
}

func TestRecordRingPutFailsWhenFull(t *testing.T) {
	r := NewRecordRing[panelReport](2)
	if !r.Put(panelReport{buttons: 1}) {
		t.Fatal("first put should succeed")
	}
	if r.Put(panelReport{buttons: 2}) {
		t.Fatal("second put should fail: capacity 2 holds only 1 usable slot")
	}
}

func TestRecordRingPutForceDropsOldest(t *testing.T) {
	r := NewRecordRing[panelReport](2)
	r.PutForce(panelReport{buttons: 1})
	r.PutForce(panelReport{buttons: 2})

	elem, ok := r.Get()
	if !ok {
		t.Fatal("expected a record after PutForce overwrote the full ring")
	}
	if elem.buttons != 2 {
		t.Fatalf("want the newest record (2), got %d", elem.buttons)
	}
}

func TestRecordRingLenTracksBufferedCount(t *testing.T) {
	r := NewRecordRing[panelReport](8)
	if r.Len() != 0 {
		t.Fatalf("want len 0, got %d", r.Len())
	}
	r.Put(panelReport{})
	r.Put(panelReport{})
	if r.Len() != 2 {
		t.Fatalf("want len 2, got %d", r.Len())
	}
	r.Get()
	if r.Len() != 1 {
		t.Fatalf("want len 1 after one Get, got %d", r.Len())
	}
}

func TestNewRecordRingPanicsOnNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-power-of-two capacity")
		}
	}()
	NewRecordRing[panelReport](3)
}
