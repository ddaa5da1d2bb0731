package dspmodule

import "testing"

func TestGainUnityPassesSamplesThrough(t *testing.T) {
	g := NewGain()
	in := []int32{1000, -1000, 0, 1 << 20}
	out := make([]int32, len(in))
	g.Process(in, out)
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("sample %d: want %d at unity, got %d", i, in[i], out[i])
		}
	}
}

func TestGainZeroSilences(t *testing.T) {
	g := NewGain()
	g.SetParam(0, 0)
	in := []int32{1000, -1000, 12345}
	out := make([]int32, len(in))
	g.Process(in, out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d: want silence, got %d", i, v)
		}
	}
}

func TestGainSetGetParamRoundTrips(t *testing.T) {
	g := NewGain()
	g.SetParam(0, 8192)
	got := g.GetParam(0)
	if got < 8100 || got > 8300 {
		t.Fatalf("want GetParam near 8192 after SetParam(8192), got %d", got)
	}
}

func TestGainParamNameAndCount(t *testing.T) {
	g := NewGain()
	if g.ParamCount() != 1 {
		t.Fatalf("want 1 param, got %d", g.ParamCount())
	}
	buf := make([]byte, MaxParamNameLength)
	n := g.ParamName(0, buf)
	if string(buf[:n-1]) != "level" {
		t.Fatalf("want name %q, got %q", "level", string(buf[:n-1]))
	}
}

func TestGainUnknownParamIndexIsNoOp(t *testing.T) {
	g := NewGain()
	g.SetParam(5, 100)
	if g.GetParam(5) != 0 {
		t.Fatal("unknown param index should read back zero")
	}
}
