package bootseq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freetribe/errcode"
)

type fakeReset struct{ asserted []bool }

func (f *fakeReset) SetReset(asserted bool) error {
	f.asserted = append(f.asserted, asserted)
	return nil
}

type fakeFormat struct{ calls []string }

func (f *fakeFormat) SetBootFormat() error    { f.calls = append(f.calls, "boot"); return nil }
func (f *fakeFormat) SetRuntimeFormat() error { f.calls = append(f.calls, "runtime"); return nil }

type fakeBulk struct{ written []byte }

func (f *fakeBulk) WriteAll(p []byte) error {
	f.written = append([]byte(nil), p...)
	return nil
}

func newTestSequencer(image []byte) (*Sequencer, *fakeReset, *fakeFormat, *fakeBulk) {
	r := &fakeReset{}
	f := &fakeFormat{}
	b := &fakeBulk{}
	s := New(r, f, b, image)
	s.sleep = func(time.Duration) {} // don't actually wait in tests
	return s, r, f, b
}

func TestSequencerProgressesThroughAllStates(t *testing.T) {
	s, r, f, b := newTestSequencer([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	ctx := context.Background()

	require.Equal(t, errcode.Success, s.TaskInit(ctx))
	assert.Equal(t, AssertReset, s.State())

	require.Equal(t, errcode.Success, s.Step(ctx))
	assert.Equal(t, ReleaseReset, s.State())
	require.Equal(t, []bool{true, false}, r.asserted)

	require.Equal(t, errcode.Success, s.Step(ctx))
	assert.Equal(t, Boot, s.State())

	require.Equal(t, errcode.Success, s.Step(ctx))
	assert.Equal(t, Run, s.State())
	assert.Equal(t, []string{"boot", "runtime"}, f.calls)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, b.written)

	// Run is steady-state: further steps succeed and stay in Run.
	require.Equal(t, errcode.Success, s.Step(ctx))
	assert.Equal(t, Run, s.State())
}

type failingReset struct{}

func (failingReset) SetReset(bool) error { return errTest }

var errTest = assert.AnError

func TestResetFailurePropagatesAsError(t *testing.T) {
	f := &fakeFormat{}
	b := &fakeBulk{}
	s := New(failingReset{}, f, b, []byte{1, 2, 3})
	s.sleep = func(time.Duration) {}
	ctx := context.Background()

	_ = s.TaskInit(ctx)
	code := s.Step(ctx)
	assert.Equal(t, errcode.Error, code)
}
