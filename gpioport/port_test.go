package gpioport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLines struct {
	bits   [portWidth]int
	closed bool
}

func (f *fakeLines) Values(values []int) error {
	copy(values, f.bits[:])
	return nil
}

func (f *fakeLines) SetValues(values map[int]int) error {
	for i, v := range values {
		f.bits[i] = v
	}
	return nil
}

func (f *fakeLines) Close() error { f.closed = true; return nil }

func TestPortWriteThenReadRoundTrips(t *testing.T) {
	fl := &fakeLines{}
	p := &Port{lines: fl}

	require.NoError(t, p.Write(0xBEEF))
	v, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), v)
}

func TestPortWriteZeroClearsAllBits(t *testing.T) {
	fl := &fakeLines{}
	p := &Port{lines: fl}

	require.NoError(t, p.Write(0xFFFF))
	require.NoError(t, p.Write(0x0000))
	v, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, uint16(0), v)
}

func TestBankReadAllAndWriteAllMatchFieldOrder(t *testing.T) {
	f := &fakeLines{}
	g := &fakeLines{}
	h := &fakeLines{}
	bank := &Bank{F: &Port{lines: f}, G: &Port{lines: g}, H: &Port{lines: h}}

	require.NoError(t, bank.WriteAll(0x0001, 0x0002, 0x0003))

	gotF, gotG, gotH, err := bank.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0001), gotF)
	assert.Equal(t, uint16(0x0002), gotG)
	assert.Equal(t, uint16(0x0003), gotH)
}

func TestBankCloseClosesAllPorts(t *testing.T) {
	f := &fakeLines{}
	g := &fakeLines{}
	h := &fakeLines{}
	bank := &Bank{F: &Port{lines: f}, G: &Port{lines: g}, H: &Port{lines: h}}

	require.NoError(t, bank.Close())
	assert.True(t, f.closed)
	assert.True(t, g.closed)
	assert.True(t, h.closed)
}
