package transport

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTxSelfClocking implements spec scenario S3: enqueue 10 bytes while TX
// is idle; after the first TX-done ISR fires, the remaining 9 bytes drain
// without further enqueue-side intervention, in order.
func TestTxSelfClocking(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	dev := New("dsp-spi", a, Master)
	defer dev.Close()

	for i := 0; i < 10; i++ {
		require.True(t, dev.TxEnqueue(byte(i)))
	}

	got := make([]byte, 10)
	for i := range got {
		buf := make([]byte, 1)
		_, err := b.Read(buf)
		require.NoError(t, err)
		got[i] = buf[0]
	}
	for i, v := range got {
		assert.Equal(t, byte(i), v)
	}
}

func TestRxDeliversToCallbackAndRing(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	dev := New("panel-mcu", a, Master)
	defer dev.Close()

	received := make(chan byte, 4)
	dev.RegisterCallback(func(data []byte) {
		for _, d := range data {
			received <- d
		}
	})

	go func() { b.Write([]byte{0x42}) }()

	select {
	case v := <-received:
		assert.Equal(t, byte(0x42), v)
	case <-time.After(time.Second):
		t.Fatal("callback not invoked")
	}

	b2, ok := dev.RxDequeue()
	require.True(t, ok)
	assert.Equal(t, byte(0x42), b2)
}

func TestSlavePoll(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	dev := New("dsp-spi-slave", a, Slave)
	defer dev.Close()

	go func() {
		buf := make([]byte, 1)
		b.Read(buf)
		b.Write([]byte{0x99})
	}()

	dev.Poll()

	got, ok := dev.RxDequeue()
	require.True(t, ok)
	assert.Equal(t, byte(0x99), got)
}
