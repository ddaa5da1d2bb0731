// Command dsp runs the DSP-side endpoint: it answers the CPU over the
// framed protocol, drives the audio block loop, and hosts the installed
// DSP module.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"freetribe/audio"
	"freetribe/cmd/internal/devlink"
	"freetribe/dspmodule"
	"freetribe/errcode"
	"freetribe/kernel"
	"freetribe/logging"
	"freetribe/protocol"
	"freetribe/tick"
	"freetribe/transport"
	"freetribe/x/strx"
	"freetribe/x/timex"
)

const (
	defaultBlockLen   = 32
	defaultSampleRate = 48000
)

func main() {
	cpuLinkFlag := pflag.String("cpu-link", "unix:/tmp/freetribe-dsp.sock", "link to the CPU (serial device path, or unix:<path>)")
	listenFlag := pflag.Bool("listen", true, "when the CPU link is a unix socket, listen and accept rather than dial")
	blockLen := pflag.Int("block-len", defaultBlockLen, "audio block length in sample pairs")
	moduleFlag := pflag.String("module", "", `installed DSP module: "gain" or "" for the silent default`)
	logLevel := pflag.String("log-level", "info", "log level: debug, info, warn, error")
	pflag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dsp: %v\n", err)
		os.Exit(1)
	}
	log := logging.New("dsp", level)

	cpuLink, err := devlink.Open(*cpuLinkFlag, 0, !*listenFlag)
	if err != nil {
		log.Error("opening CPU link", "err", err)
		os.Exit(1)
	}
	defer cpuLink.Close()

	// The DSP's own view of the CPU device is Master: the audio/boot
	// sequencer on the other end drives the physical clock, so this side
	// must receive spontaneously rather than be polled.
	cpuDevice := transport.New("cpu", cpuLink, transport.Master)
	defer cpuDevice.Close()

	module := selectModule(*moduleFlag)
	loop := audio.New(newFrontend(*blockLen), hardwareClock(), *blockLen)
	loop.SetModule(module)

	portState := newPortStateStore()

	handlers := protocol.Handlers{
		OnCheckReady: func() { sendReady(cpuDevice) },
		OnGetPortState: func() {
			f, g, h := portState.Get()
			sendFrame(cpuDevice, protocol.System, protocol.PortState, protocol.PortStatePayload{PortF: f, PortG: g, PortH: h})
		},
		OnSetPortState: func(p protocol.PortStatePayload) {
			portState.Set(p.PortF, p.PortG, p.PortH)
		},
		OnGetProfile: func() {
			stats := loop.Stats()
			sendFrame(cpuDevice, protocol.System, protocol.Profile, protocol.ProfilePayload{Period: stats.Period, Cycles: stats.Cycles})
		},
		OnGetParamValue: func(p protocol.GetParamValuePayload) {
			v := module.GetParam(p.ParamIndex)
			sendFrame(cpuDevice, protocol.Module, protocol.ParamValue, protocol.ParamValuePayload{ModuleID: p.ModuleID, ParamIndex: p.ParamIndex, Value: v})
		},
		OnSetParamValue: func(p protocol.ParamValuePayload) {
			module.SetParam(p.ParamIndex, p.Value)
		},
		OnGetParamName: func(p protocol.GetParamNamePayload) {
			buf := make([]byte, dspmodule.MaxParamNameLength)
			n := module.ParamName(p.ParamIndex, buf)
			sendFrame(cpuDevice, protocol.Module, protocol.ParamName, protocol.ParamNamePayload{
				ModuleID: p.ModuleID, ParamIndex: p.ParamIndex, Name: string(buf[:n]),
			})
		},
	}
	dispatcher := protocol.NewDispatcher(handlers, nil)
	cpuParser := protocol.NewParser(func(f protocol.Frame) { dispatcher.Handle(f) })
	cpuDevice.RegisterCallback(func(b []byte) {
		for _, c := range b {
			cpuParser.Feed(c)
		}
	})

	ticks := tick.New()
	// A divisor of 0 fires every systick; the audio loop's OnFrame is
	// driven from the frontend directly (see audioFrameTask), not from
	// the systick, so the tick service here only exists to let a future
	// module use tick.Delay for its own LFOs/envelopes.
	ticks.RegisterUserTick(0, func() {})
	ticks.Start()
	defer ticks.Stop()

	k := kernel.New(&audioFrameTask{loop: loop})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("dsp up",
		"cpu_link", *cpuLinkFlag,
		"block_len", *blockLen,
		"module", strx.Coalesce(*moduleFlag, "default"),
		"expected_block_period_ns", timex.PeriodFromHz(uint32(defaultSampleRate))*uint64(*blockLen),
	)
	runLoop(ctx, k)
}

// selectModule resolves the --module flag to an installed dspmodule.Module
// via the package's Register/Lookup registry; an unrecognized name falls
// back to dspmodule.Default rather than refusing to start, since a typo
// here should degrade to silence, not crash the process.
func selectModule(name string) dspmodule.Module {
	if name == "" {
		return dspmodule.Default{}
	}
	factory, ok := dspmodule.Lookup(name)
	if !ok {
		return dspmodule.Default{}
	}
	return factory()
}

func runLoop(ctx context.Context, k *kernel.Kernel) {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			k.RunOnce(ctx)
		}
	}
}

// audioFrameTask is the kernel task that drives audio.Loop each
// iteration: OnFrame simulates the next RX-DMA-done ISR firing, RunOnce
// processes it if one arrived. A real SPORT/DMA interrupt would call
// OnFrame asynchronously; this task stands in for that on a host build.
type audioFrameTask struct{ loop *audio.Loop }

func (t *audioFrameTask) Name() string                          { return "audio" }
func (t *audioFrameTask) TaskInit(ctx context.Context) errcode.Code { return errcode.Success }
func (t *audioFrameTask) Step(ctx context.Context) errcode.Code {
	t.loop.OnFrame()
	return t.loop.RunOnce(ctx)
}
func (t *audioFrameTask) ErrorHook() {}

func sendReady(dev *transport.Device) {
	protocol.Encode(protocol.Frame{Type: protocol.System, ID: protocol.Ready}, dev.TxEnqueue)
}

type encodable interface{ Encode() []byte }

func sendFrame(dev *transport.Device, t protocol.MsgType, id byte, payload encodable) {
	protocol.Encode(protocol.Frame{Type: t, ID: id, Payload: payload.Encode()}, dev.TxEnqueue)
}

// portStateStore holds the three GPIO port registers on builds with no
// real gpioport.Bank wired in; cmd/dsp has no GPIO lines of its own to
// read on a host build, so SET_PORT_STATE/GET_PORT_STATE round-trips
// through this in-memory store instead.
type portStateStore struct {
	f, g, h atomic.Uint32
}

func newPortStateStore() *portStateStore { return &portStateStore{} }

func (s *portStateStore) Get() (f, g, h uint16) {
	return uint16(s.f.Load()), uint16(s.g.Load()), uint16(s.h.Load())
}

func (s *portStateStore) Set(f, g, h uint16) {
	s.f.Store(uint32(f))
	s.g.Store(uint32(g))
	s.h.Store(uint32(h))
}
