// Command cpu runs the CPU-side endpoint: it drives the DSP boot sequencer,
// SPI-polls the DSP over the framed protocol, and bridges the panel-MCU/
// MIDI-TRS byte stream into the central event queue.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/warthog618/go-gpiocdev"

	"freetribe/bootseq"
	"freetribe/cmd/internal/devlink"
	"freetribe/config"
	"freetribe/errcode"
	"freetribe/event"
	"freetribe/kernel"
	"freetribe/logging"
	"freetribe/protocol"
	"freetribe/tick"
	"freetribe/transport"
	"freetribe/usbhost"
)

func main() {
	device := pflag.StringP("device", "d", "rp2040-bench", "embedded device configuration name")
	dspLinkFlag := pflag.String("dsp-link", "", "DSP link address (serial device path, or unix:<path>); overrides config")
	panelLinkFlag := pflag.String("panel-link", "", "panel-MCU/MIDI-TRS link address; overrides config")
	panelBaud := pflag.Int("panel-baud", 0, "panel link baud rate; overrides config")
	bootImageFlag := pflag.String("boot-image", "", "path to the DSP boot image; overrides config")
	gpioChip := pflag.String("gpio-chip", "", "gpiochip device backing the DSP reset line and port registers (disabled if empty)")
	resetPin := pflag.Int("dsp-reset-pin", -1, "gpiochip line offset driving the DSP reset pin (disabled if negative)")
	watchUSB := pflag.Bool("watch-usb", false, "log USB attach/detach events")
	logLevel := pflag.String("log-level", "info", "log level: debug, info, warn, error")
	pflag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cpu: %v\n", err)
		os.Exit(1)
	}
	log := logging.New("cpu", level)

	cfg, err := resolveConfig(*device)
	if err != nil {
		log.Error("loading configuration", "err", err)
		os.Exit(1)
	}
	if *dspLinkFlag != "" {
		cfg.DSPLinkPath = *dspLinkFlag
	}
	if *panelLinkFlag != "" {
		cfg.PanelLinkPath = *panelLinkFlag
	}
	if *panelBaud != 0 {
		cfg.PanelBaud = *panelBaud
	}
	if *bootImageFlag != "" {
		cfg.BootImagePath = *bootImageFlag
	}

	image, err := os.ReadFile(cfg.BootImagePath)
	if err != nil {
		log.Error("reading boot image", "path", cfg.BootImagePath, "err", err)
		os.Exit(1)
	}

	dspLink, err := devlink.Open(cfg.DSPLinkPath, 0, true)
	if err != nil {
		log.Error("opening DSP link", "err", err)
		os.Exit(1)
	}
	defer dspLink.Close()

	panelLink, err := devlink.Open(cfg.PanelLinkPath, cfg.PanelBaud, true)
	if err != nil {
		log.Error("opening panel link", "err", err)
		os.Exit(1)
	}
	defer panelLink.Close()

	// The CPU's own view of the DSP device is Slave: the physical SPI bus
	// is CPU-clocked, so bytes only move when the DSP-SPI task polls.
	dspDevice := transport.New("dsp", dspLink, transport.Slave)
	defer dspDevice.Close()
	// The panel MCU/MIDI-TRS stream arrives spontaneously over UART.
	panelDevice := transport.New("panel", panelLink, transport.Master)
	defer panelDevice.Close()

	pending := protocol.NewPending()
	events := event.New(64)

	handlers := protocol.Handlers{
		OnReady: func() { log.Info("dsp ready") },
		OnPortState: func(p protocol.PortStatePayload) {
			log.Info("port state", "f", p.PortF, "g", p.PortG, "h", p.PortH)
		},
		OnProfile: func(p protocol.ProfilePayload) {
			log.Info("dsp profile", "period", p.Period, "cycles", p.Cycles)
		},
		OnParamValue: func(p protocol.ParamValuePayload) {
			log.Debug("param value", "module", p.ModuleID, "index", p.ParamIndex, "value", p.Value)
		},
		OnParamName: func(p protocol.ParamNamePayload) {
			log.Debug("param name", "module", p.ModuleID, "index", p.ParamIndex, "name", p.Name)
		},
	}
	dispatcher := protocol.NewDispatcher(handlers, pending)
	dspParser := protocol.NewParser(func(f protocol.Frame) { dispatcher.Handle(f) })
	dspDevice.RegisterCallback(func(b []byte) {
		for _, c := range b {
			dspParser.Feed(c)
		}
	})

	// Raw panel-MCU bytes are republished onto the event queue rather than
	// decoded by a framed-message parser: the panel link carries fixed-size
	// reports, not MODULE/SYSTEM frames.
	panelDevice.RegisterCallback(func(b []byte) {
		events.Publish(event.MCUDataRX, b)
	})

	boot, err := newBootSequencer(*gpioChip, *resetPin, dspLink, image)
	if err != nil {
		log.Error("setting up boot sequencer", "err", err)
		os.Exit(1)
	}

	ticks := tick.New()
	ticks.RegisterUserTick(cfg.UserTickDivisor, events.Dispatch)
	ticks.Start()
	defer ticks.Stop()

	k := kernel.New(boot, &dspPollTask{dev: dspDevice, pending: pending})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watchUSB {
		go watchUSBEvents(ctx, log)
	}

	log.Info("cpu up", "device", *device, "dsp_link", cfg.DSPLinkPath, "panel_link", cfg.PanelLinkPath)
	runLoop(ctx, k)
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

func watchUSBEvents(ctx context.Context, log *logging.Logger) {
	w := usbhost.NewWatcher()
	err := w.Run(ctx, func(e usbhost.Event) {
		switch {
		case e.IsAttach():
			log.Info("usb attach", "vendor", e.VendorID, "product", e.ProductID, "path", e.DevPath)
		case e.IsDetach():
			log.Info("usb detach", "path", e.DevPath)
		}
	})
	if err != nil && ctx.Err() == nil {
		log.Warn("usb watcher stopped", "err", err)
	}
}

// resolveConfig prefers a host bench-rig config file over the embedded
// per-device JSON, since a developer pointing cmd/cpu at real hardware from
// a host build is exactly HostConfig's reason to exist.
func resolveConfig(device string) (config.Device, error) {
	if host, err := config.LoadHostConfig(); err == nil {
		return config.Device{
			DSPLinkPath:     host.DSPLink,
			PanelLinkPath:   host.PanelLink,
			PanelBaud:       host.PanelBaud,
			BootImagePath:   host.BootImage,
			UserTickDivisor: 0,
		}, nil
	}
	return config.LoadEmbedded(device)
}

// dspPollTask is the DSP-SPI kernel task spec §4.D names: every iteration,
// poll the DSP device if and only if a reply is outstanding.
type dspPollTask struct {
	dev     *transport.Device
	pending *protocol.Pending
}

func (t *dspPollTask) Name() string { return "dsp-spi" }
func (t *dspPollTask) TaskInit(ctx context.Context) errcode.Code { return errcode.Success }
func (t *dspPollTask) Step(ctx context.Context) errcode.Code {
	t.pending.PollWhilePending(t.dev)
	return errcode.Success
}
func (t *dspPollTask) ErrorHook() {}

// newBootSequencer wires bootseq.Sequencer to a GPIO reset line (when
// gpioChip/resetPin are configured) and the raw DSP link for the
// bulk/format-switch operations the boot transfer needs, bypassing
// dspDevice's TX ring entirely per spec §4.E.
func newBootSequencer(gpioChip string, resetPin int, link devlink.Link, image []byte) (*bootseq.Sequencer, error) {
	reset, err := newResetLine(gpioChip, resetPin)
	if err != nil {
		return nil, err
	}
	adapter := &serialBootAdapter{link: link}
	return bootseq.New(reset, adapter, adapter, image), nil
}

// newResetLine opens a single gpiochip line for the DSP reset pin directly
// via go-gpiocdev, rather than through gpioport.Port: Port models the
// firmware's 16-bit port registers and always requests portWidth lines as
// a block, which doesn't fit a single dedicated reset pin.
func newResetLine(gpioChip string, resetPin int) (bootseq.ResetLine, error) {
	if gpioChip == "" || resetPin < 0 {
		return noopResetLine{}, nil
	}
	chip, err := gpiocdev.NewChip(gpioChip)
	if err != nil {
		return nil, fmt.Errorf("cpu: opening %s: %w", gpioChip, err)
	}
	defer chip.Close()
	line, err := chip.RequestLine(resetPin, gpiocdev.AsOutput())
	if err != nil {
		return nil, fmt.Errorf("cpu: requesting DSP reset line %d: %w", resetPin, err)
	}
	return &gpioResetLine{line: line}, nil
}

// noopResetLine stands in when no GPIO chip is configured (e.g. running
// cmd/cpu against a simulated DSP link with no physical reset pin to
// drive); the boot sequencer still walks its full state progression.
type noopResetLine struct{}

func (noopResetLine) SetReset(asserted bool) error { return nil }

type gpioResetLine struct{ line *gpiocdev.Line }

func (r *gpioResetLine) SetReset(asserted bool) error {
	v := 0
	if asserted {
		v = 1
	}
	return r.line.SetValue(v)
}

// serialBootAdapter implements both bootseq.SPIFormatter and
// bootseq.BulkWriter directly over the raw link: a host serial/unix-socket
// link has no SPI clock format to switch, so SetBootFormat/SetRuntimeFormat
// are no-ops, and WriteAll ships the image as one uninterrupted write.
type serialBootAdapter struct{ link devlink.Link }

func (a *serialBootAdapter) SetBootFormat() error    { return nil }
func (a *serialBootAdapter) SetRuntimeFormat() error { return nil }
func (a *serialBootAdapter) WriteAll(p []byte) error {
	_, err := a.link.Write(p)
	return err
}
