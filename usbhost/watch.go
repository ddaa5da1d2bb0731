// Package usbhost detects USB-to-host attach/detach events — the
// "USB-to-host traffic" responsibility spec.md §1 names as in scope for
// the wire protocol/transport layer but whose device-presence detection
// the distillation otherwise left unaddressed. It watches the udev
// netlink monitor for usb subsystem events and republishes them as
// attach/detach callbacks.
package usbhost

import (
	"context"

	"github.com/jochenvg/go-udev"
)

// Event is one USB device attach or detach notification.
type Event struct {
	Action    string // "add" or "remove"
	DevPath   string
	VendorID  string
	ProductID string
}

// IsAttach reports whether e represents a device attach, as opposed to a
// detach or any other udev action (e.g. "change").
func (e Event) IsAttach() bool { return e.Action == "add" }

// IsDetach reports whether e represents a device detach.
func (e Event) IsDetach() bool { return e.Action == "remove" }

// Watcher monitors the udev "usb" subsystem and delivers Events to a
// registered callback until its context is cancelled.
type Watcher struct {
	u *udev.Udev
}

// NewWatcher returns a Watcher ready to Run.
func NewWatcher() *Watcher {
	return &Watcher{u: udev.New()}
}

// Run watches for USB device add/remove events until ctx is cancelled,
// invoking onEvent for each one. It blocks until ctx is done or the
// monitor's channel closes.
func (w *Watcher) Run(ctx context.Context, onEvent func(Event)) error {
	mon := w.u.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("usb"); err != nil {
		return err
	}

	ch, errCh, err := mon.DeviceChan(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			if err != nil {
				return err
			}
		case dev, ok := <-ch:
			if !ok {
				return nil
			}
			onEvent(Event{
				Action:    dev.Action(),
				DevPath:   dev.Devpath(),
				VendorID:  dev.PropertyValue("ID_VENDOR_ID"),
				ProductID: dev.PropertyValue("ID_MODEL_ID"),
			})
		}
	}
}
