// Package config loads per-device configuration: embedded flash-resident
// JSON blobs for the firmware target (adapted from services/config's
// embedded-config-lookup pattern), and an optional host-only YAML file for
// pointing cmd/cpu/cmd/dsp at a bench-test link without recompiling.
package config

import (
	"errors"

	"github.com/andreyvit/tinyjson"

	"freetribe/util"
)

// panelBaudMin/panelBaudMax bound the MIDI-TRS UART baud a decoded config
// may request; a malformed or garbled embedded blob clamps to range rather
// than driving the UART at a nonsensical rate.
const (
	panelBaudMin = 9600
	panelBaudMax = 1000000
)

// Device is the decoded per-device configuration: transport link settings
// for the CPU<->DSP and CPU<->panel-MCU/MIDI-TRS links, plus the systick
// user-tick divisor.
type Device struct {
	DSPLinkPath      string
	PanelLinkPath    string
	PanelBaud        int
	UserTickDivisor  uint32
	BootImagePath    string
}

// embeddedConfigs holds the raw JSON for each known device ID, populated
// at build time or during development — the same role
// services/config/defaultconfigs.go's embeddedConfigs map played for the
// teacher's HAL config, now carrying Freetribe link settings instead of
// power/bridge/heartbeat settings.
var embeddedConfigs = map[string][]byte{
	"rp2040-bench": []byte(`{
		"dsp_link_path": "/dev/spidev0.0",
		"panel_link_path": "/dev/ttyACM0",
		"panel_baud": 31250,
		"user_tick_divisor": 0,
		"boot_image_path": "/lib/firmware/freetribe/dsp.ldr"
	}`),
}

// EmbeddedConfigLookup allows overriding how configs are resolved, the
// same override point services/config.go exposed for tests.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// LoadEmbedded decodes the named device's embedded JSON configuration.
func LoadEmbedded(device string) (Device, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return Device{}, util.Errf("config: no embedded config for device %q", device)
	}

	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return Device{}, errors.New("config: embedded config is not a JSON object")
	}

	var d Device
	if s, ok := m["dsp_link_path"].(string); ok {
		d.DSPLinkPath = s
	}
	if s, ok := m["panel_link_path"].(string); ok {
		d.PanelLinkPath = s
	}
	if n, ok := m["panel_baud"].(float64); ok {
		d.PanelBaud = util.ClampInt(int(n), panelBaudMin, panelBaudMax)
	}
	if n, ok := m["user_tick_divisor"].(float64); ok {
		d.UserTickDivisor = uint32(n)
	}
	if s, ok := m["boot_image_path"].(string); ok {
		d.BootImagePath = s
	}
	return d, nil
}
