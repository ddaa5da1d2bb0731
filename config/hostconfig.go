package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// HostConfig points cmd/cpu/cmd/dsp at a bench-test link configuration
// without recompiling — the embedded-target Device settings are normally
// compiled in, but a host developer wiring up real serial/SPI hardware
// wants to change link paths and baud rates without a rebuild.
type HostConfig struct {
	Device     string `yaml:"device"`
	DSPLink    string `yaml:"dsp_link"`
	PanelLink  string `yaml:"panel_link"`
	PanelBaud  int    `yaml:"panel_baud"`
	BootImage  string `yaml:"boot_image"`
	GPIOChip   string `yaml:"gpio_chip,omitempty"`
}

// hostConfigSearchPath mirrors deviceid.go's current-directory-then-
// installed-locations search order, adapted to Freetribe's bench-rig
// config instead of an APRS device-identifier table.
var hostConfigSearchPath = []string{
	"freetribe.yaml",
	"config/freetribe.yaml",
	"/etc/freetribe/freetribe.yaml",
}

// LoadHostConfig searches hostConfigSearchPath in order and parses the
// first file found. It returns an error naming every location tried if
// none exist, rather than silently falling back to defaults.
func LoadHostConfig() (HostConfig, error) {
	var data []byte
	var foundPath string
	for _, path := range hostConfigSearchPath {
		b, err := os.ReadFile(path)
		if err == nil {
			data = b
			foundPath = path
			break
		}
	}
	if data == nil {
		return HostConfig{}, fmt.Errorf("config: no host config found, tried %v", hostConfigSearchPath)
	}

	var cfg HostConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return HostConfig{}, fmt.Errorf("config: parsing %s: %w", foundPath, err)
	}
	return cfg, nil
}
