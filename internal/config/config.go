// Package config loads the YAML configuration file that selects the device
// and provides credentials for the service integrations.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultBrightness is used when the file does not set one.
const DefaultBrightness = 30

// Config is the top-level configuration.
type Config struct {
	Device DeviceConfig `yaml:"device"`
	Remo   RemoConfig   `yaml:"remo"`
	Hue    HueConfig    `yaml:"hue"`
}

// DeviceConfig selects and adjusts the physical device.
type DeviceConfig struct {
	Index      int `yaml:"index"`
	Brightness int `yaml:"brightness"`
}

// RemoConfig holds Nature Remo credentials and target IDs. An empty section
// disables the integration.
type RemoConfig struct {
	Token       string `yaml:"token"`
	ApplianceID string `yaml:"appliance_id"`
	DeviceID    string `yaml:"device_id"`
}

// Enabled reports whether the climate pages should be built.
func (c RemoConfig) Enabled() bool {
	return c.Token != "" && c.ApplianceID != ""
}

// HueConfig holds Hue bridge credentials and the lights to expose. An empty
// Bridge means discover one at startup; an empty section disables the
// integration.
type HueConfig struct {
	Bridge string        `yaml:"bridge"`
	AppKey string        `yaml:"app_key"`
	Lights []LightConfig `yaml:"lights"`
	Groups []LightConfig `yaml:"groups"`
}

// Enabled reports whether the lighting page should be built.
func (c HueConfig) Enabled() bool {
	return c.AppKey != "" && len(c.Lights)+len(c.Groups) > 0
}

// LightConfig binds one light or grouped light to a key.
type LightConfig struct {
	ID  string `yaml:"id"`
	Key int    `yaml:"key"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	conf := &Config{}
	conf.applyDefaults()
	return conf
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var conf Config
	if err := yaml.Unmarshal(raw, &conf); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	conf.applyDefaults()
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Config) applyDefaults() {
	if c.Device.Brightness == 0 {
		c.Device.Brightness = DefaultBrightness
	}
	if c.Remo.Token == "" {
		c.Remo.Token = os.Getenv("NATURE_REMO_TOKEN")
	}
	if c.Hue.AppKey == "" {
		c.Hue.AppKey = os.Getenv("HUE_APP_KEY")
	}
}

func (c *Config) validate() error {
	if c.Device.Index < 0 {
		return fmt.Errorf("device.index must not be negative")
	}
	if c.Device.Brightness < 0 || c.Device.Brightness > 100 {
		return fmt.Errorf("device.brightness must be between 0 and 100")
	}
	for _, light := range append(append([]LightConfig(nil), c.Hue.Lights...), c.Hue.Groups...) {
		if light.ID == "" {
			return fmt.Errorf("hue light entries need an id")
		}
		if light.Key < 0 {
			return fmt.Errorf("hue light %s: key must not be negative", light.ID)
		}
	}
	return nil
}
