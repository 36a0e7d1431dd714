// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

// helper to build a minimal valid config quickly
func valid() *Config {
	return &Config{
		AP: APConfig{
			MAC: "00:01:02:03:04:05:06:07",
		},
		Host: HostConfig{
			Device: "/dev/ttyUSB0",
		},
		Radio: RadioConfig{
			Driver: "udp",
			Listen: "127.0.0.1:7400",
		},
	}
}

// ---- tests ----

func TestValidate_Minimal(t *testing.T) {
	if err := Validate(valid()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := valid()
	before := *cfg
	_ = Validate(cfg)
	if cfg.AP != before.AP || cfg.Host != before.Host || cfg.Radio != before.Radio || cfg.Log != before.Log {
		t.Fatalf("Validate mutated configuration")
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		key    string
	}{
		{"missing mac", func(c *Config) { c.AP.MAC = "" }, "ap.mac"},
		{"bad mac", func(c *Config) { c.AP.MAC = "zz" }, "ap.mac"},
		{"zero mac", func(c *Config) { c.AP.MAC = "0000000000000000" }, "ap.mac"},
		{"capacity", func(c *Config) { c.AP.RegistryCapacity = 256 }, "ap.registry_capacity"},
		{"negative cooldown", func(c *Config) { c.AP.Timing.CooldownMs = -1 }, "ap.timing.cooldown_ms"},
		{"ack overflow", func(c *Config) { c.AP.Timing.AckFirstBlockMs = 70000 }, "ap.timing.ack_first_block_ms"},
		{"missing device", func(c *Config) { c.Host.Device = "" }, "host.device"},
		{"data bits", func(c *Config) { c.Host.DataBits = 9 }, "host.data_bits"},
		{"stop bits", func(c *Config) { c.Host.StopBits = 3 }, "host.stop_bits"},
		{"parity", func(c *Config) { c.Host.Parity = "X" }, "host.parity"},
		{"udp without listen", func(c *Config) { c.Radio.Listen = "" }, "radio.listen"},
		{"unknown driver", func(c *Config) { c.Radio.Driver = "spi" }, "radio.driver"},
		{"status without endpoint", func(c *Config) { c.Status = &StatusConfig{} }, "status.endpoint"},
		{"status slot overflow", func(c *Config) {
			c.Status = &StatusConfig{Endpoint: "127.0.0.1:502", BaseSlot: 3300}
		}, "status.base_slot"},
		{"http without listen", func(c *Config) { c.HTTP = &HTTPConfig{} }, "http.listen"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.HasPrefix(err.Error(), tt.key) {
				t.Fatalf("error should name %q, got %v", tt.key, err)
			}
		})
	}
}

func TestValidate_StubNeedsNoListen(t *testing.T) {
	cfg := valid()
	cfg.Radio = RadioConfig{Driver: "stub"}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
