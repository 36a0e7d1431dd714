// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
ap:
  mac: "00:01:02:03:04:05:06:07"
  registry_capacity: 32
  timing:
    cooldown_ms: 1500
host:
  device: /dev/ttyUSB0
  baud_rate: 230400
radio:
  driver: udp
  listen: 127.0.0.1:7400
  peer: 127.0.0.1:7401
status:
  endpoint: 127.0.0.1:502
  unit_id: 3
  base_slot: 1
http:
  listen: 127.0.0.1:8080
log:
  level: debug
  format: json
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ap.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("sample config invalid: %v", err)
	}

	if cfg.AP.RegistryCapacity != 32 || cfg.AP.Timing.CooldownMs != 1500 {
		t.Fatalf("ap section: %+v", cfg.AP)
	}
	if cfg.Host.BaudRate != 230400 {
		t.Fatalf("host section: %+v", cfg.Host)
	}
	if cfg.Status == nil || cfg.Status.UnitID != 3 || cfg.Status.BaseSlot != 1 {
		t.Fatalf("status section: %+v", cfg.Status)
	}
	if cfg.HTTP == nil || cfg.HTTP.Listen != "127.0.0.1:8080" {
		t.Fatalf("http section: %+v", cfg.HTTP)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse([]byte("ap:\n  mac: x\n  colour: red\n")); err == nil {
		t.Fatalf("unknown key must be rejected")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(nil); err == nil {
		t.Fatalf("empty document must be rejected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("missing file must fail")
	}
}
