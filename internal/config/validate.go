// internal/config/validate.go
package config

import (
	"fmt"
	"strings"

	"github.com/tamzrod/tag-ap/internal/proto"
	"github.com/tamzrod/tag-ap/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// AP IDENTITY
	// ------------------------------------------------------------

	if cfg.AP.MAC == "" {
		return fmt.Errorf("ap.mac: required")
	}
	mac, err := proto.ParseMAC(cfg.AP.MAC)
	if err != nil {
		return fmt.Errorf("ap.mac: %w", err)
	}
	if mac.IsZero() {
		return fmt.Errorf("ap.mac: must not be all zero")
	}

	if c := cfg.AP.RegistryCapacity; c < 0 || c > 255 {
		return fmt.Errorf("ap.registry_capacity: %d out of range 0..255", c)
	}

	// ------------------------------------------------------------
	// TIMING
	// ------------------------------------------------------------

	t := cfg.AP.Timing
	nonNegative := []struct {
		key string
		v   int
	}{
		{"ap.timing.cooldown_ms", t.CooldownMs},
		{"ap.timing.force_refetch_ms", t.ForceRefetchMs},
		{"ap.timing.housekeeping_s", t.HousekeepingS},
		{"ap.timing.nudge_every", t.NudgeEvery},
		{"ap.timing.idle_sleep_ms", t.IdleSleepMs},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return fmt.Errorf("%s: must be >= 0, got %d", f.key, f.v)
		}
	}

	// pleaseWaitMs travels as u16
	ackDelays := []struct {
		key string
		v   int
	}{
		{"ap.timing.ack_first_block_ms", t.AckFirstBlockMs},
		{"ap.timing.ack_fetch_ms", t.AckFetchMs},
		{"ap.timing.ack_cached_ms", t.AckCachedMs},
	}
	for _, f := range ackDelays {
		if f.v < 0 || f.v > 0xFFFF {
			return fmt.Errorf("%s: %d out of range 0..65535", f.key, f.v)
		}
	}

	// ------------------------------------------------------------
	// HOST SERIAL
	// ------------------------------------------------------------

	h := cfg.Host
	if h.Device == "" {
		return fmt.Errorf("host.device: required")
	}
	if h.BaudRate < 0 {
		return fmt.Errorf("host.baud_rate: must be >= 0, got %d", h.BaudRate)
	}
	if h.DataBits != 0 && (h.DataBits < 5 || h.DataBits > 8) {
		return fmt.Errorf("host.data_bits: %d out of range 5..8", h.DataBits)
	}
	if h.StopBits != 0 && h.StopBits != 1 && h.StopBits != 2 {
		return fmt.Errorf("host.stop_bits: must be 1 or 2, got %d", h.StopBits)
	}
	switch strings.ToUpper(h.Parity) {
	case "", "N", "E", "O":
	default:
		return fmt.Errorf("host.parity: must be N, E or O, got %q", h.Parity)
	}
	if h.TimeoutMs < 0 {
		return fmt.Errorf("host.timeout_ms: must be >= 0, got %d", h.TimeoutMs)
	}

	// ------------------------------------------------------------
	// RADIO
	// ------------------------------------------------------------

	switch cfg.Radio.Driver {
	case "", "udp":
		if cfg.Radio.Listen == "" {
			return fmt.Errorf("radio.listen: required for the udp driver")
		}
	case "stub":
	default:
		return fmt.Errorf("radio.driver: unknown driver %q", cfg.Radio.Driver)
	}

	// ------------------------------------------------------------
	// STATUS EXPORT (OPT-IN)
	// ------------------------------------------------------------

	if s := cfg.Status; s != nil {
		if s.Endpoint == "" {
			return fmt.Errorf("status.endpoint: required when status is set")
		}
		if s.IntervalMs < 0 || s.TimeoutMs < 0 {
			return fmt.Errorf("status: interval_ms and timeout_ms must be >= 0")
		}
		// the block must stay inside the 16-bit register space
		if (uint32(s.BaseSlot)+1)*status.SlotsPerBlock > 0x10000 {
			return fmt.Errorf("status.base_slot: %d places the block past register 65535", s.BaseSlot)
		}
	}

	// ------------------------------------------------------------
	// DIAGNOSTICS (OPT-IN)
	// ------------------------------------------------------------

	if cfg.HTTP != nil && cfg.HTTP.Listen == "" {
		return fmt.Errorf("http.listen: required when http is set")
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format: must be text or json, got %q", cfg.Log.Format)
	}

	return nil
}
