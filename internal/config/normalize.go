// internal/config/normalize.go
package config

import (
	"strings"

	"github.com/tamzrod/tag-ap/internal/version"
)

// Defaults applied by Normalize.
const (
	DefaultProtocolVersion  = version.Protocol
	DefaultRegistryCapacity = 64

	DefaultCooldownMs      = 1200
	DefaultForceRefetchMs  = 380
	DefaultAckFirstBlockMs = 200
	DefaultAckFetchMs      = 100
	DefaultAckCachedMs     = 50
	DefaultHousekeepingS   = 60
	DefaultNudgeEvery      = 10000
	DefaultIdleSleepMs     = 1

	DefaultBaudRate      = 115200
	DefaultDataBits      = 8
	DefaultStopBits      = 1
	DefaultParity        = "N"
	DefaultHostTimeoutMs = 50

	DefaultStatusIntervalMs = 1000
	DefaultStatusTimeoutMs  = 2000
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	// ------------------------------------------------------------
	// AP
	// ------------------------------------------------------------

	if cfg.AP.ProtocolVersion == nil {
		v := DefaultProtocolVersion
		cfg.AP.ProtocolVersion = &v
	}
	setDefault(&cfg.AP.RegistryCapacity, DefaultRegistryCapacity)

	t := &cfg.AP.Timing
	setDefault(&t.CooldownMs, DefaultCooldownMs)
	setDefault(&t.ForceRefetchMs, DefaultForceRefetchMs)
	setDefault(&t.AckFirstBlockMs, DefaultAckFirstBlockMs)
	setDefault(&t.AckFetchMs, DefaultAckFetchMs)
	setDefault(&t.AckCachedMs, DefaultAckCachedMs)
	setDefault(&t.HousekeepingS, DefaultHousekeepingS)
	setDefault(&t.NudgeEvery, DefaultNudgeEvery)
	setDefault(&t.IdleSleepMs, DefaultIdleSleepMs)

	// ------------------------------------------------------------
	// HOST SERIAL
	// ------------------------------------------------------------

	h := &cfg.Host
	setDefault(&h.BaudRate, DefaultBaudRate)
	setDefault(&h.DataBits, DefaultDataBits)
	setDefault(&h.StopBits, DefaultStopBits)
	setDefault(&h.TimeoutMs, DefaultHostTimeoutMs)
	h.Parity = strings.ToUpper(h.Parity)
	if h.Parity == "" {
		h.Parity = DefaultParity
	}

	// ------------------------------------------------------------
	// RADIO
	// ------------------------------------------------------------

	if cfg.Radio.Driver == "" {
		cfg.Radio.Driver = "udp"
	}

	// ------------------------------------------------------------
	// STATUS (OPT-IN)
	// ------------------------------------------------------------

	if s := cfg.Status; s != nil {
		setDefault(&s.IntervalMs, DefaultStatusIntervalMs)
		setDefault(&s.TimeoutMs, DefaultStatusTimeoutMs)
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
