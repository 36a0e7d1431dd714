// internal/config/config.go
package config

type Config struct {
	AP     APConfig      `yaml:"ap"`
	Host   HostConfig    `yaml:"host"`
	Radio  RadioConfig   `yaml:"radio"`
	Status *StatusConfig `yaml:"status"` // optional, opt-in
	HTTP   *HTTPConfig   `yaml:"http"`   // optional, opt-in
	Log    LogConfig     `yaml:"log"`
}

// ---- AP ----

type APConfig struct {
	MAC              string       `yaml:"mac"`
	ProtocolVersion  *uint16      `yaml:"protocol_version"`
	RegistryCapacity int          `yaml:"registry_capacity"`
	Timing           TimingConfig `yaml:"timing"`
}

type TimingConfig struct {
	CooldownMs      int `yaml:"cooldown_ms"`
	ForceRefetchMs  int `yaml:"force_refetch_ms"`
	AckFirstBlockMs int `yaml:"ack_first_block_ms"`
	AckFetchMs      int `yaml:"ack_fetch_ms"`
	AckCachedMs     int `yaml:"ack_cached_ms"`
	HousekeepingS   int `yaml:"housekeeping_s"`
	NudgeEvery      int `yaml:"nudge_every"`
	IdleSleepMs     int `yaml:"idle_sleep_ms"`
}

// ---- HOST SERIAL ----

type HostConfig struct {
	Device    string `yaml:"device"`
	BaudRate  int    `yaml:"baud_rate"`
	DataBits  int    `yaml:"data_bits"`
	StopBits  int    `yaml:"stop_bits"`
	Parity    string `yaml:"parity"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- RADIO ----

type RadioConfig struct {
	Driver string `yaml:"driver"` // udp | stub
	Listen string `yaml:"listen"`
	Peer   string `yaml:"peer"`
}

// ---- STATUS EXPORT ----

type StatusConfig struct {
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	BaseSlot   uint16 `yaml:"base_slot"`
	IntervalMs int    `yaml:"interval_ms"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// ---- DIAGNOSTICS ----

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// ---- LOGGING ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text | json
}
