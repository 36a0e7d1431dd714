// internal/ap/builder.go
package ap

import (
	"fmt"
	"time"

	"github.com/tamzrod/tag-ap/internal/clock"
	cfg "github.com/tamzrod/tag-ap/internal/config"
	"github.com/tamzrod/tag-ap/internal/host"
	"github.com/tamzrod/tag-ap/internal/logger"
	"github.com/tamzrod/tag-ap/internal/proto"
	"github.com/tamzrod/tag-ap/internal/radio"
	"github.com/tamzrod/tag-ap/internal/transfer"
)

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// BuildConfig converts a validated and normalized config into engine config.
func BuildConfig(c *cfg.Config) (Config, error) {
	mac, err := proto.ParseMAC(c.AP.MAC)
	if err != nil {
		return Config{}, fmt.Errorf("ap: %w", err)
	}

	out := DefaultConfig(mac)
	if c.AP.ProtocolVersion != nil {
		out.ProtocolVersion = *c.AP.ProtocolVersion
	}
	out.RegistryCapacity = c.AP.RegistryCapacity

	t := c.AP.Timing
	out.Transfer = transfer.Params{
		CoolDown:      ms(t.CooldownMs),
		ForceRefetch:  ms(t.ForceRefetchMs),
		AckFirstBlock: ms(t.AckFirstBlockMs),
		AckFetch:      ms(t.AckFetchMs),
		AckCached:     ms(t.AckCachedMs),
	}
	out.Housekeeping = time.Duration(t.HousekeepingS) * time.Second
	out.NudgeEvery = t.NudgeEvery
	out.IdleSleep = ms(t.IdleSleepMs)
	return out, nil
}

// OpenRadio opens the configured radio driver.
func OpenRadio(c cfg.RadioConfig, log logger.Logger) (radio.Driver, error) {
	switch c.Driver {
	case "stub":
		return radio.NewStub(), nil
	case "udp", "":
		return radio.ListenUDP(c.Listen, c.Peer, log)
	default:
		return nil, fmt.Errorf("ap: unknown radio driver %q", c.Driver)
	}
}

// Build opens both transports and constructs the engine.
// Startup failures are returned; the caller treats them as fatal.
func Build(c *cfg.Config, log logger.Logger) (*Engine, func() error, error) {
	ecfg, err := BuildConfig(c)
	if err != nil {
		return nil, nil, err
	}

	drv, err := OpenRadio(c.Radio, log)
	if err != nil {
		return nil, nil, err
	}

	link, err := host.Open(host.SerialConfig{
		Device:   c.Host.Device,
		BaudRate: c.Host.BaudRate,
		DataBits: c.Host.DataBits,
		StopBits: c.Host.StopBits,
		Parity:   c.Host.Parity,
		Timeout:  ms(c.Host.TimeoutMs),
	}, log)
	if err != nil {
		_ = drv.Close()
		return nil, nil, err
	}

	e, err := New(ecfg, clock.NewSystem(), drv, link, log)
	if err != nil {
		_ = link.Close()
		_ = drv.Close()
		return nil, nil, err
	}

	closeAll := func() error {
		lerr := link.Close()
		rerr := drv.Close()
		if lerr != nil {
			return lerr
		}
		return rerr
	}
	return e, closeAll, nil
}
