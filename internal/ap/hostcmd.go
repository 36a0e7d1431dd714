// internal/ap/hostcmd.go
package ap

import (
	"errors"

	"github.com/tamzrod/tag-ap/internal/host"
	"github.com/tamzrod/tag-ap/internal/registry"
)

// handleHostByte advances the control-channel framer and applies its effect.
func (e *Engine) handleHostByte(c byte) {
	var eff host.Effect
	e.rx, eff = host.Step(e.rx, c)

	var err error
	switch eff.Kind {
	case host.EffectNone:
		return

	case host.EffectPushOffer:
		pd := eff.Pending
		_, uerr := e.reg.Upsert(registry.Entry{
			Offer:        pd.Offer,
			AttemptsLeft: pd.AttemptsLeft,
			MAC:          pd.MAC,
		})
		switch {
		case errors.Is(uerr, registry.ErrFull):
			e.counters.QueueFull++
			e.log.Warn("ap: offer rejected, registry full", "tag", pd.MAC.String())
			err = e.note.QueueFull()
		default:
			e.log.Info("ap: offer queued",
				"tag", pd.MAC.String(),
				"version", pd.Offer.Version,
				"type", pd.Offer.Type.String(),
				"attempts", pd.AttemptsLeft,
			)
			err = e.note.Ack()
		}

	case host.EffectCancelVersion:
		n := e.reg.CancelVersion(eff.Pending.Offer.Version)
		e.log.Info("ap: offers cancelled", "version", eff.Pending.Offer.Version, "count", n)
		err = e.note.Ack()

	case host.EffectStageEvent:
		e.event = eff.Event
		err = e.note.Ack()

	case host.EffectEventMode:
		e.log.Info("ap: event mode", "on", eff.On)
		err = e.note.Ack()

	case host.EffectQueryVersion:
		err = e.note.Version(e.cfg.ProtocolVersion)

	case host.EffectQueryReady:
		err = e.note.Ready()

	case host.EffectReset:
		e.Reset()

	case host.EffectNak:
		e.counters.HostNaks++
		e.log.Warn("ap: host message failed checksum")
		err = e.note.Nak()

	case host.EffectBlockByte:
		if eff.Offset == 0 {
			e.xfer.BeginBlockLoad()
		}
		e.xfer.LoadBlockByte(eff.Offset, eff.Byte)

	case host.EffectBlockDone:
		e.xfer.LoadBlockByte(eff.Offset, eff.Byte)
		e.counters.BlocksLoaded++
		e.xfer.EndBlockLoad()
	}

	if err != nil {
		e.log.Warn("ap: host reply failed", "effect", eff.Kind.String(), "err", err)
	}
}
