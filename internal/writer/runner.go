// internal/writer/runner.go
package writer

import (
	"context"
	"time"

	"github.com/tamzrod/tag-ap/internal/logger"
)

// Run writes the current snapshot on every tick until ctx is done.
// One goroutine. No overlap. Failures are logged, never fatal.
func Run(ctx context.Context, interval time.Duration, src SnapshotSource, sw StatusWriter, log logger.Logger) {
	if err := sw.WriteStatus(src()); err != nil {
		log.Warn("status write failed on start", "err", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := sw.WriteStatus(src())
			switch {
			case err != nil && !failing:
				log.Warn("status write failed", "err", err)
				failing = true
			case err == nil && failing:
				log.Info("status write recovered")
				failing = false
			}
		}
	}
}
