// cmd/tagap/run.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/tamzrod/tag-ap/internal/ap"
	"github.com/tamzrod/tag-ap/internal/httpapi"
	"github.com/tamzrod/tag-ap/internal/logger"
	"github.com/tamzrod/tag-ap/internal/status"
	"github.com/tamzrod/tag-ap/internal/version"
	"github.com/tamzrod/tag-ap/internal/writer"
)

func runCmd() *cli.Command {
	var path string

	return &cli.Command{
		Name:  "run",
		Usage: "Run the access point",
		Flags: []cli.Flag{configFlag(&path)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}

			log := logger.Open(os.Stderr, cfg.Log.Level, cfg.Log.Format)
			ctx = logger.WithContext(ctx, log)
			log.Info("tagap starting", "version", version.String(), "config", path)

			ctx, stop := signal.NotifyContext(ctx, shutdownSignals...)
			defer stop()

			// --------------------
			// Engine
			// --------------------

			e, closeEngine, err := ap.Build(cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := closeEngine(); err != nil {
					log.Warn("transport close failed", "err", err)
				}
			}()

			var wg sync.WaitGroup

			// --------------------
			// Status export (optional)
			// --------------------

			plan, err := writer.BuildPlan(cfg.Status)
			if err != nil {
				return err
			}
			if plan != nil {
				ep, err := writer.BuildEndpointClient(plan)
				if err != nil {
					return err
				}
				defer ep.Close()

				sw, _ := writer.NewStatusWriter(plan, ep)
				src := func() status.Snapshot { return e.Snapshot().Status() }
				wlog := log.With("component", "status", "endpoint", plan.Endpoint)

				wg.Add(1)
				go func() {
					defer wg.Done()
					writer.Run(ctx, plan.Interval, src, sw, wlog)
				}()
			}

			// --------------------
			// Diagnostics API (optional)
			// --------------------

			if cfg.HTTP != nil {
				hlog := log.With("component", "http")
				srv := httpapi.New(e, hlog)

				wg.Add(1)
				go func() {
					defer wg.Done()
					hlog.Info("diagnostics listening", "address", cfg.HTTP.Listen)
					if err := httpapi.Serve(ctx, cfg.HTTP.Listen, srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
						hlog.Error("diagnostics server stopped", "err", err)
					}
				}()
			}

			// --------------------
			// Poll loop (blocks)
			// --------------------

			e.Run(ctx)
			log.Info("tagap stopping")
			wg.Wait()
			return nil
		},
	}
}
