// cmd/tagap/check.go
package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tamzrod/tag-ap/internal/ap"
)

func checkCmd() *cli.Command {
	var path string

	return &cli.Command{
		Name:  "check",
		Usage: "Validate a config file without opening any device",
		Flags: []cli.Flag{configFlag(&path)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(path)
			if err != nil {
				return err
			}
			ecfg, err := ap.BuildConfig(cfg)
			if err != nil {
				return err
			}

			fmt.Printf("mac:       %s\n", ecfg.MAC)
			fmt.Printf("protocol:  %04X\n", ecfg.ProtocolVersion)
			fmt.Printf("capacity:  %d\n", ecfg.RegistryCapacity)
			fmt.Printf("host:      %s @ %d\n", cfg.Host.Device, cfg.Host.BaudRate)
			fmt.Printf("radio:     %s\n", cfg.Radio.Driver)
			if cfg.Status != nil {
				fmt.Printf("status:    %s unit=%d slot=%d\n", cfg.Status.Endpoint, cfg.Status.UnitID, cfg.Status.BaseSlot)
			}
			if cfg.HTTP != nil {
				fmt.Printf("http:      %s\n", cfg.HTTP.Listen)
			}
			fmt.Println("config ok")
			return nil
		},
	}
}
