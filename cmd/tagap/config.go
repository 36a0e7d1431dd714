// cmd/tagap/config.go
package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tamzrod/tag-ap/internal/config"
)

func configFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "path to the AP YAML config",
		Value:       "tagap.yaml",
		Destination: dst,
	}
}

// loadConfig loads, validates and normalizes the config at path.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}
