// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	"github.com/tamzrod/tag-ap/internal/config"
	wmodbus "github.com/tamzrod/tag-ap/internal/writer/modbus"
)

// BuildPlan converts the status config into a plan.
// A nil plan means status export is disabled.
// Assumes config has already passed validation and normalization.
func BuildPlan(c *config.StatusConfig) (*StatusPlan, error) {
	if c == nil {
		return nil, nil
	}
	if c.Endpoint == "" {
		return nil, errors.New("writer: status.endpoint required")
	}
	return &StatusPlan{
		Endpoint: c.Endpoint,
		UnitID:   c.UnitID,
		BaseSlot: c.BaseSlot,
		Interval: time.Duration(c.IntervalMs) * time.Millisecond,
		Timeout:  time.Duration(c.TimeoutMs) * time.Millisecond,
	}, nil
}

// BuildEndpointClient creates the Modbus TCP client for the plan.
func BuildEndpointClient(p *StatusPlan) (*wmodbus.EndpointClient, error) {
	return wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: p.Endpoint,
		Timeout:  p.Timeout,
	})
}
