// Package health tracks liveness of the service's dependencies.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthPinger is implemented by components that expose a health probe.
// HealthPing must return nil when the component is healthy.
type HealthPinger interface {
	HealthPing(ctx context.Context) error
}

// Checker is a component-level health monitor.
type Checker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// PingChecker polls a HealthPinger in the background and caches the
// result.
type PingChecker struct {
	name    string
	target  HealthPinger
	healthy atomic.Int32
	log     zerolog.Logger
}

func NewPingChecker(name string, target HealthPinger, log zerolog.Logger) *PingChecker {
	return &PingChecker{name: name, target: target, log: log}
}

func (c *PingChecker) Name() string    { return c.name }
func (c *PingChecker) IsHealthy() bool { return c.healthy.Load() == 1 }

// Start polls until ctx is cancelled. The first probe runs immediately so
// the service does not report DOWN for a full interval after boot.
func (c *PingChecker) Start(ctx context.Context, interval time.Duration) {
	probe := func() {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := c.target.HealthPing(pctx); err != nil {
			if c.healthy.Swap(0) == 1 {
				c.log.Error().Err(err).Str("component", c.name).Msg("health: DOWN")
			}
			return
		}
		if c.healthy.Swap(1) == 0 {
			c.log.Info().Str("component", c.name).Msg("health: UP")
		}
	}

	probe()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

// ServiceHealthChecker aggregates component checkers into one flag.
type ServiceHealthChecker struct {
	deps []Checker
}

func NewServiceHealthChecker(deps ...Checker) *ServiceHealthChecker {
	return &ServiceHealthChecker{deps: deps}
}

// IsHealthy reports true only when every dependency is healthy.
func (h *ServiceHealthChecker) IsHealthy() bool {
	for _, c := range h.deps {
		if !c.IsHealthy() {
			return false
		}
	}
	return true
}

// Start launches every component checker in its own goroutine.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	for _, c := range h.deps {
		go c.Start(ctx, interval)
	}
}
