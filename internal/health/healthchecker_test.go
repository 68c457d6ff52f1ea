package health

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type flakyPinger struct {
	fail atomic.Bool
}

func (p *flakyPinger) HealthPing(ctx context.Context) error {
	if p.fail.Load() {
		return fmt.Errorf("down")
	}
	return nil
}

func TestPingCheckerTracksTarget(t *testing.T) {
	p := &flakyPinger{}
	c := NewPingChecker("store", p, zerolog.Nop())
	assert.False(t, c.IsHealthy())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx, 10*time.Millisecond)

	assert.Eventually(t, c.IsHealthy, time.Second, 5*time.Millisecond)

	p.fail.Store(true)
	assert.Eventually(t, func() bool { return !c.IsHealthy() }, time.Second, 5*time.Millisecond)
}

func TestServiceHealthCheckerAggregates(t *testing.T) {
	up := NewPingChecker("a", &flakyPinger{}, zerolog.Nop())
	down := NewPingChecker("b", &flakyPinger{}, zerolog.Nop())
	up.healthy.Store(1)

	svc := NewServiceHealthChecker(up, down)
	assert.False(t, svc.IsHealthy())

	down.healthy.Store(1)
	assert.True(t, svc.IsHealthy())
}
