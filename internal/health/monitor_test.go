package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/metrics"
)

func TestMonitorCheckAll(t *testing.T) {
	m := NewMonitor(time.Hour)
	var redisDown atomic.Bool
	m.Register(CheckFunc{N: "postgis", Fn: func(context.Context) error { return nil }})
	m.Register(CheckFunc{N: "redis", Fn: func(context.Context) error {
		if redisDown.Load() {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	}})
	assert.True(t, m.Healthy())
	assert.Equal(t, []string{"postgis", "redis"}, m.Names())

	redisDown.Store(true)
	m.CheckAll(context.Background())
	assert.False(t, m.Healthy())
	snap := m.Snapshot()
	assert.True(t, snap["postgis"].Healthy)
	assert.False(t, snap["redis"].Healthy)
	assert.Contains(t, snap["redis"].Error, "refused")
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.HealthStatus.WithLabelValues("redis")))

	redisDown.Store(false)
	m.CheckAll(context.Background())
	assert.True(t, m.Healthy())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HealthStatus.WithLabelValues("redis")))
}

func TestMonitorStartBeats(t *testing.T) {
	m := NewMonitor(10 * time.Millisecond)
	var n atomic.Int32
	m.Register(CheckFunc{N: "hierarchy", Fn: func(context.Context) error { n.Add(1); return nil }})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)
	assert.Eventually(t, func() bool { return n.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
