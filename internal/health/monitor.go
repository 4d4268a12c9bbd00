// Package health tracks the liveness of the service's collaborators with a periodic heartbeat.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Nardi-Minardi/fews-be-sub001/internal/logger"
	"github.com/Nardi-Minardi/fews-be-sub001/internal/metrics"
)

// Checker is one collaborator: PostGIS, Redis, the hierarchy DB.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a ping function into a Checker.
type CheckFunc struct {
	N  string
	Fn func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.N }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

type Status struct {
	Healthy bool      `json:"healthy"`
	Last    time.Time `json:"last"`
	Error   string    `json:"error,omitempty"`
}

// Monitor runs every registered checker on an interval. Checkers start healthy so a fresh
// process does not report unready before its first beat.
type Monitor struct {
	mu       sync.RWMutex
	checks   map[string]Checker
	st       map[string]Status
	interval time.Duration
	timeout  time.Duration
}

func NewMonitor(interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Monitor{
		checks:   make(map[string]Checker),
		st:       make(map[string]Status),
		interval: interval,
		timeout:  3 * time.Second,
	}
}

func (m *Monitor) Register(c Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checks[c.Name()] = c
	m.st[c.Name()] = Status{Healthy: true, Last: time.Now()}
	metrics.HealthStatus.WithLabelValues(c.Name()).Set(1)
	logger.L().Info("health_registered", "name", c.Name())
}

// Start beats until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	t := time.NewTicker(m.interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.CheckAll(ctx)
			}
		}
	}()
}

// CheckAll runs every checker once. Checks run outside the lock.
func (m *Monitor) CheckAll(ctx context.Context) {
	m.mu.RLock()
	cs := make([]Checker, 0, len(m.checks))
	for _, c := range m.checks {
		cs = append(cs, c)
	}
	m.mu.RUnlock()

	for _, c := range cs {
		cctx, cancel := context.WithTimeout(ctx, m.timeout)
		err := c.Check(cctx)
		cancel()
		s := Status{Healthy: err == nil, Last: time.Now()}
		if err != nil {
			s.Error = err.Error()
			logger.L().Warn("health_check_fail", "name", c.Name(), "err", err)
			metrics.HealthStatus.WithLabelValues(c.Name()).Set(0)
		} else {
			logger.L().Debug("health_check_ok", "name", c.Name())
			metrics.HealthStatus.WithLabelValues(c.Name()).Set(1)
		}
		m.mu.Lock()
		m.st[c.Name()] = s
		m.mu.Unlock()
	}
}

// Healthy reports whether every checker passed its last beat.
func (m *Monitor) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.st {
		if !s.Healthy {
			return false
		}
	}
	return true
}

func (m *Monitor) Snapshot() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Status, len(m.st))
	for k, v := range m.st {
		out[k] = v
	}
	return out
}

// Names lists registered checkers in order.
func (m *Monitor) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.checks))
	for k := range m.checks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
