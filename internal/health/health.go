// Package health adapts the service's periodic self-check and watchdog
// to apcontrold's components: discovery agents and AP-manager state,
// in place of the teacher's message/session counters.
package health

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wifictl/apcontrold/internal/config"
)

// ComponentStatus is the last-observed health of one named component
// (a discovery agent, the AP manager, ...).
type ComponentStatus struct {
	Name      string
	Healthy   bool
	Message   string
	LastCheck time.Time
}

// Status is a point-in-time snapshot of the service's health.
type Status struct {
	Healthy         bool
	Timestamp       time.Time
	UptimeSeconds   int64
	AccessPoints    int
	ErrorCount      int64
	LastError       string
	ComponentStatus map[string]ComponentStatus
}

// Checker runs periodic health checks and an optional watchdog over a
// set of named components.
type Checker struct {
	cfg      config.HealthConfig
	logger   zerolog.Logger
	onHang   func()
	startedAt time.Time

	mu        sync.RWMutex
	status    Status
	lastCheck time.Time

	stop chan struct{}
}

// New constructs a Checker and, if cfg.Enabled/WatchdogEnabled, starts
// its background loops. onHang is invoked (at most once) if the
// watchdog fires and cfg.RestartOnFailure is set; callers typically
// wire it to initiate a graceful process exit rather than panicking.
func New(cfg config.HealthConfig, logger zerolog.Logger, onHang func()) *Checker {
	now := time.Now()
	c := &Checker{
		cfg:       cfg,
		logger:    logger,
		onHang:    onHang,
		startedAt: now,
		lastCheck: now,
		status: Status{
			Healthy:         true,
			Timestamp:       now,
			ComponentStatus: make(map[string]ComponentStatus),
		},
		stop: make(chan struct{}),
	}

	if cfg.Enabled {
		go c.checkLoop()
	}
	if cfg.WatchdogEnabled {
		go c.watchdogLoop()
	}
	return c
}

// Close stops the checker's background loops.
func (c *Checker) Close() {
	close(c.stop)
}

// GetStatus returns a snapshot of the current health state.
func (c *Checker) GetStatus() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := c.status
	snapshot.ComponentStatus = make(map[string]ComponentStatus, len(c.status.ComponentStatus))
	for k, v := range c.status.ComponentStatus {
		snapshot.ComponentStatus[k] = v
	}
	return snapshot
}

// UpdateComponent records the health of one named component (e.g. a
// discovery agent's interface name, or "apmanager").
func (c *Checker) UpdateComponent(name string, healthy bool, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.status.ComponentStatus[name] = ComponentStatus{
		Name:      name,
		Healthy:   healthy,
		Message:   message,
		LastCheck: time.Now(),
	}
	c.recomputeOverallHealthLocked()
}

// RecordError increments the error counter and records err as the most
// recent failure.
func (c *Checker) RecordError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.ErrorCount++
	c.status.LastError = err.Error()
}

// SetAccessPointCount records the current size of the AP registry.
func (c *Checker) SetAccessPointCount(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status.AccessPoints = n
}

func (c *Checker) checkLoop() {
	ticker := time.NewTicker(c.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.status.Timestamp = time.Now()
			c.status.UptimeSeconds = int64(time.Since(c.startedAt).Seconds())
			c.lastCheck = time.Now()
			c.recomputeOverallHealthLocked()
			c.mu.Unlock()
		}
	}
}

func (c *Checker) watchdogLoop() {
	ticker := time.NewTicker(c.cfg.WatchdogTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.RLock()
			sinceLastCheck := time.Since(c.lastCheck)
			c.mu.RUnlock()

			if sinceLastCheck > c.cfg.WatchdogTimeout {
				c.logger.Error().Dur("since_last_check", sinceLastCheck).Msg("watchdog: health check loop appears stuck")
				if c.cfg.RestartOnFailure && c.onHang != nil {
					c.onHang()
					return
				}
			}
		}
	}
}

func (c *Checker) recomputeOverallHealthLocked() {
	healthy := true
	for _, component := range c.status.ComponentStatus {
		if !component.Healthy {
			healthy = false
			break
		}
	}
	c.status.Healthy = healthy
}
