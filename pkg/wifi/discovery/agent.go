package discovery

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/wifictl/apcontrold/pkg/wifi/accesspoint"
)

// State is the agent's externally visible lifecycle state. Drivers may
// pass through Starting/Stopping internally (spec.md §3); the agent
// façade collapses that to Stopped/Running, per spec.md §4.5.
type State int

const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "Running"
	}
	return "Stopped"
}

// Agent is a thin façade over one Driver (spec.md §4.5). It owns the
// driver's worker goroutine and start/stop lifecycle; probe_async is
// forwarded straight to the driver since it is legal in any state.
type Agent struct {
	driver Driver
	logger zerolog.Logger

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	done   chan struct{}
}

// NewAgent wraps driver in a façade. The agent starts Stopped.
func NewAgent(driver Driver, logger zerolog.Logger) *Agent {
	return &Agent{
		driver: driver,
		logger: logger,
		state:  StateStopped,
	}
}

// Start begins delivering presence events to callback. Start is
// idempotent: calling it while already running stops the previous
// worker and starts a new one with the new callback (spec.md §4.5).
func (a *Agent) Start(callback PresenceCallback) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	a.state = StateRunning

	done := a.done
	go func() {
		defer close(done)
		if err := a.driver.Run(ctx, callback); err != nil && ctx.Err() == nil {
			a.logger.Error().Err(err).Msg("discovery driver exited unexpectedly")
		}
	}()
}

// Stop halts the driver's worker and waits for it to exit. Stop is
// idempotent.
func (a *Agent) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Agent) stopLocked() {
	if a.state != StateRunning {
		return
	}
	cancel := a.cancel
	done := a.done
	a.mu.Unlock()
	cancel()
	<-done
	a.mu.Lock()
	a.state = StateStopped
	a.cancel = nil
	a.done = nil
}

// IsRunning reports the agent's current state.
func (a *Agent) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state == StateRunning
}

// ProbeAsync resolves to a snapshot of every AP-capable interface
// currently present. Legal in any agent state (spec.md §4.4); ctx
// bounds the wait. The name retains the "async" spelling from spec.md
// §4.5; in Go the asynchrony is simply ctx cancellation, not a
// separate future type.
func (a *Agent) ProbeAsync(ctx context.Context) ([]*accesspoint.AccessPoint, error) {
	return a.driver.Probe(ctx)
}
