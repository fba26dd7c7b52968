// Package apmanager implements the access-point registry (spec.md
// §4.6): the central place discovery agents report presence into, and
// the lookup surface the (out-of-scope) RPC layer reads from.
package apmanager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wifictl/apcontrold/pkg/wifi/accesspoint"
	"github.com/wifictl/apcontrold/pkg/wifi/discovery"
)

type closer interface {
	Close() error
}

// Manager is the registry of live access points, keyed by interface
// name, with at most one entry per name (spec.md §3, §4.6 invariants).
type Manager struct {
	apMu sync.RWMutex
	aps  map[string]*accesspoint.AccessPoint

	agentsMu sync.Mutex
	agents   []*discovery.Agent

	observersMu sync.RWMutex
	observers   []discovery.PresenceCallback

	probeTimeout time.Duration
	logger       zerolog.Logger
}

// AddPresenceObserver registers callback to run after every registry
// update caused by a presence event. Observers are invoked after the
// manager's own registry change, outside the table lock (spec.md §4.6
// concurrency). Intended for read-only consumers such as the
// diagnostics feed; it does not participate in admission decisions.
func (m *Manager) AddPresenceObserver(callback discovery.PresenceCallback) {
	m.observersMu.Lock()
	defer m.observersMu.Unlock()
	m.observers = append(m.observers, callback)
}

// New constructs an empty Manager.
func New(probeTimeout time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		aps:          make(map[string]*accesspoint.AccessPoint),
		probeTimeout: probeTimeout,
		logger:       logger,
	}
}

// RegisterDiscoveryAgent takes ownership of agent, starts it with a
// presence callback that invokes OnPresenceChanged (an agent that is
// already running is restarted with that callback), and kicks off an initial probe with a bounded
// wait (spec.md §4.6). Results of the probe are added one by one.
func (m *Manager) RegisterDiscoveryAgent(ctx context.Context, agent *discovery.Agent) {
	m.agentsMu.Lock()
	m.agents = append(m.agents, agent)
	m.agentsMu.Unlock()

	agent.Start(m.OnPresenceChanged)

	probeCtx, cancel := context.WithTimeout(ctx, m.probeTimeout)
	defer cancel()

	snapshot, err := agent.ProbeAsync(probeCtx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("initial discovery probe did not complete within the bound")
		return
	}
	for _, ap := range snapshot {
		m.Add(ap)
	}
}

// Add atomically admits ap: it is rejected (a no-op, with a warning)
// if it is not controllable, or if an entry already exists for its
// interface name (spec.md §4.6 invariants (a), (b)).
func (m *Manager) Add(ap *accesspoint.AccessPoint) {
	controller, err := ap.CreateController()
	if err != nil || controller == nil {
		m.logger.Warn().Str("interface", ap.InterfaceName).Err(err).Msg("rejecting access point: not controllable")
		return
	}
	// The controller was constructed only to validate controllability;
	// per-operation controllers are minted fresh later (spec.md §5).
	if c, ok := controller.(closer); ok {
		defer c.Close()
	}

	m.apMu.Lock()
	defer m.apMu.Unlock()
	if _, exists := m.aps[ap.InterfaceName]; exists {
		m.logger.Warn().Str("interface", ap.InterfaceName).Msg("rejecting access point: interface already registered")
		return
	}
	m.aps[ap.InterfaceName] = ap
	m.logger.Info().Str("interface", ap.InterfaceName).Msg("access point added")
}

// Remove drops the entry for interfaceName. No-op if absent.
func (m *Manager) Remove(interfaceName string) {
	m.apMu.Lock()
	defer m.apMu.Unlock()
	if _, exists := m.aps[interfaceName]; !exists {
		return
	}
	delete(m.aps, interfaceName)
	m.logger.Info().Str("interface", interfaceName).Msg("access point removed")
}

// Get returns the access point registered under interfaceName, or nil.
// The caller holds a strong reference for as long as it likes; the
// manager does not track checkouts (spec.md §4.6 "weak handle" intent
// is met in Go by returning the pointer directly and relying on GC
// rather than emulating shared/weak pointers).
func (m *Manager) Get(interfaceName string) *accesspoint.AccessPoint {
	m.apMu.RLock()
	defer m.apMu.RUnlock()
	return m.aps[interfaceName]
}

// GetAll returns a snapshot of every registered access point, in
// unspecified order.
func (m *Manager) GetAll() []*accesspoint.AccessPoint {
	m.apMu.RLock()
	defer m.apMu.RUnlock()

	all := make([]*accesspoint.AccessPoint, 0, len(m.aps))
	for _, ap := range m.aps {
		all = append(all, ap)
	}
	return all
}

// OnPresenceChanged is the presence callback installed on every
// registered discovery agent (spec.md §4.6). It takes the access-point
// table lock for the registry update and, briefly, the observer-list
// lock to copy the observers; it never takes the agent table lock.
func (m *Manager) OnPresenceChanged(event discovery.PresenceEvent, ap *accesspoint.AccessPoint) {
	switch event {
	case discovery.Arrived:
		m.Add(ap)
	case discovery.Departed:
		m.Remove(ap.InterfaceName)
	default:
		m.logger.Warn().Str("interface", ap.InterfaceName).Msg(fmt.Sprintf("ignoring unknown presence event %v", event))
		return
	}

	m.observersMu.RLock()
	observers := m.observers
	m.observersMu.RUnlock()
	for _, observer := range observers {
		observer(event, ap)
	}
}

// Close stops every registered discovery agent (spec.md §6 graceful
// shutdown). Manager lifetime must exceed every registered agent's
// lifetime (spec.md §4.6 invariant (c)); agents hold only a weak
// (here: indirect, callback-based) reference back to the manager, so
// this ordering is for orderly shutdown, not correctness of a
// use-after-free.
func (m *Manager) Close() {
	m.agentsMu.Lock()
	agents := m.agents
	m.agents = nil
	m.agentsMu.Unlock()

	for _, agent := range agents {
		agent.Stop()
	}

	m.apMu.Lock()
	m.aps = make(map[string]*accesspoint.AccessPoint)
	m.apMu.Unlock()
}
