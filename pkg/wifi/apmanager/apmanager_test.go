package apmanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifictl/apcontrold/pkg/wifi/accesspoint"
	"github.com/wifictl/apcontrold/pkg/wifi/capabilities"
	"github.com/wifictl/apcontrold/pkg/wifi/discovery"
)

type fakeController struct{ name string }

func (f *fakeController) InterfaceName() string { return f.name }

// fakeFactory mints a fakeController for every interface name not
// listed in refuse.
type fakeFactory struct {
	refuse map[string]bool
}

func (f *fakeFactory) CreateController(ap *accesspoint.AccessPoint) (accesspoint.Controller, error) {
	if f.refuse[ap.InterfaceName] {
		return nil, errors.New("not controllable")
	}
	return &fakeController{name: ap.InterfaceName}, nil
}

func newTestAP(name string, factory accesspoint.ControllerFactory) *accesspoint.AccessPoint {
	return accesspoint.New(name, [6]byte{}, false, nil, capabilities.Capabilities{}, factory)
}

func TestAddRejectsUncontrollable(t *testing.T) {
	m := New(time.Second, zerolog.Nop())
	factory := &fakeFactory{refuse: map[string]bool{"wlan0": true}}

	m.Add(newTestAP("wlan0", factory))
	assert.Nil(t, m.Get("wlan0"))
}

func TestAddRejectsDuplicateInterfaceName(t *testing.T) {
	m := New(time.Second, zerolog.Nop())
	factory := &fakeFactory{}

	first := newTestAP("wlan0", factory)
	second := newTestAP("wlan0", factory)

	m.Add(first)
	m.Add(second)

	require.NotNil(t, m.Get("wlan0"))
	assert.Same(t, first, m.Get("wlan0"))
}

func TestAddAndGetAll(t *testing.T) {
	m := New(time.Second, zerolog.Nop())
	factory := &fakeFactory{}

	m.Add(newTestAP("wlan0", factory))
	m.Add(newTestAP("wlan1", factory))

	all := m.GetAll()
	assert.Len(t, all, 2)
}

func TestRemove(t *testing.T) {
	m := New(time.Second, zerolog.Nop())
	factory := &fakeFactory{}
	m.Add(newTestAP("wlan0", factory))

	m.Remove("wlan0")
	assert.Nil(t, m.Get("wlan0"))

	// removing again is a no-op, not a panic.
	m.Remove("wlan0")
}

func TestOnPresenceChangedArrivedAndDeparted(t *testing.T) {
	m := New(time.Second, zerolog.Nop())
	factory := &fakeFactory{}
	ap := newTestAP("wlan0", factory)

	m.OnPresenceChanged(discovery.Arrived, ap)
	require.NotNil(t, m.Get("wlan0"))

	m.OnPresenceChanged(discovery.Departed, ap)
	assert.Nil(t, m.Get("wlan0"))
}

// fakeDriver is a discovery.Driver that blocks on Run until ctx is
// canceled and answers Probe with probeResult.
type fakeDriver struct {
	probeResult []*accesspoint.AccessPoint
}

func (f *fakeDriver) Run(ctx context.Context, _ discovery.PresenceCallback) error {
	<-ctx.Done()
	return nil
}

func (f *fakeDriver) Probe(_ context.Context) ([]*accesspoint.AccessPoint, error) {
	return f.probeResult, nil
}

func TestRegisterDiscoveryAgentAddsProbeResults(t *testing.T) {
	m := New(5*time.Second, zerolog.Nop())
	factory := &fakeFactory{}
	driver := &fakeDriver{probeResult: []*accesspoint.AccessPoint{newTestAP("wlan0", factory)}}
	agent := discovery.NewAgent(driver, zerolog.Nop())

	m.RegisterDiscoveryAgent(context.Background(), agent)
	defer m.Close()

	require.NotNil(t, m.Get("wlan0"))
	assert.True(t, agent.IsRunning())
}

func TestAddPresenceObserverFansOutAfterRegistryUpdate(t *testing.T) {
	m := New(time.Second, zerolog.Nop())
	factory := &fakeFactory{}
	ap := newTestAP("wlan0", factory)

	var observed []discovery.PresenceEvent
	m.AddPresenceObserver(func(event discovery.PresenceEvent, _ *accesspoint.AccessPoint) {
		observed = append(observed, event)
		// the registry must already reflect the change by the time
		// observers run.
		if event == discovery.Arrived {
			assert.NotNil(t, m.Get("wlan0"))
		}
	})

	m.OnPresenceChanged(discovery.Arrived, ap)
	m.OnPresenceChanged(discovery.Departed, ap)

	assert.Equal(t, []discovery.PresenceEvent{discovery.Arrived, discovery.Departed}, observed)
}

func TestCloseStopsAgentsAndClearsRegistry(t *testing.T) {
	m := New(5*time.Second, zerolog.Nop())
	factory := &fakeFactory{}
	driver := &fakeDriver{probeResult: []*accesspoint.AccessPoint{newTestAP("wlan0", factory)}}
	agent := discovery.NewAgent(driver, zerolog.Nop())

	m.RegisterDiscoveryAgent(context.Background(), agent)
	require.NotNil(t, m.Get("wlan0"))

	m.Close()
	assert.Nil(t, m.Get("wlan0"))
	assert.False(t, agent.IsRunning())
}
