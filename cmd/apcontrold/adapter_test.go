package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifictl/apcontrold/pkg/wifi/accesspoint"
	"github.com/wifictl/apcontrold/pkg/wifi/aperrors"
	"github.com/wifictl/apcontrold/pkg/wifi/capabilities"
	apradius "github.com/wifictl/apcontrold/pkg/wifi/radius"
)

// fakeOperationController satisfies operationController, recording the
// last operation invoked and returning a canned status for it.
type fakeOperationController struct {
	interfaceName string
	lastOp        string
}

func (f *fakeOperationController) InterfaceName() string { return f.interfaceName }

func (f *fakeOperationController) Enable(context.Context) *aperrors.OperationStatus {
	f.lastOp = "Enable"
	return aperrors.Ok(f.interfaceName, "Enable")
}

func (f *fakeOperationController) Disable(context.Context) *aperrors.OperationStatus {
	f.lastOp = "Disable"
	return aperrors.Ok(f.interfaceName, "Disable")
}

func (f *fakeOperationController) GetOperationalState(context.Context) (capabilities.OperationalState, *aperrors.OperationStatus) {
	f.lastOp = "GetOperationalState"
	return capabilities.StateEnabled, aperrors.Ok(f.interfaceName, "GetOperationalState")
}

func (f *fakeOperationController) SetOperationalState(context.Context, capabilities.OperationalState) *aperrors.OperationStatus {
	f.lastOp = "SetOperationalState"
	return aperrors.Ok(f.interfaceName, "SetOperationalState")
}

func (f *fakeOperationController) SetPhyType(context.Context, capabilities.PhyType) *aperrors.OperationStatus {
	f.lastOp = "SetPhyType"
	return aperrors.Ok(f.interfaceName, "SetPhyType")
}

func (f *fakeOperationController) SetFrequencyBands(context.Context, []capabilities.FrequencyBand) *aperrors.OperationStatus {
	f.lastOp = "SetFrequencyBands"
	return aperrors.Ok(f.interfaceName, "SetFrequencyBands")
}

func (f *fakeOperationController) SetAuthenticationAlgorithms(context.Context, []capabilities.AuthAlgorithm) *aperrors.OperationStatus {
	f.lastOp = "SetAuthenticationAlgorithms"
	return aperrors.Ok(f.interfaceName, "SetAuthenticationAlgorithms")
}

func (f *fakeOperationController) SetAuthenticationData(context.Context, capabilities.AuthenticationData) *aperrors.OperationStatus {
	f.lastOp = "SetAuthenticationData"
	return aperrors.Ok(f.interfaceName, "SetAuthenticationData")
}

func (f *fakeOperationController) SetAkmSuites(context.Context, []capabilities.AkmSuite) *aperrors.OperationStatus {
	f.lastOp = "SetAkmSuites"
	return aperrors.Ok(f.interfaceName, "SetAkmSuites")
}

func (f *fakeOperationController) SetPairwiseCipherSuites(context.Context, map[capabilities.SecurityProtocol][]capabilities.CipherSuite) *aperrors.OperationStatus {
	f.lastOp = "SetPairwiseCipherSuites"
	return aperrors.Ok(f.interfaceName, "SetPairwiseCipherSuites")
}

func (f *fakeOperationController) SetSSID(context.Context, string) *aperrors.OperationStatus {
	f.lastOp = "SetSSID"
	return aperrors.Ok(f.interfaceName, "SetSSID")
}

func (f *fakeOperationController) SetNetworkBridge(context.Context, string) *aperrors.OperationStatus {
	f.lastOp = "SetNetworkBridge"
	return aperrors.Ok(f.interfaceName, "SetNetworkBridge")
}

func (f *fakeOperationController) SetRadiusConfiguration(context.Context, apradius.Config, string) *aperrors.OperationStatus {
	f.lastOp = "SetRadiusConfiguration"
	return aperrors.Ok(f.interfaceName, "SetRadiusConfiguration")
}

// fakeControllerFactory mints a fakeOperationController, unless refuse
// is set, in which case it reports the interface as uncontrollable.
type fakeControllerFactory struct {
	refuse bool
}

func (f *fakeControllerFactory) CreateController(ap *accesspoint.AccessPoint) (accesspoint.Controller, error) {
	if f.refuse {
		return nil, errors.New("not controllable")
	}
	return &fakeOperationController{interfaceName: ap.InterfaceName}, nil
}

// fakeRegistry is a Registry backed by an in-memory map, so adapter
// tests don't need a real apmanager.Manager.
type fakeRegistry map[string]*accesspoint.AccessPoint

func (f fakeRegistry) Get(interfaceName string) *accesspoint.AccessPoint {
	return f[interfaceName]
}

func TestGatewayEnableFailsWithInvalidAccessPointOnUnknownInterface(t *testing.T) {
	gateway := NewGateway(fakeRegistry{})

	status := gateway.Enable(context.Background(), "wlan9")
	require.False(t, status.Succeeded())
	assert.Equal(t, aperrors.InvalidAccessPoint, status.Code)
}

func TestGatewaySetSSIDFailsWithInvalidAccessPointOnUnknownInterface(t *testing.T) {
	gateway := NewGateway(fakeRegistry{})

	status := gateway.SetSSID(context.Background(), "wlan9", "my-network")
	require.False(t, status.Succeeded())
	assert.Equal(t, aperrors.InvalidAccessPoint, status.Code)
}

func TestGatewayFailsWithInvalidAccessPointWhenControllerCannotBeCreated(t *testing.T) {
	factory := &fakeControllerFactory{refuse: true}
	ap := accesspoint.New("wlan0", [6]byte{}, false, nil, capabilities.Capabilities{}, factory)
	gateway := NewGateway(fakeRegistry{"wlan0": ap})

	status := gateway.Enable(context.Background(), "wlan0")
	require.False(t, status.Succeeded())
	assert.Equal(t, aperrors.InvalidAccessPoint, status.Code)
}

func TestGatewayEnableDispatchesToFreshController(t *testing.T) {
	factory := &fakeControllerFactory{}
	ap := accesspoint.New("wlan0", [6]byte{}, false, nil, capabilities.Capabilities{}, factory)
	gateway := NewGateway(fakeRegistry{"wlan0": ap})

	status := gateway.Enable(context.Background(), "wlan0")
	assert.True(t, status.Succeeded())
}

func TestGatewaySetSSIDDispatchesToFreshController(t *testing.T) {
	factory := &fakeControllerFactory{}
	ap := accesspoint.New("wlan0", [6]byte{}, false, nil, capabilities.Capabilities{}, factory)
	gateway := NewGateway(fakeRegistry{"wlan0": ap})

	status := gateway.SetSSID(context.Background(), "wlan0", "my-network")
	assert.True(t, status.Succeeded())
}
