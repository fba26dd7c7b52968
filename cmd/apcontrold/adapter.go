package main

import (
	"context"

	"github.com/wifictl/apcontrold/pkg/wifi/accesspoint"
	"github.com/wifictl/apcontrold/pkg/wifi/aperrors"
	"github.com/wifictl/apcontrold/pkg/wifi/capabilities"
	apradius "github.com/wifictl/apcontrold/pkg/wifi/radius"
)

// Registry is the subset of *apmanager.Manager the gateway resolves
// interface names against.
type Registry interface {
	Get(interfaceName string) *accesspoint.AccessPoint
}

// operationController is the operation surface a freshly minted
// controller must expose for the gateway to drive it. Satisfied by
// *controller.Controller; expressed as its own interface here so the
// gateway does not need to import pkg/wifi/controller just to name the
// concrete type.
type operationController interface {
	Enable(ctx context.Context) *aperrors.OperationStatus
	Disable(ctx context.Context) *aperrors.OperationStatus
	GetOperationalState(ctx context.Context) (capabilities.OperationalState, *aperrors.OperationStatus)
	SetOperationalState(ctx context.Context, state capabilities.OperationalState) *aperrors.OperationStatus
	SetPhyType(ctx context.Context, phy capabilities.PhyType) *aperrors.OperationStatus
	SetFrequencyBands(ctx context.Context, bands []capabilities.FrequencyBand) *aperrors.OperationStatus
	SetAuthenticationAlgorithms(ctx context.Context, algorithms []capabilities.AuthAlgorithm) *aperrors.OperationStatus
	SetAuthenticationData(ctx context.Context, data capabilities.AuthenticationData) *aperrors.OperationStatus
	SetAkmSuites(ctx context.Context, akms []capabilities.AkmSuite) *aperrors.OperationStatus
	SetPairwiseCipherSuites(ctx context.Context, ciphers map[capabilities.SecurityProtocol][]capabilities.CipherSuite) *aperrors.OperationStatus
	SetSSID(ctx context.Context, ssid string) *aperrors.OperationStatus
	SetNetworkBridge(ctx context.Context, bridgeInterfaceID string) *aperrors.OperationStatus
	SetRadiusConfiguration(ctx context.Context, radiusCfg apradius.Config, ownIP string) *aperrors.OperationStatus
}

type closer interface {
	Close() error
}

// Gateway is a thin, in-repo stand-in for the out-of-scope RPC
// transport (spec.md §6, SPEC_FULL.md §6): it resolves an interface
// name to a fresh controller and dispatches one operation, the same
// shape a real RPC handler would follow on each inbound request.
type Gateway struct {
	registry Registry
}

// NewGateway constructs a Gateway resolving against registry.
func NewGateway(registry Registry) *Gateway {
	return &Gateway{registry: registry}
}

// resolve looks up interfaceName and mints a fresh controller for it
// (spec.md §5: controllers are never shared across operations).
// An unknown or uncontrollable interface fails with InvalidAccessPoint
// before any daemon command is issued (spec.md §8).
func (g *Gateway) resolve(interfaceName, operation string) (operationController, func(), *aperrors.OperationStatus) {
	noop := func() {}

	ap := g.registry.Get(interfaceName)
	if ap == nil {
		return nil, noop, aperrors.Fail(interfaceName, operation, aperrors.InvalidAccessPoint, "no access point registered for interface %q", interfaceName)
	}

	raw, err := ap.CreateController()
	if err != nil || raw == nil {
		return nil, noop, aperrors.Fail(interfaceName, operation, aperrors.InvalidAccessPoint, "interface %q is not controllable: %v", interfaceName, err)
	}
	ctrl, ok := raw.(operationController)
	if !ok {
		return nil, noop, aperrors.Fail(interfaceName, operation, aperrors.InternalError, "controller for %q does not support operation dispatch", interfaceName)
	}

	cleanup := noop
	if c, ok := raw.(closer); ok {
		cleanup = func() { c.Close() }
	}
	return ctrl, cleanup, nil
}

func (g *Gateway) Enable(ctx context.Context, interfaceName string) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "Enable")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.Enable(ctx)
}

func (g *Gateway) Disable(ctx context.Context, interfaceName string) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "Disable")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.Disable(ctx)
}

func (g *Gateway) GetOperationalState(ctx context.Context, interfaceName string) (capabilities.OperationalState, *aperrors.OperationStatus) {
	ctrl, cleanup, status := g.resolve(interfaceName, "GetOperationalState")
	if status != nil {
		return capabilities.StateUnknown, status
	}
	defer cleanup()
	return ctrl.GetOperationalState(ctx)
}

func (g *Gateway) SetOperationalState(ctx context.Context, interfaceName string, state capabilities.OperationalState) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "SetOperationalState")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.SetOperationalState(ctx, state)
}

func (g *Gateway) SetPhyType(ctx context.Context, interfaceName string, phy capabilities.PhyType) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "SetPhyType")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.SetPhyType(ctx, phy)
}

func (g *Gateway) SetFrequencyBands(ctx context.Context, interfaceName string, bands []capabilities.FrequencyBand) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "SetFrequencyBands")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.SetFrequencyBands(ctx, bands)
}

func (g *Gateway) SetAuthenticationAlgorithms(ctx context.Context, interfaceName string, algorithms []capabilities.AuthAlgorithm) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "SetAuthenticationAlgorithms")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.SetAuthenticationAlgorithms(ctx, algorithms)
}

func (g *Gateway) SetAuthenticationData(ctx context.Context, interfaceName string, data capabilities.AuthenticationData) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "SetAuthenticationData")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.SetAuthenticationData(ctx, data)
}

func (g *Gateway) SetAkmSuites(ctx context.Context, interfaceName string, akms []capabilities.AkmSuite) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "SetAkmSuites")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.SetAkmSuites(ctx, akms)
}

func (g *Gateway) SetPairwiseCipherSuites(ctx context.Context, interfaceName string, ciphers map[capabilities.SecurityProtocol][]capabilities.CipherSuite) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "SetPairwiseCipherSuites")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.SetPairwiseCipherSuites(ctx, ciphers)
}

func (g *Gateway) SetSSID(ctx context.Context, interfaceName, ssid string) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "SetSSID")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.SetSSID(ctx, ssid)
}

func (g *Gateway) SetNetworkBridge(ctx context.Context, interfaceName, bridgeInterfaceID string) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "SetNetworkBridge")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.SetNetworkBridge(ctx, bridgeInterfaceID)
}

func (g *Gateway) SetRadiusConfiguration(ctx context.Context, interfaceName string, radiusCfg apradius.Config, ownIP string) *aperrors.OperationStatus {
	ctrl, cleanup, status := g.resolve(interfaceName, "SetRadiusConfiguration")
	if status != nil {
		return status
	}
	defer cleanup()
	return ctrl.SetRadiusConfiguration(ctx, radiusCfg, ownIP)
}
