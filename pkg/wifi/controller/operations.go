package controller

import (
	"context"

	"github.com/wifictl/apcontrold/pkg/wifi/aperrors"
	"github.com/wifictl/apcontrold/pkg/wifi/capabilities"
	"github.com/wifictl/apcontrold/pkg/wifi/hostapd"
	apradius "github.com/wifictl/apcontrold/pkg/wifi/radius"
)

const (
	opEnable                = "Enable"
	opDisable               = "Disable"
	opSetPhyType            = "SetPhyType"
	opSetFrequencyBands     = "SetFrequencyBands"
	opSetAuthAlgorithms     = "SetAuthenticationAlgorithms"
	opSetAuthenticationData = "SetAuthenticationData"
	opSetAkmSuites          = "SetAkmSuites"
	opSetPairwiseCiphers    = "SetPairwiseCipherSuites"
	opSetSSID               = "SetSSID"
	opSetNetworkBridge      = "SetNetworkBridge"
	opSetRadiusConfig       = "SetRadiusConfiguration"
	opGetOperationalState   = "GetOperationalState"
	opSetOperationalState   = "SetOperationalState"
)

// Enable turns the access point on. A daemon FAIL is cross-checked
// against STATUS: if the daemon is already enabled, the operation
// still reports Succeeded (spec.md §4.3, §8 idempotence).
func (c *Controller) Enable(ctx context.Context) *aperrors.OperationStatus {
	return c.setEnabledState(ctx, opEnable, hostapd.CmdEnable, "ENABLED")
}

// Disable turns the access point off, symmetric to Enable.
func (c *Controller) Disable(ctx context.Context) *aperrors.OperationStatus {
	return c.setEnabledState(ctx, opDisable, hostapd.CmdDisable, "DISABLED")
}

func (c *Controller) setEnabledState(ctx context.Context, op, command, wantState string) *aperrors.OperationStatus {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	resp, err := c.sender.SendCommand(ctx, command)
	if err != nil {
		return c.internalError(op, err)
	}
	result, err := hostapd.ParseOKFail(command, resp)
	if err != nil {
		return c.internalError(op, err)
	}
	if result == hostapd.OK {
		return aperrors.Ok(c.interfaceName, op)
	}

	status, err := c.status(ctx)
	if err != nil {
		return c.internalError(op, err)
	}
	if status.State == wantState {
		return aperrors.Ok(c.interfaceName, op)
	}
	return aperrors.Fail(c.interfaceName, op, aperrors.InternalError, "daemon refused %s; state is %q", command, status.State)
}

// GetOperationalState reports whether the access point is currently
// Enabled or Disabled.
func (c *Controller) GetOperationalState(ctx context.Context) (capabilities.OperationalState, *aperrors.OperationStatus) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	status, err := c.status(ctx)
	if err != nil {
		return capabilities.StateUnknown, c.internalError(opGetOperationalState, err)
	}
	switch status.State {
	case "ENABLED":
		return capabilities.StateEnabled, aperrors.Ok(c.interfaceName, opGetOperationalState)
	case "DISABLED":
		return capabilities.StateDisabled, aperrors.Ok(c.interfaceName, opGetOperationalState)
	default:
		return capabilities.StateUnknown, aperrors.Ok(c.interfaceName, opGetOperationalState)
	}
}

// SetOperationalState drives the access point to the requested state.
func (c *Controller) SetOperationalState(ctx context.Context, state capabilities.OperationalState) *aperrors.OperationStatus {
	switch state {
	case capabilities.StateEnabled:
		return c.Enable(ctx)
	case capabilities.StateDisabled:
		return c.Disable(ctx)
	default:
		return aperrors.Fail(c.interfaceName, opSetOperationalState, aperrors.InvalidParameter, "unknown operational state %v", state)
	}
}

// SetPhyType selects phy, writing hw_mode and the additive
// ieee80211X/disable_11X property pairs, then reloads and audits the
// resulting STATUS (spec.md §4.2, §4.3).
func (c *Controller) SetPhyType(ctx context.Context, phy capabilities.PhyType) *aperrors.OperationStatus {
	if !c.caps.SupportsPhyType(phy) {
		return aperrors.Fail(c.interfaceName, opSetPhyType, aperrors.OperationNotSupported, "PHY type %v not supported by this radio", phy)
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	writes := hostapd.EncodePhySequence(phy)
	if err := c.setAll(ctx, writes); err != nil {
		return c.internalError(opSetPhyType, err)
	}
	if err := c.reload(ctx); err != nil {
		return c.internalError(opSetPhyType, err)
	}

	status, err := c.status(ctx)
	if err != nil {
		return c.internalError(opSetPhyType, err)
	}
	if !status.SatisfiesPhyType(hostapd.PhyImpliedLevelNames(phy)) {
		c.logger.Warn().Str("phy", phy.String()).Msg("post-reload STATUS does not confirm requested PHY type")
	}
	return aperrors.Ok(c.interfaceName, opSetPhyType)
}

// SetFrequencyBands writes setband, and additionally sets
// ieee80211w=Required when 6 GHz is requested (spec.md §4.2, §4.3). An
// empty list is InvalidParameter before any daemon command is issued.
func (c *Controller) SetFrequencyBands(ctx context.Context, bands []capabilities.FrequencyBand) *aperrors.OperationStatus {
	if len(bands) == 0 {
		return aperrors.Fail(c.interfaceName, opSetFrequencyBands, aperrors.InvalidParameter, "frequency band list is empty")
	}
	if !c.caps.SupportsAllBands(bands) {
		return aperrors.Fail(c.interfaceName, opSetFrequencyBands, aperrors.OperationNotSupported, "one or more requested bands are not supported by this radio")
	}

	value, requiresMFP, err := hostapd.EncodeFrequencyBands(bands)
	if err != nil {
		return aperrors.Fail(c.interfaceName, opSetFrequencyBands, aperrors.InvalidParameter, "%v", err)
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	// setband does not require a reload (spec.md §4.3).
	if err := c.set(ctx, hostapd.PropSetBand, value); err != nil {
		return c.internalError(opSetFrequencyBands, err)
	}
	if requiresMFP {
		if err := c.set(ctx, hostapd.PropIeee80211W, hostapd.ManagementFrameProtectionRequired); err != nil {
			return c.internalError(opSetFrequencyBands, err)
		}
	}
	return aperrors.Ok(c.interfaceName, opSetFrequencyBands)
}

// SetAuthenticationAlgorithms OR-combines algorithms into auth_algs and
// reloads. An empty list is InvalidParameter.
func (c *Controller) SetAuthenticationAlgorithms(ctx context.Context, algorithms []capabilities.AuthAlgorithm) *aperrors.OperationStatus {
	return c.SetAuthenticationAlgorithmsWithEnforce(ctx, algorithms, Now)
}

// SetAuthenticationAlgorithmsWithEnforce behaves like
// SetAuthenticationAlgorithms, but lets the caller defer the RELOAD to
// a later operation in the same batch (spec.md §4.3 enforcement
// policy).
func (c *Controller) SetAuthenticationAlgorithmsWithEnforce(ctx context.Context, algorithms []capabilities.AuthAlgorithm, enforce Enforce) *aperrors.OperationStatus {
	value, err := hostapd.EncodeAuthAlgorithms(algorithms)
	if err != nil {
		return aperrors.Fail(c.interfaceName, opSetAuthAlgorithms, aperrors.InvalidParameter, "%v", err)
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	if err := c.set(ctx, hostapd.PropAuthAlgs, value); err != nil {
		return c.internalError(opSetAuthAlgorithms, err)
	}
	if err := c.reloadIfNow(ctx, enforce); err != nil {
		return c.internalError(opSetAuthAlgorithms, err)
	}
	return aperrors.Ok(c.interfaceName, opSetAuthAlgorithms)
}

// SetAuthenticationData configures PSK and/or SAE password credential
// material. At least one must be present (spec.md §4.3).
func (c *Controller) SetAuthenticationData(ctx context.Context, data capabilities.AuthenticationData) *aperrors.OperationStatus {
	return c.SetAuthenticationDataWithEnforce(ctx, data, Now)
}

// SetAuthenticationDataWithEnforce behaves like SetAuthenticationData,
// but lets the caller defer the RELOAD to a later operation in the
// same batch (spec.md §4.3 enforcement policy).
func (c *Controller) SetAuthenticationDataWithEnforce(ctx context.Context, data capabilities.AuthenticationData, enforce Enforce) *aperrors.OperationStatus {
	if data.IsEmpty() {
		return aperrors.Fail(c.interfaceName, opSetAuthenticationData, aperrors.InvalidParameter, "neither PSK nor SAE passwords supplied")
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	if data.PSK != nil {
		key, value, err := hostapd.EncodePSK(data.PSK)
		if err != nil {
			return aperrors.Fail(c.interfaceName, opSetAuthenticationData, aperrors.InvalidParameter, "%v", err)
		}
		if err := c.set(ctx, key, value); err != nil {
			return c.internalError(opSetAuthenticationData, err)
		}
	}

	if len(data.SAEPasswords) > 0 {
		writes := hostapd.EncodeSAEPasswords(data.SAEPasswords)
		if err := c.setAll(ctx, writes); err != nil {
			return c.internalError(opSetAuthenticationData, err)
		}
	}

	if err := c.reloadIfNow(ctx, enforce); err != nil {
		return c.internalError(opSetAuthenticationData, err)
	}
	return aperrors.Ok(c.interfaceName, opSetAuthenticationData)
}

// SetAkmSuites configures wpa_key_mgmt, applying the nas_identifier and
// ieee8021x side effects required beforehand (spec.md §4.2, §4.3). An
// empty list is InvalidParameter.
func (c *Controller) SetAkmSuites(ctx context.Context, akms []capabilities.AkmSuite) *aperrors.OperationStatus {
	return c.SetAkmSuitesWithEnforce(ctx, akms, Now)
}

// SetAkmSuitesWithEnforce behaves like SetAkmSuites, but lets the
// caller defer the RELOAD to a later operation in the same batch
// (spec.md §4.3 enforcement policy).
func (c *Controller) SetAkmSuitesWithEnforce(ctx context.Context, akms []capabilities.AkmSuite, enforce Enforce) *aperrors.OperationStatus {
	for _, akm := range akms {
		if !c.caps.SupportsAkmSuite(akm) {
			return aperrors.Fail(c.interfaceName, opSetAkmSuites, aperrors.OperationNotSupported, "AKM suite %v not supported by this radio", akm)
		}
	}

	encoding, err := hostapd.EncodeAkmSuites(akms)
	if err != nil {
		return aperrors.Fail(c.interfaceName, opSetAkmSuites, aperrors.InvalidParameter, "%v", err)
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	if encoding.NeedsNasIdentifier {
		nasID, err := hostapd.GenerateNasIdentifier()
		if err != nil {
			return c.internalError(opSetAkmSuites, err)
		}
		if err := c.set(ctx, hostapd.PropNasIdentifier, nasID); err != nil {
			return c.internalError(opSetAkmSuites, err)
		}
	}
	if encoding.NeedsDot1X {
		if err := c.set(ctx, hostapd.PropIeee8021X, "1"); err != nil {
			return c.internalError(opSetAkmSuites, err)
		}
	}

	if err := c.set(ctx, hostapd.PropWpaKeyMgmt, encoding.Value); err != nil {
		return c.internalError(opSetAkmSuites, err)
	}
	if err := c.reloadIfNow(ctx, enforce); err != nil {
		return c.internalError(opSetAkmSuites, err)
	}
	return aperrors.Ok(c.interfaceName, opSetAkmSuites)
}

// SetPairwiseCipherSuites writes wpa_pairwise/rsn_pairwise for every
// security protocol in ciphers. An empty map is InvalidParameter.
func (c *Controller) SetPairwiseCipherSuites(ctx context.Context, ciphers map[capabilities.SecurityProtocol][]capabilities.CipherSuite) *aperrors.OperationStatus {
	return c.SetPairwiseCipherSuitesWithEnforce(ctx, ciphers, Now)
}

// SetPairwiseCipherSuitesWithEnforce behaves like
// SetPairwiseCipherSuites, but lets the caller defer the RELOAD to a
// later operation in the same batch (spec.md §4.3 enforcement policy).
func (c *Controller) SetPairwiseCipherSuitesWithEnforce(ctx context.Context, ciphers map[capabilities.SecurityProtocol][]capabilities.CipherSuite, enforce Enforce) *aperrors.OperationStatus {
	if len(ciphers) == 0 {
		return aperrors.Fail(c.interfaceName, opSetPairwiseCiphers, aperrors.InvalidParameter, "pairwise cipher map is empty")
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	// Also set the protocol bitmask so WPA/WPA2/WPA3 is actually
	// enabled for the protocols being configured.
	protocols := make([]capabilities.SecurityProtocol, 0, len(ciphers))
	for protocol := range ciphers {
		protocols = append(protocols, protocol)
	}
	if err := c.set(ctx, hostapd.PropWpa, hostapd.EncodeSecurityProtocols(protocols)); err != nil {
		return c.internalError(opSetPairwiseCiphers, err)
	}

	for protocol, suites := range ciphers {
		key, value := hostapd.EncodePairwiseCiphers(protocol, suites)
		if key == "" {
			return aperrors.Fail(c.interfaceName, opSetPairwiseCiphers, aperrors.InvalidParameter, "unknown security protocol %v", protocol)
		}
		if err := c.set(ctx, key, value); err != nil {
			return c.internalError(opSetPairwiseCiphers, err)
		}
	}

	if err := c.reloadIfNow(ctx, enforce); err != nil {
		return c.internalError(opSetPairwiseCiphers, err)
	}
	return aperrors.Ok(c.interfaceName, opSetPairwiseCiphers)
}

// SetSSID writes ssid, reloads, and verifies the new value round-trips
// through GET_CONFIG (spec.md §4.3, §8). An empty SSID is
// InvalidParameter.
func (c *Controller) SetSSID(ctx context.Context, ssid string) *aperrors.OperationStatus {
	if len(ssid) == 0 || len(ssid) > 32 {
		return aperrors.Fail(c.interfaceName, opSetSSID, aperrors.InvalidParameter, "SSID must be 1..32 octets, got %d", len(ssid))
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	if err := c.set(ctx, hostapd.PropSSID, ssid); err != nil {
		return c.internalError(opSetSSID, err)
	}
	if err := c.reload(ctx); err != nil {
		return c.internalError(opSetSSID, err)
	}

	cfg, err := c.getConfig(ctx)
	if err != nil {
		return c.internalError(opSetSSID, err)
	}
	if cfg.SSID != ssid {
		return aperrors.Fail(c.interfaceName, opSetSSID, aperrors.InternalError, "GET_CONFIG reports ssid %q after setting %q", cfg.SSID, ssid)
	}
	return aperrors.Ok(c.interfaceName, opSetSSID)
}

// SetNetworkBridge writes the bridge property and reloads.
func (c *Controller) SetNetworkBridge(ctx context.Context, bridgeInterfaceID string) *aperrors.OperationStatus {
	return c.SetNetworkBridgeWithEnforce(ctx, bridgeInterfaceID, Now)
}

// SetNetworkBridgeWithEnforce behaves like SetNetworkBridge, but lets
// the caller defer the RELOAD to a later operation in the same batch
// (spec.md §4.3 enforcement policy).
func (c *Controller) SetNetworkBridgeWithEnforce(ctx context.Context, bridgeInterfaceID string, enforce Enforce) *aperrors.OperationStatus {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	if err := c.set(ctx, hostapd.PropBridge, bridgeInterfaceID); err != nil {
		return c.internalError(opSetNetworkBridge, err)
	}
	if err := c.reloadIfNow(ctx, enforce); err != nil {
		return c.internalError(opSetNetworkBridge, err)
	}
	return aperrors.Ok(c.interfaceName, opSetNetworkBridge)
}

// SetRadiusConfiguration writes the primary authentication endpoint,
// then (if present) the primary accounting endpoint, then each
// fallback, disables the internal EAP server, sets own_ip_addr, and
// reloads once (spec.md §4.2, §4.3).
func (c *Controller) SetRadiusConfiguration(ctx context.Context, radiusCfg apradius.Config, ownIP string) *aperrors.OperationStatus {
	return c.SetRadiusConfigurationWithEnforce(ctx, radiusCfg, ownIP, Now)
}

// SetRadiusConfigurationWithEnforce behaves like
// SetRadiusConfiguration, but lets the caller defer the RELOAD to a
// later operation in the same batch (spec.md §4.3 enforcement
// policy).
func (c *Controller) SetRadiusConfigurationWithEnforce(ctx context.Context, radiusCfg apradius.Config, ownIP string, enforce Enforce) *aperrors.OperationStatus {
	if err := radiusCfg.Validate(); err != nil {
		return aperrors.Fail(c.interfaceName, opSetRadiusConfig, aperrors.InvalidParameter, "%v", err)
	}
	if ownIP == "" {
		ownIP = "127.0.0.1"
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	endpoints := []apradius.EndpointConfig{radiusCfg.PrimaryAuthentication}
	if radiusCfg.PrimaryAccounting != nil {
		endpoints = append(endpoints, *radiusCfg.PrimaryAccounting)
	}
	endpoints = append(endpoints, radiusCfg.Fallbacks...)

	for _, endpoint := range endpoints {
		writes, err := hostapd.EncodeRadiusEndpoint(endpoint)
		if err != nil {
			return aperrors.Fail(c.interfaceName, opSetRadiusConfig, aperrors.InvalidParameter, "%v", err)
		}
		if err := c.setAll(ctx, writes); err != nil {
			return c.internalError(opSetRadiusConfig, err)
		}
	}

	if err := c.set(ctx, hostapd.PropEapServer, "0"); err != nil {
		return c.internalError(opSetRadiusConfig, err)
	}
	if err := c.set(ctx, hostapd.PropOwnIPAddr, ownIP); err != nil {
		return c.internalError(opSetRadiusConfig, err)
	}
	if err := c.reloadIfNow(ctx, enforce); err != nil {
		return c.internalError(opSetRadiusConfig, err)
	}
	return aperrors.Ok(c.interfaceName, opSetRadiusConfig)
}
