package netlink

import (
	"context"

	"github.com/wifictl/apcontrold/pkg/wifi/capabilities"
)

// StaticCapabilitiesProvider reports the same Capabilities for every
// wiphy. This driver speaks NL80211_CMD_GET_INTERFACE and the
// configuration multicast group for presence tracking; resolving a
// wiphy's actual PHY/band/cipher support requires walking
// NL80211_CMD_GET_WIPHY's nested band/rate attributes
// (original_source Netlink80211Wiphy.cxx, Netlink80211WiphyBand.cxx),
// which is not implemented here. Deployments with uniform hardware
// can configure the single set of capabilities directly; a future
// CapabilitiesProvider can replace this one without touching the
// event loop.
type StaticCapabilitiesProvider struct {
	Default capabilities.Capabilities
}

// Capabilities implements CapabilitiesProvider.
func (p StaticCapabilitiesProvider) Capabilities(_ context.Context, _ uint32) (capabilities.Capabilities, error) {
	return p.Default, nil
}
