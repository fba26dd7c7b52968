package netlink

import (
	"fmt"

	"github.com/mdlayher/netlink"
)

// ifaceInfo is the subset of an nl80211 interface dump/notification this
// driver needs, decoded from NL80211_ATTR_* attributes (original_source
// Netlink80211Interface.cxx).
type ifaceInfo struct {
	Name     string
	Index    uint32
	WiphyIdx uint32
	Type     uint32
	MAC      [6]byte
	HasMAC   bool
}

// IsAP reports whether the interface's nl80211 type is NL80211_IFTYPE_AP.
func (i ifaceInfo) IsAP() bool { return i.Type == iftypeAP }

// decodeIfaceInfo decodes one genetlink message's attribute set into an
// ifaceInfo. Unknown attributes are ignored.
func decodeIfaceInfo(data []byte) (ifaceInfo, error) {
	ad, err := netlink.NewAttributeDecoder(data)
	if err != nil {
		return ifaceInfo{}, fmt.Errorf("decode nl80211 attributes: %w", err)
	}

	var info ifaceInfo
	for ad.Next() {
		switch ad.Type() {
		case attrIfName:
			info.Name = ad.String()
		case attrIfIndex:
			info.Index = ad.Uint32()
		case attrWiphy:
			info.WiphyIdx = ad.Uint32()
		case attrIfType:
			info.Type = ad.Uint32()
		case attrMAC:
			b := ad.Bytes()
			if len(b) == 6 {
				copy(info.MAC[:], b)
				info.HasMAC = true
			}
		}
	}
	if err := ad.Err(); err != nil {
		return ifaceInfo{}, fmt.Errorf("walk nl80211 attributes: %w", err)
	}
	if info.Name == "" {
		return ifaceInfo{}, fmt.Errorf("nl80211 message did not carry %s", "NL80211_ATTR_IFNAME")
	}
	return info, nil
}
