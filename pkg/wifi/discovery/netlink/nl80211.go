// Package netlink implements the Linux discovery driver (spec.md
// §4.4): it watches the kernel's nl80211 generic-netlink family for
// interface presence changes, and can enumerate all AP-type interfaces
// on demand. Grounded on the nl80211 command/attribute layout in
// original_source's Netlink80211.cxx and
// AccessPointDiscoveryAgentOperationsNetlink.cxx, expressed with
// github.com/mdlayher/genetlink and github.com/mdlayher/netlink in
// place of libnl.
package netlink

// nl80211 command numbers, as needed by the discovery driver. Linux
// kernel include/uapi/linux/nl80211.h is the canonical source; only
// the subset this driver speaks is reproduced here.
const (
	cmdGetInterface = 5
	cmdSetInterface = 6
	cmdNewInterface = 7
	cmdDelInterface = 8
)

// nl80211 attribute IDs used to decode NEW/DEL/SET_INTERFACE and
// dump-interface messages.
const (
	attrWiphy     = 1
	attrIfIndex   = 3
	attrIfName    = 4
	attrIfType    = 5
	attrMAC       = 6
	attrWdev      = 153
)

// nl80211_iftype values; only NL80211_IFTYPE_AP matters to the
// discovery driver's Arrived/Departed classification.
const (
	iftypeUnspecified = 0
	iftypeAdhoc       = 1
	iftypeStation     = 2
	iftypeAP          = 3
	iftypeAPVLAN      = 4
	iftypeWDS         = 5
	iftypeMonitor     = 6
	iftypeMeshPoint   = 7
	iftypeP2PClient   = 8
	iftypeP2PGo       = 9
	iftypeP2PDevice   = 10
	iftypeOCB         = 11
	iftypeNAN         = 12
)

// nl80211MulticastGroupConfig is the multicast group name that carries
// interface add/remove/change notifications (original_source:
// NL80211_MULTICAST_GROUP_CONFIG -> libnl group name "config").
const nl80211MulticastGroupConfig = "config"

const nl80211FamilyName = "nl80211"
