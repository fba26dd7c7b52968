// Package discovery implements the discovery agent façade (spec.md
// §4.5): a thin wrapper around one Driver that owns its start/stop
// lifecycle and an async "probe for everything" path.
package discovery

import (
	"context"

	"github.com/wifictl/apcontrold/pkg/wifi/accesspoint"
)

// PresenceEvent reports a wireless interface's appearance or departure
// as an AP-capable interface (spec.md §3, §4.4).
type PresenceEvent int

const (
	// Arrived means the interface is newly AP-capable.
	Arrived PresenceEvent = iota
	// Departed means the interface is no longer AP-capable (or was
	// removed).
	Departed
)

func (e PresenceEvent) String() string {
	if e == Arrived {
		return "Arrived"
	}
	return "Departed"
}

// PresenceCallback receives discovery events. It is invoked from the
// driver's worker task and must not be called while the driver holds
// any of its own locks (spec.md §4.4 "callback safety").
type PresenceCallback func(event PresenceEvent, ap *accesspoint.AccessPoint)

// Driver produces a presence-event stream and an on-demand interface
// enumeration (spec.md §4.4). pkg/wifi/discovery/netlink provides the
// Linux nl80211 implementation.
type Driver interface {
	// Run subscribes to the kernel event source and invokes callback
	// for every derived presence event until ctx is cancelled. Run
	// returns when ctx is done, or on an unrecoverable driver error.
	Run(ctx context.Context, callback PresenceCallback) error
	// Probe synchronously enumerates every AP-capable interface
	// currently present, independent of Run's live event stream
	// (spec.md §4.4: "not serialized against the live event stream").
	Probe(ctx context.Context) ([]*accesspoint.AccessPoint, error)
}
