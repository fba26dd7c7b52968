package netlink

import (
	"context"
	"fmt"
	"sync"

	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
	"github.com/rs/zerolog"

	"github.com/wifictl/apcontrold/pkg/wifi/accesspoint"
	"github.com/wifictl/apcontrold/pkg/wifi/capabilities"
	"github.com/wifictl/apcontrold/pkg/wifi/discovery"
)

// CapabilitiesProvider resolves the hardware capabilities reported by a
// wiphy. A full implementation issues NL80211_CMD_GET_WIPHY and walks
// its band/rate attributes (original_source Netlink80211Wiphy.cxx,
// Netlink80211WiphyBand.cxx); this driver accepts one as a dependency
// so that query can be added without reworking the event loop.
type CapabilitiesProvider interface {
	Capabilities(ctx context.Context, wiphyIndex uint32) (capabilities.Capabilities, error)
}

// Driver implements discovery.Driver against the kernel's nl80211
// generic-netlink family (spec.md §4.4).
type Driver struct {
	factory accesspoint.ControllerFactory
	caps    CapabilitiesProvider
	logger  zerolog.Logger

	seenMu sync.Mutex
	seen   map[string]struct{}
}

// New constructs a Driver. factory mints controllers for discovered
// access points; caps resolves per-wiphy capabilities.
func New(factory accesspoint.ControllerFactory, caps CapabilitiesProvider, logger zerolog.Logger) *Driver {
	return &Driver{
		factory: factory,
		caps:    caps,
		logger:  logger,
		seen:    make(map[string]struct{}),
	}
}

// dial opens a genetlink connection and resolves the nl80211 family.
func dial() (*genetlink.Conn, genetlink.Family, error) {
	conn, err := genetlink.Dial(nil)
	if err != nil {
		return nil, genetlink.Family{}, fmt.Errorf("dial generic netlink: %w", err)
	}
	family, err := conn.GetFamily(nl80211FamilyName)
	if err != nil {
		conn.Close()
		return nil, genetlink.Family{}, fmt.Errorf("resolve nl80211 family: %w", err)
	}
	return conn, family, nil
}

func configGroupID(family genetlink.Family) (uint32, error) {
	for _, group := range family.Groups {
		if group.Name == nl80211MulticastGroupConfig {
			return group.ID, nil
		}
	}
	return 0, fmt.Errorf("nl80211 family does not expose multicast group %q", nl80211MulticastGroupConfig)
}

// Run subscribes to nl80211's configuration multicast group and
// delivers Arrived/Departed events until ctx is cancelled (spec.md
// §4.4). It is the Go equivalent of
// AccessPointDiscoveryAgentOperationsNetlink::ProcessNetlinkMessagesThread,
// substituting ctx cancellation for the original's eventfd wake
// pattern.
func (d *Driver) Run(ctx context.Context, callback discovery.PresenceCallback) error {
	conn, family, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	groupID, err := configGroupID(family)
	if err != nil {
		return err
	}
	if err := conn.JoinGroup(groupID); err != nil {
		return fmt.Errorf("join nl80211 config multicast group: %w", err)
	}

	// Receive blocks; run it on its own goroutine so ctx cancellation
	// (which only closes conn) can interrupt it promptly.
	msgCh := make(chan []genetlink.Message)
	errCh := make(chan error, 1)
	go func() {
		for {
			msgs, _, err := conn.Receive()
			if err != nil {
				errCh <- err
				return
			}
			msgCh <- msgs
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive nl80211 messages: %w", err)
		case msgs := <-msgCh:
			for _, msg := range msgs {
				d.handleMessage(ctx, msg, callback)
			}
		}
	}
}

func (d *Driver) handleMessage(ctx context.Context, msg genetlink.Message, callback discovery.PresenceCallback) {
	cmd := msg.Header.Command
	if cmd != cmdNewInterface && cmd != cmdDelInterface && cmd != cmdSetInterface {
		return
	}

	info, err := decodeIfaceInfo(msg.Data)
	if err != nil {
		d.logger.Debug().Err(err).Msg("ignoring unparsable nl80211 interface message")
		return
	}

	d.seenMu.Lock()
	_, alreadySeen := d.seen[info.Name]

	var event discovery.PresenceEvent
	fire := false
	switch cmd {
	case cmdNewInterface, cmdDelInterface:
		if !info.IsAP() {
			d.seenMu.Unlock()
			return
		}
		if cmd == cmdNewInterface {
			event = discovery.Arrived
		} else {
			event = discovery.Departed
		}
		fire = true
	case cmdSetInterface:
		// SET_INTERFACE fires on type changes but also on unrelated
		// property changes (channel width, rate, ...); only report a
		// presence event when the AP-capability transition actually
		// occurred (spec.md §4.4).
		switch {
		case !alreadySeen && info.IsAP():
			event = discovery.Arrived
			fire = true
		case alreadySeen && !info.IsAP():
			event = discovery.Departed
			fire = true
		}
	}

	if !fire {
		d.seenMu.Unlock()
		return
	}
	if event == discovery.Arrived {
		d.seen[info.Name] = struct{}{}
	} else {
		delete(d.seen, info.Name)
	}
	d.seenMu.Unlock()

	ap, err := d.makeAccessPoint(ctx, info)
	if err != nil {
		d.logger.Warn().Str("interface", info.Name).Err(err).Msg("failed to construct access point from nl80211 interface")
		return
	}
	callback(event, ap)
}

// Probe enumerates every current nl80211 interface and returns the
// access points for the ones of type AP (spec.md §4.4). It is not
// serialized against Run's live event stream, matching
// AccessPointDiscoveryAgentOperationsNetlink::ProbeAsync.
func (d *Driver) Probe(ctx context.Context) ([]*accesspoint.AccessPoint, error) {
	conn, family, err := dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	req := genetlink.Message{
		Header: genetlink.Header{
			Command: cmdGetInterface,
			Version: family.Version,
		},
	}
	msgs, err := conn.Execute(req, family.ID, netlink.Request|netlink.Dump)
	if err != nil {
		return nil, fmt.Errorf("dump nl80211 interfaces: %w", err)
	}

	var out []*accesspoint.AccessPoint
	for _, msg := range msgs {
		info, err := decodeIfaceInfo(msg.Data)
		if err != nil {
			continue
		}
		if !info.IsAP() {
			continue
		}
		ap, err := d.makeAccessPoint(ctx, info)
		if err != nil {
			d.logger.Warn().Str("interface", info.Name).Err(err).Msg("failed to construct access point from nl80211 interface")
			continue
		}
		out = append(out, ap)
	}
	return out, nil
}

func (d *Driver) makeAccessPoint(ctx context.Context, info ifaceInfo) (*accesspoint.AccessPoint, error) {
	caps, err := d.caps.Capabilities(ctx, info.WiphyIdx)
	if err != nil {
		return nil, fmt.Errorf("resolve capabilities for wiphy %d: %w", info.WiphyIdx, err)
	}
	attrs := map[string]string{
		"wiphy_index": fmt.Sprintf("%d", info.WiphyIdx),
		"if_index":    fmt.Sprintf("%d", info.Index),
	}
	return accesspoint.New(info.Name, info.MAC, info.HasMAC, attrs, caps, d.factory), nil
}
