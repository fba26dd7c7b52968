package controller

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifictl/apcontrold/pkg/wifi/aperrors"
	"github.com/wifictl/apcontrold/pkg/wifi/capabilities"
)

// fakeSender answers SendCommand from a caller-supplied map, recording
// every command it saw in order. Commands not present in the map get
// replyDefault.
type fakeSender struct {
	replies      map[string]string
	replyDefault string
	seen         []string
}

func (f *fakeSender) SendCommand(_ context.Context, command string) (string, error) {
	f.seen = append(f.seen, command)
	if reply, ok := f.replies[command]; ok {
		return reply, nil
	}
	return f.replyDefault, nil
}

func statusPayload(state string) string {
	return "state=" + state + "\nieee80211n=1\nieee80211ac=1\nieee80211ax=1\ndisable_11n=0\ndisable_11ac=0\ndisable_11ax=0\n"
}

func newTestController(sender *fakeSender, caps capabilities.Capabilities) *Controller {
	return New("wlan0", caps, sender, zerolog.Nop())
}

func TestEnableSucceedsOnOK(t *testing.T) {
	sender := &fakeSender{replies: map[string]string{"ENABLE": "OK"}}
	c := newTestController(sender, capabilities.Capabilities{})

	status := c.Enable(context.Background())
	assert.True(t, status.Succeeded())
}

func TestEnableIdempotentOnFailWhenAlreadyEnabled(t *testing.T) {
	sender := &fakeSender{replies: map[string]string{
		"ENABLE": "FAIL",
		"STATUS": statusPayload("ENABLED"),
	}}
	c := newTestController(sender, capabilities.Capabilities{})

	status := c.Enable(context.Background())
	assert.True(t, status.Succeeded())
}

func TestEnableFailsWhenDaemonRefusesAndStateDisagrees(t *testing.T) {
	sender := &fakeSender{replies: map[string]string{
		"ENABLE": "FAIL",
		"STATUS": statusPayload("DISABLED"),
	}}
	c := newTestController(sender, capabilities.Capabilities{})

	status := c.Enable(context.Background())
	require.False(t, status.Succeeded())
	assert.Equal(t, aperrors.InternalError, status.Code)
}

func TestSetPhyTypeRejectsUnsupported(t *testing.T) {
	sender := &fakeSender{}
	c := newTestController(sender, capabilities.Capabilities{PhyTypes: []capabilities.PhyType{capabilities.PhyN}})

	status := c.SetPhyType(context.Background(), capabilities.PhyAX)
	require.False(t, status.Succeeded())
	assert.Equal(t, aperrors.OperationNotSupported, status.Code)
	assert.Empty(t, sender.seen, "no daemon commands should be issued for an unsupported PHY type")
}

func TestSetPhyTypeSucceeds(t *testing.T) {
	sender := &fakeSender{replyDefault: "OK", replies: map[string]string{
		"STATUS": statusPayload("ENABLED"),
	}}
	c := newTestController(sender, capabilities.Capabilities{PhyTypes: []capabilities.PhyType{capabilities.PhyAX}})

	status := c.SetPhyType(context.Background(), capabilities.PhyAX)
	assert.True(t, status.Succeeded())
	assert.Contains(t, sender.seen, "RELOAD")
}

func TestSetFrequencyBandsRejectsEmpty(t *testing.T) {
	sender := &fakeSender{}
	c := newTestController(sender, capabilities.Capabilities{FrequencyBands: []capabilities.FrequencyBand{capabilities.Band5GHz}})

	status := c.SetFrequencyBands(context.Background(), nil)
	require.False(t, status.Succeeded())
	assert.Equal(t, aperrors.InvalidParameter, status.Code)
}

func TestSetFrequencyBandsRejectsUnsupportedBand(t *testing.T) {
	sender := &fakeSender{}
	c := newTestController(sender, capabilities.Capabilities{FrequencyBands: []capabilities.FrequencyBand{capabilities.Band5GHz}})

	status := c.SetFrequencyBands(context.Background(), []capabilities.FrequencyBand{capabilities.Band6GHz})
	require.False(t, status.Succeeded())
	assert.Equal(t, aperrors.OperationNotSupported, status.Code)
}

func TestSetFrequencyBandsSetsMFPFor6GHz(t *testing.T) {
	sender := &fakeSender{replyDefault: "OK"}
	c := newTestController(sender, capabilities.Capabilities{FrequencyBands: []capabilities.FrequencyBand{capabilities.Band5GHz, capabilities.Band6GHz}})

	status := c.SetFrequencyBands(context.Background(), []capabilities.FrequencyBand{capabilities.Band5GHz, capabilities.Band6GHz})
	assert.True(t, status.Succeeded())
	assert.Contains(t, sender.seen, "SET setband 5G,6G")
	assert.Contains(t, sender.seen, "SET ieee80211w 2")
}

func TestSetAuthenticationDataRejectsEmpty(t *testing.T) {
	sender := &fakeSender{}
	c := newTestController(sender, capabilities.Capabilities{})

	status := c.SetAuthenticationData(context.Background(), capabilities.AuthenticationData{})
	require.False(t, status.Succeeded())
	assert.Equal(t, aperrors.InvalidParameter, status.Code)
}

func TestSetAkmSuitesRejectsUnsupported(t *testing.T) {
	sender := &fakeSender{}
	c := newTestController(sender, capabilities.Capabilities{AkmSuites: []capabilities.AkmSuite{capabilities.AkmWPAPSK}})

	status := c.SetAkmSuites(context.Background(), []capabilities.AkmSuite{capabilities.AkmSAE})
	require.False(t, status.Succeeded())
	assert.Equal(t, aperrors.OperationNotSupported, status.Code)
}

func TestSetAkmSuitesAppliesNasIdentifierForFastTransition(t *testing.T) {
	sender := &fakeSender{replyDefault: "OK"}
	c := newTestController(sender, capabilities.Capabilities{AkmSuites: []capabilities.AkmSuite{capabilities.AkmFTSAE}})

	status := c.SetAkmSuites(context.Background(), []capabilities.AkmSuite{capabilities.AkmFTSAE})
	require.True(t, status.Succeeded())

	var sawNasIdentifier bool
	for _, cmd := range sender.seen {
		if len(cmd) > len("SET nas_identifier") && cmd[:len("SET nas_identifier")] == "SET nas_identifier" {
			sawNasIdentifier = true
		}
	}
	assert.True(t, sawNasIdentifier)
}

func TestSetSSIDVerifiesRoundTrip(t *testing.T) {
	sender := &fakeSender{replyDefault: "OK", replies: map[string]string{
		"GET_CONFIG": getConfigPayload("mismatch"),
	}}
	c := newTestController(sender, capabilities.Capabilities{})

	status := c.SetSSID(context.Background(), "my-network")
	require.False(t, status.Succeeded())
	assert.Equal(t, aperrors.InternalError, status.Code)
}

func TestSetSSIDRejectsOversized(t *testing.T) {
	sender := &fakeSender{}
	c := newTestController(sender, capabilities.Capabilities{})

	long := ""
	for i := 0; i < 33; i++ {
		long += "a"
	}
	status := c.SetSSID(context.Background(), long)
	require.False(t, status.Succeeded())
	assert.Equal(t, aperrors.InvalidParameter, status.Code)
}

func TestSetNetworkBridgeWithEnforceNowIssuesReload(t *testing.T) {
	sender := &fakeSender{replyDefault: "OK"}
	c := newTestController(sender, capabilities.Capabilities{})

	status := c.SetNetworkBridgeWithEnforce(context.Background(), "br0", Now)
	require.True(t, status.Succeeded())
	assert.Contains(t, sender.seen, "RELOAD")
}

func TestSetNetworkBridgeWithEnforceDeferSkipsReload(t *testing.T) {
	sender := &fakeSender{replyDefault: "OK"}
	c := newTestController(sender, capabilities.Capabilities{})

	status := c.SetNetworkBridgeWithEnforce(context.Background(), "br0", Defer)
	require.True(t, status.Succeeded())
	assert.NotContains(t, sender.seen, "RELOAD")
}

func TestSetNetworkBridgeDefaultsToEnforceNow(t *testing.T) {
	sender := &fakeSender{replyDefault: "OK"}
	c := newTestController(sender, capabilities.Capabilities{})

	status := c.SetNetworkBridge(context.Background(), "br0")
	require.True(t, status.Succeeded())
	assert.Contains(t, sender.seen, "RELOAD")
}

func getConfigPayload(ssid string) string {
	return "bssid=02:00:00:00:00:00\nssid=" + ssid + "\nwpa=2\nkey_mgmt=SAE\ngroup_cipher=CCMP\nrsn_pairwise_cipher=CCMP\nwpa_pairwise_cipher=CCMP\n"
}
