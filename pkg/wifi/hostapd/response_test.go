package hostapd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePing(t *testing.T) {
	assert.NoError(t, ParsePing("PONG"))

	err := ParsePing("garbage")
	require.Error(t, err)
	var protoErr *ProtocolError
	assert.ErrorAs(t, err, &protoErr)
}

func TestParseOKFail(t *testing.T) {
	result, err := ParseOKFail(CmdReload, "OK\n")
	require.NoError(t, err)
	assert.Equal(t, OK, result)

	result, err = ParseOKFail(CmdReload, "FAIL")
	require.NoError(t, err)
	assert.Equal(t, Fail, result)

	_, err = ParseOKFail(CmdReload, "WAT")
	assert.Error(t, err)
}

func TestParseGet(t *testing.T) {
	value, err := ParseGet("ssid", "my-network\n")
	require.NoError(t, err)
	assert.Equal(t, "my-network", value)

	_, err = ParseGet("ssid", "FAIL")
	assert.Error(t, err)
}

const statusPayload = `state=ENABLED
ieee80211n=1
ieee80211ac=1
ieee80211ax=0
disable_11n=0
disable_11ac=0
disable_11ax=1
bss[0]_bssid=02:00:00:00:00:00
bss[0]_ssid=guest
bss[0]_num_sta=3
`

func TestParseStatus(t *testing.T) {
	resp, err := ParseStatus(statusPayload)
	require.NoError(t, err)

	assert.Equal(t, "ENABLED", resp.State)
	assert.True(t, resp.Ieee80211N)
	assert.True(t, resp.Ieee80211AC)
	assert.False(t, resp.Ieee80211AX)

	require.Len(t, resp.BSSList, 1)
	assert.Equal(t, "guest", resp.BSSList[0].SSID)
	assert.Equal(t, 3, resp.BSSList[0].NumStation)
}

func TestParseStatusMissingRequiredKey(t *testing.T) {
	_, err := ParseStatus("state=ENABLED\n")
	assert.Error(t, err)
}

func TestStatusResponseSatisfiesPhyType(t *testing.T) {
	resp, err := ParseStatus(statusPayload)
	require.NoError(t, err)

	assert.True(t, resp.SatisfiesPhyType([]string{"N", "AC"}))
	assert.False(t, resp.SatisfiesPhyType([]string{"AX"}))
}

const getConfigPayload = `bssid=02:00:00:00:00:00
ssid=guest
wpa=2
key_mgmt=SAE WPA-PSK
group_cipher=CCMP
rsn_pairwise_cipher=CCMP
wpa_pairwise_cipher=CCMP
`

func TestParseGetConfig(t *testing.T) {
	resp, err := ParseGetConfig(getConfigPayload)
	require.NoError(t, err)

	assert.Equal(t, "guest", resp.SSID)
	assert.Equal(t, 2, resp.WPA)
	assert.True(t, resp.HasKeyManagement("SAE"))
	assert.False(t, resp.HasKeyManagement("FT-SAE"))
}
