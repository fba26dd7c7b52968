package hostapd

import (
	"fmt"
	"strconv"
	"strings"
)

// ProtocolError reports a malformed or unexpected daemon response.
type ProtocolError struct {
	Command string
	Payload string
	Reason  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("hostapd protocol error on %s: %s (payload: %q)", e.Command, e.Reason, e.Payload)
}

// ParsePing fails unless payload begins with PONG (spec.md §4.2).
func ParsePing(payload string) error {
	if !strings.HasPrefix(payload, "PONG") {
		return &ProtocolError{Command: CmdPing, Payload: payload, Reason: "expected PONG"}
	}
	return nil
}

// OKFail is the OK/FAIL result shared by ENABLE, DISABLE, RELOAD,
// TERMINATE and SET.
type OKFail bool

const (
	OK   OKFail = true
	Fail OKFail = false
)

// ParseOKFail interprets an OK/FAIL response body. Anything other than
// exactly "OK" or "FAIL" is a ProtocolError.
func ParseOKFail(command, payload string) (OKFail, error) {
	trimmed := strings.TrimSpace(payload)
	switch trimmed {
	case "OK":
		return OK, nil
	case "FAIL":
		return Fail, nil
	default:
		return false, &ProtocolError{Command: command, Payload: payload, Reason: "expected OK or FAIL"}
	}
}

// ParseGet interprets a "GET <key>" response: the raw value, or an
// error if the daemon replied FAIL.
func ParseGet(key, payload string) (string, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "FAIL" {
		return "", &ProtocolError{Command: "GET " + key, Payload: payload, Reason: "daemon returned FAIL"}
	}
	return trimmed, nil
}

// parseKeyValue splits a "key=value" line-oriented payload into a map,
// failing if any key in required is absent. This single helper backs
// every typed response parser below, mirroring the original
// implementation's reuse of one generic key=value reader across
// WpaCommandStatus and WpaCommandGetConfig.
func parseKeyValue(command, payload string, required, optional []string) (map[string]string, error) {
	values := make(map[string]string)
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		values[key] = value
	}

	for _, key := range required {
		if _, ok := values[key]; !ok {
			return nil, &ProtocolError{Command: command, Payload: payload, Reason: "missing required key " + key}
		}
	}
	_ = optional // optional keys are simply absent from the map when not present

	return values, nil
}

// parseBool interprets hostapd's "0"/"1" flag convention.
func parseBool(values map[string]string, key string) bool {
	return values[key] == "1"
}

// parseIntDefault parses a decimal integer, locale-independent, or
// returns def on any parse failure.
func parseIntDefault(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return n
}

// StatusResponse is the parsed result of a STATUS command (spec.md
// §4.2).
type StatusResponse struct {
	State        string
	Ieee80211N   bool
	Ieee80211AC  bool
	Ieee80211AX  bool
	Disable11N   bool
	Disable11AC  bool
	Disable11AX  bool
	BSSList      []BSSStatus
	Raw          map[string]string
}

// BSSStatus is one indexed "bss[i]_*" entry in a STATUS response.
type BSSStatus struct {
	Index      int
	BSSID      string
	SSID       string
	NumStation int
}

var statusRequiredKeys = []string{
	"state", "ieee80211n", "ieee80211ac", "ieee80211ax",
	"disable_11n", "disable_11ac", "disable_11ax",
}

// ParseStatus parses a STATUS response payload.
func ParseStatus(payload string) (*StatusResponse, error) {
	values, err := parseKeyValue(CmdStatus, payload, statusRequiredKeys, nil)
	if err != nil {
		return nil, err
	}

	resp := &StatusResponse{
		State:       values["state"],
		Ieee80211N:  parseBool(values, "ieee80211n"),
		Ieee80211AC: parseBool(values, "ieee80211ac"),
		Ieee80211AX: parseBool(values, "ieee80211ax"),
		Disable11N:  parseBool(values, "disable_11n"),
		Disable11AC: parseBool(values, "disable_11ac"),
		Disable11AX: parseBool(values, "disable_11ax"),
		Raw:         values,
	}
	resp.BSSList = extractBSSList(values)
	return resp, nil
}

func extractBSSList(values map[string]string) []BSSStatus {
	indexed := make(map[int]*BSSStatus)
	for key, value := range values {
		if !strings.HasPrefix(key, "bss[") {
			continue
		}
		end := strings.Index(key, "]")
		if end < 0 {
			continue
		}
		idx, err := strconv.Atoi(key[len("bss["):end])
		if err != nil {
			continue
		}
		suffix := strings.TrimPrefix(key[end+1:], "_")

		bss, ok := indexed[idx]
		if !ok {
			bss = &BSSStatus{Index: idx}
			indexed[idx] = bss
		}
		switch suffix {
		case "bssid":
			bss.BSSID = value
		case "ssid":
			bss.SSID = value
		case "num_sta":
			bss.NumStation = parseIntDefault(value, 0)
		}
	}

	result := make([]BSSStatus, 0, len(indexed))
	for _, bss := range indexed {
		result = append(result, *bss)
	}
	return result
}

// SatisfiesPhyType reports whether this STATUS response shows the
// ieee80211X/disable_11X flags consistent with every PHY level implied
// by phy (spec.md §4.3 set_phy_type success audit).
func (s *StatusResponse) SatisfiesPhyType(impliedLevels []string) bool {
	for _, level := range impliedLevels {
		switch level {
		case "N":
			if !s.Ieee80211N || s.Disable11N {
				return false
			}
		case "AC":
			if !s.Ieee80211AC || s.Disable11AC {
				return false
			}
		case "AX":
			if !s.Ieee80211AX || s.Disable11AX {
				return false
			}
		}
	}
	return true
}

// ConfigResponse is the parsed result of a GET_CONFIG command (spec.md
// §4.2).
type ConfigResponse struct {
	BSSID             string
	SSID              string
	WPA               int
	KeyMgmt           string
	GroupCipher       string
	RSNPairwiseCipher string
	WPAPairwiseCipher string
	Raw               map[string]string
}

var getConfigRequiredKeys = []string{
	"bssid", "ssid", "wpa", "key_mgmt", "group_cipher",
	"rsn_pairwise_cipher", "wpa_pairwise_cipher",
}

// ParseGetConfig parses a GET_CONFIG response payload.
func ParseGetConfig(payload string) (*ConfigResponse, error) {
	values, err := parseKeyValue(CmdGetConfig, payload, getConfigRequiredKeys, nil)
	if err != nil {
		return nil, err
	}

	return &ConfigResponse{
		BSSID:             values["bssid"],
		SSID:              values["ssid"],
		WPA:               parseIntDefault(values["wpa"], 0),
		KeyMgmt:           values["key_mgmt"],
		GroupCipher:       values["group_cipher"],
		RSNPairwiseCipher: values["rsn_pairwise_cipher"],
		WPAPairwiseCipher: values["wpa_pairwise_cipher"],
		Raw:               values,
	}, nil
}

// HasKeyManagement reports whether name appears in the space-separated
// key_mgmt list.
func (c *ConfigResponse) HasKeyManagement(name string) bool {
	for _, entry := range strings.Fields(c.KeyMgmt) {
		if entry == name {
			return true
		}
	}
	return false
}
