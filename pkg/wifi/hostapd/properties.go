package hostapd

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/wifictl/apcontrold/pkg/wifi/capabilities"
	apradius "github.com/wifictl/apcontrold/pkg/wifi/radius"
)

// PropertyWrite is one ordered "SET <key> <value>" the controller must
// issue against hostapd, in sequence.
type PropertyWrite struct {
	Key   string
	Value string
}

// Property name constants (spec.md §4.2).
const (
	PropHwMode        = "hw_mode"
	PropIeee80211AX    = "ieee80211ax"
	PropDisable11AX    = "disable_11ax"
	PropIeee80211AC    = "ieee80211ac"
	PropDisable11AC    = "disable_11ac"
	PropWmmEnabled     = "wmm_enabled"
	PropIeee80211N     = "ieee80211n"
	PropDisable11N     = "disable_11n"
	PropSetBand        = "setband"
	PropIeee80211W     = "ieee80211w"
	PropAuthAlgs       = "auth_algs"
	PropWpa            = "wpa"
	PropWpaKeyMgmt     = "wpa_key_mgmt"
	PropNasIdentifier  = "nas_identifier"
	PropIeee8021X      = "ieee8021x"
	PropWpaPassphrase  = "wpa_passphrase"
	PropWpaPsk         = "wpa_psk"
	PropSaePassword    = "sae_password"
	PropEapServer      = "eap_server"
	PropOwnIPAddr      = "own_ip_addr"
	PropBridge         = "bridge"
	PropSSID           = "ssid"
)

// ManagementFrameProtectionRequired is the ieee80211w value meaning
// MFP is mandatory for every associating station.
const ManagementFrameProtectionRequired = "2"

func hwModeToken(phy capabilities.PhyType) string {
	switch phy {
	case capabilities.PhyB:
		return "b"
	case capabilities.PhyG:
		return "g"
	case capabilities.PhyA:
		return "a"
	case capabilities.PhyAD:
		return "ad"
	default:
		return "any"
	}
}

// PhyImpliedLevelNames returns the "N"/"AC"/"AX" level names implied by
// phy, matching StatusResponse.SatisfiesPhyType's vocabulary.
func PhyImpliedLevelNames(phy capabilities.PhyType) []string {
	var names []string
	for _, level := range capabilities.ImpliedPhyTypes(phy) {
		switch level {
		case capabilities.PhyAX:
			names = append(names, "AX")
		case capabilities.PhyAC:
			names = append(names, "AC")
		case capabilities.PhyN:
			names = append(names, "N")
		}
	}
	return names
}

// EncodePhySequence returns the ordered property writes that select
// phy, per spec.md §4.2: hw_mode first, then one pair (or triple, for
// N) per implied standard, highest standard first.
func EncodePhySequence(phy capabilities.PhyType) []PropertyWrite {
	writes := []PropertyWrite{{Key: PropHwMode, Value: hwModeToken(phy)}}

	for _, level := range capabilities.ImpliedPhyTypes(phy) {
		switch level {
		case capabilities.PhyAX:
			writes = append(writes,
				PropertyWrite{PropIeee80211AX, "1"},
				PropertyWrite{PropDisable11AX, "0"})
		case capabilities.PhyAC:
			writes = append(writes,
				PropertyWrite{PropIeee80211AC, "1"},
				PropertyWrite{PropDisable11AC, "0"})
		case capabilities.PhyN:
			writes = append(writes,
				PropertyWrite{PropWmmEnabled, "1"},
				PropertyWrite{PropIeee80211N, "1"},
				PropertyWrite{PropDisable11N, "0"})
		}
	}
	return writes
}

// EncodeFrequencyBands returns the setband value and whether 6 GHz
// membership requires Management Frame Protection to be set Required
// (spec.md §4.2). An empty list is rejected.
func EncodeFrequencyBands(bands []capabilities.FrequencyBand) (value string, requiresMFP bool, err error) {
	if len(bands) == 0 {
		return "", false, errors.New("frequency band list is empty")
	}

	tokens := make([]string, 0, len(bands))
	for _, b := range bands {
		token := b.WireToken()
		if token == "" {
			return "", false, fmt.Errorf("unsupported frequency band %v", b)
		}
		tokens = append(tokens, token)
		if b == capabilities.Band6GHz {
			requiresMFP = true
		}
	}
	return strings.Join(tokens, ","), requiresMFP, nil
}

// EncodeAuthAlgorithms OR-combines algorithms into hostapd's auth_algs
// decimal bitmask, masked to the algorithms this package understands
// (spec.md §4.2). An empty list is rejected.
func EncodeAuthAlgorithms(algorithms []capabilities.AuthAlgorithm) (string, error) {
	if len(algorithms) == 0 {
		return "", errors.New("authentication algorithm list is empty")
	}

	mask := 0
	for _, a := range algorithms {
		mask |= int(a)
	}
	mask &= capabilities.SupportedAuthAlgorithms
	if mask == 0 {
		return "", errors.New("no supported authentication algorithms in list")
	}
	return strconv.Itoa(mask), nil
}

// EncodeSecurityProtocols OR-combines protocols into hostapd's wpa
// bitmask.
func EncodeSecurityProtocols(protocols []capabilities.SecurityProtocol) string {
	mask := 0
	for _, p := range protocols {
		mask |= p.Bit()
	}
	return strconv.Itoa(mask)
}

// KeyMgmtEncoding is the result of encoding an AKM suite list: the
// wpa_key_mgmt value plus the side effects that must be applied before
// that property is written (spec.md §4.2).
type KeyMgmtEncoding struct {
	Value           string
	NeedsNasIdentifier bool
	NeedsDot1X      bool
}

// EncodeAkmSuites space-joins the symbolic AKM names and reports which
// side-effect properties (nas_identifier, ieee8021x) must be set first.
// An empty list is rejected.
func EncodeAkmSuites(akms []capabilities.AkmSuite) (KeyMgmtEncoding, error) {
	if len(akms) == 0 {
		return KeyMgmtEncoding{}, errors.New("AKM suite list is empty")
	}

	names := make([]string, 0, len(akms))
	var enc KeyMgmtEncoding
	for _, akm := range akms {
		names = append(names, akm.String())
		if akm.IsFastTransition() {
			enc.NeedsNasIdentifier = true
		}
		if akm.IsDot1X() {
			enc.NeedsDot1X = true
		}
	}
	enc.Value = strings.Join(names, " ")
	return enc, nil
}

// EncodePairwiseCiphers returns the hostapd property name and value for
// one security protocol's pairwise cipher list.
func EncodePairwiseCiphers(protocol capabilities.SecurityProtocol, ciphers []capabilities.CipherSuite) (key, value string) {
	names := make([]string, 0, len(ciphers))
	for _, c := range ciphers {
		names = append(names, c.String())
	}
	return protocol.PairwiseProperty(), strings.Join(names, " ")
}

// EncodePSK returns the property name/value for a PSK: wpa_passphrase
// for an 8..63 character passphrase, or wpa_psk for a 64-character hex
// value (spec.md §4.2).
func EncodePSK(psk *capabilities.PSK) (key, value string, err error) {
	if psk == nil {
		return "", "", errors.New("PSK is nil")
	}
	if psk.Passphrase != "" {
		if len(psk.Passphrase) < 8 || len(psk.Passphrase) > 63 {
			return "", "", fmt.Errorf("passphrase must be 8..63 characters, got %d", len(psk.Passphrase))
		}
		return PropWpaPassphrase, psk.Passphrase, nil
	}
	if psk.HexKey != "" {
		if len(psk.HexKey) != 64 {
			return "", "", fmt.Errorf("hex PSK must be 64 characters, got %d", len(psk.HexKey))
		}
		if _, err := hex.DecodeString(psk.HexKey); err != nil {
			return "", "", fmt.Errorf("hex PSK is not valid hex: %w", err)
		}
		return PropWpaPsk, psk.HexKey, nil
	}
	return "", "", errors.New("PSK has neither passphrase nor hex key set")
}

// EncodeSAEPasswords returns the ordered property writes for a SAE
// password list: a clearing write with an empty value, then one write
// per entry with its qualifiers encoded as "|id=", "|mac=", "|vlanid="
// suffixes (spec.md §4.2).
func EncodeSAEPasswords(passwords []capabilities.SAEPassword) []PropertyWrite {
	writes := []PropertyWrite{{Key: PropSaePassword, Value: ""}}
	for _, p := range passwords {
		value := p.Password
		if p.Identifier != "" {
			value += "|id=" + p.Identifier
		}
		if p.MAC != "" {
			value += "|mac=" + p.MAC
		}
		if p.VlanID != 0 {
			value += "|vlanid=" + strconv.Itoa(p.VlanID)
		}
		writes = append(writes, PropertyWrite{Key: PropSaePassword, Value: value})
	}
	return writes
}

// EncodeRadiusEndpoint returns the ordered property writes for one
// RADIUS endpoint's address, port and shared secret, after validating
// it through pkg/wifi/radius.
func EncodeRadiusEndpoint(endpoint apradius.EndpointConfig) ([]PropertyWrite, error) {
	if err := (apradius.Config{PrimaryAuthentication: endpoint}).Validate(); err != nil {
		return nil, fmt.Errorf("invalid RADIUS endpoint: %w", err)
	}

	prefix := endpoint.Type.PropertyPrefix()
	return []PropertyWrite{
		{Key: prefix + "addr", Value: endpoint.ServerAddr},
		{Key: prefix + "port", Value: strconv.Itoa(endpoint.ResolvedPort())},
		{Key: prefix + "shared_secret", Value: string(endpoint.SharedSecret)},
	}, nil
}
