package capabilities

// CipherSuite is a pairwise or group traffic cipher.
type CipherSuite int

const (
	CipherUnknown CipherSuite = iota
	CipherCCMP
	CipherGCMP
	CipherGCMP256
	CipherCCMP256
	CipherTKIP
	CipherAES128CMAC
	CipherBIPCMAC128
	CipherBIPGMAC128
	CipherBIPGMAC256
	CipherBIPCMAC256
	CipherGTKNotUsed
)

var cipherNames = map[CipherSuite]string{
	CipherCCMP:        "CCMP",
	CipherGCMP:        "GCMP",
	CipherGCMP256:     "GCMP-256",
	CipherCCMP256:     "CCMP-256",
	CipherTKIP:        "TKIP",
	CipherAES128CMAC:  "AES-128-CMAC",
	CipherBIPCMAC128:  "BIP-CMAC-128",
	CipherBIPGMAC128:  "BIP-GMAC-128",
	CipherBIPGMAC256:  "BIP-GMAC-256",
	CipherBIPCMAC256:  "BIP-CMAC-256",
	CipherGTKNotUsed:  "GTK_NOT_USED",
}

func (c CipherSuite) String() string {
	if name, ok := cipherNames[c]; ok {
		return name
	}
	return "Unknown"
}

// ParseCipherSuite maps a wire token to a CipherSuite, or CipherUnknown
// for anything not recognized (spec.md §4.2 parser contract: unknown
// enum tokens map to an Unknown sentinel).
func ParseCipherSuite(token string) CipherSuite {
	for suite, name := range cipherNames {
		if name == token {
			return suite
		}
	}
	return CipherUnknown
}

// AkmSuite is an authentication and key-management family.
type AkmSuite int

const (
	AkmUnknown AkmSuite = iota
	AkmWPAPSK
	AkmWPAEAP
	AkmSAE
	AkmFTPSK
	AkmFTSAE
	AkmFTEAP
	AkmWPAEAPSHA256
	AkmWPAPSKSHA256
	AkmWPAEAPSuiteB
	AkmWPAEAPSuiteB192
	AkmFILSSHA256
	AkmFILSSHA384
	AkmFTFILSSHA256
	AkmFTFILSSHA384
	AkmOWE
	AkmDPP
	AkmOSEN
	AkmPASN
	AkmFTEAPSHA384
)

var akmNames = map[AkmSuite]string{
	AkmWPAPSK:          "WPA-PSK",
	AkmWPAEAP:          "WPA-EAP",
	AkmSAE:             "SAE",
	AkmFTPSK:           "FT-PSK",
	AkmFTSAE:           "FT-SAE",
	AkmFTEAP:           "FT-EAP",
	AkmWPAEAPSHA256:    "WPA-EAP-SHA256",
	AkmWPAPSKSHA256:    "WPA-PSK-SHA256",
	AkmWPAEAPSuiteB:    "WPA-EAP-SUITE-B",
	AkmWPAEAPSuiteB192: "WPA-EAP-SUITE-B-192",
	AkmFILSSHA256:      "FILS-SHA256",
	AkmFILSSHA384:      "FILS-SHA384",
	AkmFTFILSSHA256:    "FT-FILS-SHA256",
	AkmFTFILSSHA384:    "FT-FILS-SHA384",
	AkmOWE:             "OWE",
	AkmDPP:             "DPP",
	AkmOSEN:            "OSEN",
	AkmPASN:            "PASN",
	AkmFTEAPSHA384:     "FT-EAP-SHA384",
}

func (a AkmSuite) String() string {
	if name, ok := akmNames[a]; ok {
		return name
	}
	return "Unknown"
}

// ParseAkmSuite maps a wire token to an AkmSuite, or AkmUnknown.
func ParseAkmSuite(token string) AkmSuite {
	for suite, name := range akmNames {
		if name == token {
			return suite
		}
	}
	return AkmUnknown
}

// IsFastTransition reports whether a belongs to the fast-transition
// (FT) family, which requires a fresh nas_identifier before the
// wpa_key_mgmt write (spec.md §4.2).
func (a AkmSuite) IsFastTransition() bool {
	switch a {
	case AkmFTPSK, AkmFTSAE, AkmFTEAP, AkmFTFILSSHA256, AkmFTFILSSHA384, AkmFTEAPSHA384:
		return true
	default:
		return false
	}
}

// IsDot1X reports whether a belongs to the IEEE 802.1X family, which
// requires ieee8021x=1 before the wpa_key_mgmt write (spec.md §4.2).
func (a AkmSuite) IsDot1X() bool {
	switch a {
	case AkmWPAEAP, AkmWPAEAPSHA256, AkmWPAEAPSuiteB, AkmWPAEAPSuiteB192, AkmFTEAP, AkmFTEAPSHA384:
		return true
	default:
		return false
	}
}

// SecurityProtocol selects the WPA generation bit written to hostapd's
// "wpa" property. WPA2 and WPA3 share the same bit; they are
// distinguished only by AkmSuite (spec.md §9 open question).
type SecurityProtocol int

const (
	SecurityUnknown SecurityProtocol = iota
	SecurityWPA
	SecurityWPA2WPA3
)

func (s SecurityProtocol) String() string {
	switch s {
	case SecurityWPA:
		return "WPA"
	case SecurityWPA2WPA3:
		return "WPA2/WPA3"
	default:
		return "Unknown"
	}
}

// Bit returns the protocol's contribution to hostapd's "wpa" bitmask.
func (s SecurityProtocol) Bit() int {
	switch s {
	case SecurityWPA:
		return 1
	case SecurityWPA2WPA3:
		return 2
	default:
		return 0
	}
}

// PairwiseProperty returns the hostapd property name used to configure
// this protocol's pairwise cipher list ("wpa_pairwise" or
// "rsn_pairwise").
func (s SecurityProtocol) PairwiseProperty() string {
	switch s {
	case SecurityWPA:
		return "wpa_pairwise"
	case SecurityWPA2WPA3:
		return "rsn_pairwise"
	default:
		return ""
	}
}

// AuthAlgorithm is a bit in hostapd's auth_algs bitmask.
type AuthAlgorithm int

const (
	AuthOpenSystem AuthAlgorithm = 1 << iota
	AuthSharedKey
)

// SupportedAuthAlgorithms masks a value to the algorithms this package
// knows how to encode (spec.md §4.2: "masked to OpenSystem|SharedKey
// before writing").
const SupportedAuthAlgorithms = int(AuthOpenSystem) | int(AuthSharedKey)
