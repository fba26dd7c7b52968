package capabilities

// OperationalState is the access point's enabled/disabled state.
type OperationalState int

const (
	StateUnknown OperationalState = iota
	StateEnabled
	StateDisabled
)

func (s OperationalState) String() string {
	switch s {
	case StateEnabled:
		return "Enabled"
	case StateDisabled:
		return "Disabled"
	default:
		return "Unknown"
	}
}

// PSK is a pre-shared key, encoded either as an 8..63 character
// passphrase or a 64-character hex value (spec.md §4.2).
type PSK struct {
	Passphrase string
	HexKey     string
}

// SAEPassword is one WPA3-Personal SAE password entry, with optional
// qualifiers encoded as "|id=...", "|mac=...", "|vlanid=..." suffixes
// (spec.md §4.2).
type SAEPassword struct {
	Password   string
	Identifier string
	MAC        string
	VlanID     int
}

// AuthenticationData holds the credential material for a configured
// access point. At least one of PSK or SAEPasswords must be set
// (spec.md §4.3 set_authentication_data).
type AuthenticationData struct {
	PSK          *PSK
	SAEPasswords []SAEPassword
}

// IsEmpty reports whether no credential material is present.
func (a AuthenticationData) IsEmpty() bool {
	return a.PSK == nil && len(a.SAEPasswords) == 0
}

// OperationalConfiguration is the mutable, controller-set configuration
// of an access point (spec.md §3).
type OperationalConfiguration struct {
	PhyType             PhyType
	FrequencyBands      []FrequencyBand
	SSID                string
	AuthAlgorithms      int // bitmask of AuthAlgorithm
	AkmSuites           []AkmSuite
	PairwiseCiphers     map[SecurityProtocol][]CipherSuite
	AuthenticationData  AuthenticationData
	BridgeInterfaceID   string
	OperationalState    OperationalState
}
