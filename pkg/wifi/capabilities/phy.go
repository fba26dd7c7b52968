package capabilities

// PhyType is an IEEE 802.11 PHY generation.
type PhyType int

const (
	PhyUnknown PhyType = iota
	PhyB
	PhyG
	PhyN
	PhyA
	PhyAC
	PhyAD
	PhyAX
	PhyBE
)

func (p PhyType) String() string {
	switch p {
	case PhyB:
		return "B"
	case PhyG:
		return "G"
	case PhyN:
		return "N"
	case PhyA:
		return "A"
	case PhyAC:
		return "AC"
	case PhyAD:
		return "AD"
	case PhyAX:
		return "AX"
	case PhyBE:
		return "BE"
	default:
		return "Unknown"
	}
}

// ImpliedPhyTypes returns p and every lower-numbered standard it
// additively enables, per spec.md §4.2 (AX implies AC implies N).
func ImpliedPhyTypes(p PhyType) []PhyType {
	switch p {
	case PhyAX:
		return []PhyType{PhyAX, PhyAC, PhyN}
	case PhyAC:
		return []PhyType{PhyAC, PhyN}
	case PhyN:
		return []PhyType{PhyN}
	default:
		return []PhyType{p}
	}
}

// FrequencyBand is one of the three Wi-Fi spectrum bands.
type FrequencyBand int

const (
	BandUnknown FrequencyBand = iota
	Band2_4GHz
	Band5GHz
	Band6GHz
)

func (b FrequencyBand) String() string {
	switch b {
	case Band2_4GHz:
		return "2.4GHz"
	case Band5GHz:
		return "5GHz"
	case Band6GHz:
		return "6GHz"
	default:
		return "Unknown"
	}
}

// WireToken returns the hostapd setband token for b ("2G"/"5G"/"6G").
func (b FrequencyBand) WireToken() string {
	switch b {
	case Band2_4GHz:
		return "2G"
	case Band5GHz:
		return "5G"
	case Band6GHz:
		return "6G"
	default:
		return ""
	}
}

// ParseFrequencyBandToken parses a single setband token.
func ParseFrequencyBandToken(token string) FrequencyBand {
	switch token {
	case "2G":
		return Band2_4GHz
	case "5G":
		return Band5GHz
	case "6G":
		return Band6GHz
	default:
		return BandUnknown
	}
}
