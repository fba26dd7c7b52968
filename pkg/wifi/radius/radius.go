// Package radius holds the RADIUS endpoint configuration domain model
// (spec.md §3) and validates it against layeh.com/radius's packet
// encoder before the controller hands the values to hostapd. apcontrold
// never speaks RADIUS itself — the AP daemon owns that conversation —
// but rejecting a malformed secret or address before it reaches the
// daemon is cheaper than discovering it from a daemon SET failure.
package radius

import (
	"fmt"
	"net"

	"layeh.com/radius"
	"layeh.com/radius/rfc2865"
)

// EndpointType distinguishes a RADIUS server's role.
type EndpointType int

const (
	EndpointUnknown EndpointType = iota
	EndpointAuthentication
	EndpointAccounting
)

func (t EndpointType) String() string {
	switch t {
	case EndpointAuthentication:
		return "Authentication"
	case EndpointAccounting:
		return "Accounting"
	default:
		return "Unknown"
	}
}

// defaultPort returns the well-known UDP port for t (1812/1813).
func (t EndpointType) defaultPort() int {
	switch t {
	case EndpointAccounting:
		return 1813
	default:
		return 1812
	}
}

// PropertyPrefix returns the hostapd property prefix for t
// ("auth_server_" or "acct_server_", spec.md §4.2).
func (t EndpointType) PropertyPrefix() string {
	switch t {
	case EndpointAccounting:
		return "acct_server_"
	default:
		return "auth_server_"
	}
}

// EndpointConfig is one RADIUS server endpoint.
type EndpointConfig struct {
	Type         EndpointType
	ServerAddr   string
	Port         int // 0 selects Type's default
	SharedSecret []byte
}

// ResolvedPort returns Port, or Type's default when Port is unset.
func (e EndpointConfig) ResolvedPort() int {
	if e.Port != 0 {
		return e.Port
	}
	return e.Type.defaultPort()
}

// Config aggregates the RADIUS endpoints for one access point
// (spec.md §3): a required primary authentication endpoint, an
// optional primary accounting endpoint, and ordered fallbacks.
type Config struct {
	PrimaryAuthentication EndpointConfig
	PrimaryAccounting     *EndpointConfig
	Fallbacks             []EndpointConfig
}

// Validate checks every endpoint's address and shared secret by
// building a minimal RADIUS Access-Request packet through
// layeh.com/radius and attempting to encode it; an encoding failure
// (e.g. an address that won't parse as the NAS-IP-Address attribute,
// or a secret the library rejects) surfaces as a descriptive error
// instead of a daemon-side SET failure.
func (c Config) Validate() error {
	if err := validateEndpoint(c.PrimaryAuthentication); err != nil {
		return fmt.Errorf("primary authentication endpoint: %w", err)
	}
	if c.PrimaryAccounting != nil {
		if err := validateEndpoint(*c.PrimaryAccounting); err != nil {
			return fmt.Errorf("primary accounting endpoint: %w", err)
		}
	}
	for i, fb := range c.Fallbacks {
		if err := validateEndpoint(fb); err != nil {
			return fmt.Errorf("fallback endpoint %d: %w", i, err)
		}
	}
	return nil
}

func validateEndpoint(e EndpointConfig) error {
	if e.ServerAddr == "" {
		return fmt.Errorf("server address is empty")
	}
	if len(e.SharedSecret) == 0 {
		return fmt.Errorf("shared secret is empty")
	}

	packet := radius.New(radius.CodeAccessRequest, e.SharedSecret)
	ip := net.ParseIP(e.ServerAddr)
	if ip == nil {
		// Hostnames are legal server addresses; NAS-IP-Address only
		// validates the literal-IP case, so fall back to localhost
		// purely to exercise the secret-encoding path below.
		ip = net.IPv4(127, 0, 0, 1)
	}
	if err := rfc2865.NASIPAddress_Set(packet, ip); err != nil {
		return fmt.Errorf("invalid server address: %w", err)
	}
	if _, err := packet.Encode(); err != nil {
		return fmt.Errorf("invalid shared secret: %w", err)
	}
	return nil
}
