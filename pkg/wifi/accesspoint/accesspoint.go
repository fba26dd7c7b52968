// Package accesspoint defines the access-point value object and the
// factory abstraction the manager uses to mint controllers for it
// (spec.md §3, §9 "class hierarchy for access points").
package accesspoint

import "github.com/wifictl/apcontrold/pkg/wifi/capabilities"

// Controller is the minimal surface any backend's controller
// implementation exposes to the manager. Concrete operations (Enable,
// SetPhyType, ...) live on the richer type returned by a specific
// ControllerFactory implementation (see pkg/wifi/controller); the
// manager only needs to know a controller was mintable and which
// interface it answers for.
type Controller interface {
	InterfaceName() string
}

// ControllerFactory mints a Controller for an AccessPoint. Construction
// failing (a non-nil error or a nil Controller) is how the manager
// learns an interface is not
// controllable by the backing daemon (spec.md §4.6 add()).
type ControllerFactory interface {
	CreateController(ap *AccessPoint) (Controller, error)
}

// AccessPoint represents one Wi-Fi interface operated as an access
// point (spec.md §3). It is a value object: the manager owns it, and
// destroys it (by dropping its reference) on Departed or manager
// teardown.
type AccessPoint struct {
	// InterfaceName is the access point's identity; immutable.
	InterfaceName string
	// MACAddress is optional at construction.
	MACAddress [6]byte
	HasMAC     bool
	// StaticAttributes is an implementation-defined key/value bag set
	// at registration (e.g. wiphy index, driver name).
	StaticAttributes map[string]string
	// Capabilities are the immutable, hardware-reported properties
	// read at discovery time (spec.md §3). Kept as its own typed field
	// rather than folded into StaticAttributes since every access
	// point has exactly one and the controller needs it structured.
	Capabilities capabilities.Capabilities

	factory ControllerFactory
}

// New constructs an AccessPoint bound to factory for controller
// creation. attributes may be nil.
func New(interfaceName string, mac [6]byte, hasMAC bool, attributes map[string]string, caps capabilities.Capabilities, factory ControllerFactory) *AccessPoint {
	if attributes == nil {
		attributes = map[string]string{}
	}
	return &AccessPoint{
		InterfaceName:    interfaceName,
		MACAddress:       mac,
		HasMAC:           hasMAC,
		StaticAttributes: attributes,
		Capabilities:     caps,
		factory:          factory,
	}
}

// CreateController mints a fresh controller for this access point.
// Controllers are not shared or cached; spec.md §5 requires them to be
// created fresh per operation from the factory.
func (a *AccessPoint) CreateController() (Controller, error) {
	return a.factory.CreateController(a)
}
