// Package controller implements the per-interface access-point
// controller (spec.md §4.3): it translates one high-level operation
// into the right sequence of AP-daemon commands and returns a uniform
// OperationStatus.
package controller

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/wifictl/apcontrold/pkg/wifi/accesspoint"
	"github.com/wifictl/apcontrold/pkg/wifi/aperrors"
	"github.com/wifictl/apcontrold/pkg/wifi/capabilities"
	"github.com/wifictl/apcontrold/pkg/wifi/hostapd"
)

// Enforce selects whether a property write is followed immediately by
// a RELOAD, or deferred to a later operation in the same batch
// (spec.md §4.3).
type Enforce int

const (
	// Now issues RELOAD immediately after the property write.
	Now Enforce = iota
	// Defer leaves the reload to a later operation in the same batch.
	Defer
)

// CommandSender is the subset of *ctrlsock.Session the controller
// needs. Abstracted so tests can fake the daemon without a real
// socket.
type CommandSender interface {
	SendCommand(ctx context.Context, command string) (string, error)
}

// Controller drives one interface's AP-daemon session (spec.md §4.3).
// Controllers are created fresh per operation from a Factory and are
// never shared (spec.md §5).
type Controller struct {
	interfaceName string
	caps          capabilities.Capabilities
	sender        CommandSender
	logger        zerolog.Logger
}

// New constructs a Controller. Exported for Factory implementations
// and tests; most callers obtain a Controller through
// accesspoint.AccessPoint.CreateController.
func New(interfaceName string, caps capabilities.Capabilities, sender CommandSender, logger zerolog.Logger) *Controller {
	return &Controller{
		interfaceName: interfaceName,
		caps:          caps,
		sender:        sender,
		logger:        logger.With().Str("interface", interfaceName).Logger(),
	}
}

// InterfaceName implements accesspoint.Controller.
func (c *Controller) InterfaceName() string { return c.interfaceName }

// GetCapabilities returns the access point's immutable capabilities.
func (c *Controller) GetCapabilities() capabilities.Capabilities {
	return c.caps
}

func (c *Controller) ping(ctx context.Context) error {
	resp, err := c.sender.SendCommand(ctx, hostapd.CmdPing)
	if err != nil {
		return err
	}
	return hostapd.ParsePing(resp)
}

func (c *Controller) status(ctx context.Context) (*hostapd.StatusResponse, error) {
	resp, err := c.sender.SendCommand(ctx, hostapd.CmdStatus)
	if err != nil {
		return nil, err
	}
	return hostapd.ParseStatus(resp)
}

func (c *Controller) getConfig(ctx context.Context) (*hostapd.ConfigResponse, error) {
	resp, err := c.sender.SendCommand(ctx, hostapd.CmdGetConfig)
	if err != nil {
		return nil, err
	}
	return hostapd.ParseGetConfig(resp)
}

// set issues one SET command and interprets its OK/FAIL reply.
func (c *Controller) set(ctx context.Context, key, value string) error {
	resp, err := c.sender.SendCommand(ctx, hostapd.BuildSet(key, value))
	if err != nil {
		return err
	}
	result, err := hostapd.ParseOKFail("SET "+key, resp)
	if err != nil {
		return err
	}
	if result == hostapd.Fail {
		return &daemonRejected{Key: key, Value: value}
	}
	return nil
}

// setAll issues an ordered batch of SET commands, stopping at the
// first failure (spec.md §4.3 "any daemon command failure aborts the
// in-progress operation"; partial writes are not rolled back).
func (c *Controller) setAll(ctx context.Context, writes []hostapd.PropertyWrite) error {
	for _, w := range writes {
		if err := c.set(ctx, w.Key, w.Value); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) reload(ctx context.Context) error {
	resp, err := c.sender.SendCommand(ctx, hostapd.CmdReload)
	if err != nil {
		return err
	}
	result, err := hostapd.ParseOKFail(hostapd.CmdReload, resp)
	if err != nil {
		return err
	}
	if result == hostapd.Fail {
		return &daemonRejected{Key: hostapd.CmdReload}
	}
	return nil
}

// reloadIfNow issues RELOAD when enforce is Now.
func (c *Controller) reloadIfNow(ctx context.Context, enforce Enforce) error {
	if enforce != Now {
		return nil
	}
	return c.reload(ctx)
}

type daemonRejected struct {
	Key   string
	Value string
}

func (e *daemonRejected) Error() string {
	if e.Value == "" {
		return "daemon rejected " + e.Key
	}
	return "daemon rejected " + e.Key + "=" + e.Value
}

// internalError wraps err (a daemon/protocol/I-O failure) into an
// InternalError OperationStatus (spec.md §7 propagation policy).
func (c *Controller) internalError(operation string, err error) *aperrors.OperationStatus {
	return aperrors.Fail(c.interfaceName, operation, aperrors.InternalError, "%v", err)
}

// defaultOperationDeadline bounds operations that issue several
// sequential commands, each individually bounded by the session's own
// command timeout; this is a backstop against a stuck sequence.
const defaultOperationDeadline = 10 * time.Second

func (c *Controller) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultOperationDeadline)
}
