package controller

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/wifictl/apcontrold/pkg/wifi/accesspoint"
	"github.com/wifictl/apcontrold/pkg/wifi/hostapd/ctrlsock"
)

// Factory mints Controllers backed by a real AP-daemon control socket.
// Constructing a controller fails (and the access point is treated as
// not controllable, spec.md §4.6 add()) when the daemon's socket for
// that interface does not exist or is not connectable.
type Factory struct {
	SocketDir      string
	CommandTimeout time.Duration
	Logger         zerolog.Logger
}

// CreateController implements accesspoint.ControllerFactory.
func (f *Factory) CreateController(ap *accesspoint.AccessPoint) (accesspoint.Controller, error) {
	session, err := ctrlsock.Connect(ap.InterfaceName, f.SocketDir, f.CommandTimeout, f.Logger)
	if err != nil {
		return nil, err
	}
	return &sessionController{
		Controller: New(ap.InterfaceName, ap.Capabilities, session, f.Logger),
		session:    session,
	}, nil
}

// sessionController pairs a Controller with the session it owns, so
// callers that mint a controller (the manager's Add validation, the
// gateway's per-operation dispatch) can close the session when they
// are done with it and do not leak the socket.
type sessionController struct {
	*Controller
	session *ctrlsock.Session
}

// Close releases the underlying control-socket session.
func (s *sessionController) Close() error {
	return s.session.Close()
}
