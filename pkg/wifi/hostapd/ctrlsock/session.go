package ctrlsock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// DefaultCommandTimeout is the reference bound from spec.md §4.1.
const DefaultCommandTimeout = 2 * time.Second

// EventListener receives unsolicited daemon messages (spec.md §4.1).
// Implementations must not block or panic; the session invokes
// listeners from its read-loop goroutine without holding any lock
// (spec.md §9 "unsolicited-event callbacks dispatched from I/O
// threads").
type EventListener interface {
	OnEvent(level int, message string)
}

// Session owns exactly one bidirectional control-socket connection for
// one interface (spec.md §4.1).
type Session struct {
	interfaceName  string
	socketFD       int
	epollFD        int
	wakeReadFD     int
	wakeWriteFD    int
	localSockPath  string
	commandTimeout time.Duration
	logger         zerolog.Logger

	cmdMu sync.Mutex // serializes SendCommand callers

	pendingMu  sync.Mutex
	pendingKey uint64
	pendingCh  chan []byte

	listenerMu sync.RWMutex
	listener   EventListener
	subscribed bool

	loopDone chan struct{}
	closeMu  sync.Mutex
	closed   bool
}

// Connect establishes a control-socket session for interfaceName at
// socketDir/interfaceName. It fails with *ConnectFailed when the
// socket is absent or permission-denied (spec.md §4.1: "connection
// existence is how the system decides the daemon manages this
// interface").
func Connect(interfaceName, socketDir string, commandTimeout time.Duration, logger zerolog.Logger) (*Session, error) {
	if commandTimeout <= 0 {
		commandTimeout = DefaultCommandTimeout
	}
	remotePath := filepath.Join(socketDir, interfaceName)

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, &ConnectFailed{InterfaceName: interfaceName, SocketPath: remotePath, Err: err}
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, &ConnectFailed{InterfaceName: interfaceName, SocketPath: remotePath, Err: err}
	}

	localPath := fmt.Sprintf("%s/apcontrold-%s-%d.sock", os.TempDir(), interfaceName, os.Getpid())
	os.Remove(localPath)
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: localPath}); err != nil {
		unix.Close(fd)
		return nil, &ConnectFailed{InterfaceName: interfaceName, SocketPath: remotePath, Err: err}
	}
	if err := unix.Connect(fd, &unix.SockaddrUnix{Name: remotePath}); err != nil {
		unix.Close(fd)
		os.Remove(localPath)
		return nil, &ConnectFailed{InterfaceName: interfaceName, SocketPath: remotePath, Err: err}
	}

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		unix.Close(fd)
		os.Remove(localPath)
		return nil, &ConnectFailed{InterfaceName: interfaceName, SocketPath: remotePath, Err: err}
	}

	wake := make([]int, 2)
	if err := unix.Pipe2(wake, unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		unix.Close(fd)
		unix.Close(epfd)
		os.Remove(localPath)
		return nil, &ConnectFailed{InterfaceName: interfaceName, SocketPath: remotePath, Err: err}
	}

	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, fd, &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}); err != nil {
		unix.Close(fd)
		unix.Close(epfd)
		unix.Close(wake[0])
		unix.Close(wake[1])
		os.Remove(localPath)
		return nil, &ConnectFailed{InterfaceName: interfaceName, SocketPath: remotePath, Err: err}
	}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wake[0], &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wake[0])}); err != nil {
		unix.Close(fd)
		unix.Close(epfd)
		unix.Close(wake[0])
		unix.Close(wake[1])
		os.Remove(localPath)
		return nil, &ConnectFailed{InterfaceName: interfaceName, SocketPath: remotePath, Err: err}
	}

	s := &Session{
		interfaceName:  interfaceName,
		socketFD:       fd,
		epollFD:        epfd,
		wakeReadFD:     wake[0],
		wakeWriteFD:    wake[1],
		localSockPath:  localPath,
		commandTimeout: commandTimeout,
		logger:         logger.With().Str("interface", interfaceName).Logger(),
		loopDone:       make(chan struct{}),
	}

	go s.readLoop()
	return s, nil
}

// SubscribeEvents attaches listener to the session's unsolicited event
// stream. It may only be called once per session (spec.md §4.1).
func (s *Session) SubscribeEvents(listener EventListener) error {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	if s.subscribed {
		return fmt.Errorf("session for %q is already subscribed", s.interfaceName)
	}
	s.listener = listener
	s.subscribed = true
	return nil
}

// SendCommand blocks until a response is received, or the command
// timeout / ctx deadline elapses, whichever is sooner. Callers sharing
// one session observe command-response atomicity (spec.md §4.1, §5).
func (s *Session) SendCommand(ctx context.Context, command string) (string, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	ch := make(chan []byte, 1)
	s.pendingMu.Lock()
	s.pendingKey++
	s.pendingCh = ch
	s.pendingMu.Unlock()
	defer func() {
		s.pendingMu.Lock()
		s.pendingCh = nil
		s.pendingMu.Unlock()
	}()

	if _, err := unix.Write(s.socketFD, []byte(command)); err != nil {
		return "", &SendFailed{InterfaceName: s.interfaceName, Err: err}
	}

	timeout := s.commandTimeout
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case data := <-ch:
		return string(data), nil
	case <-timer.C:
		return "", &Timeout{InterfaceName: s.interfaceName, Command: command}
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.loopDone:
		return "", &SendFailed{InterfaceName: s.interfaceName, Err: fmt.Errorf("session closed")}
	}
}

// Close releases the session. Safe to call multiple times.
func (s *Session) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	// Wake the read loop and wait for it to exit before tearing down
	// file descriptors out from under it.
	unix.Write(s.wakeWriteFD, []byte{0})
	<-s.loopDone

	unix.Close(s.socketFD)
	unix.Close(s.epollFD)
	unix.Close(s.wakeReadFD)
	unix.Close(s.wakeWriteFD)
	os.Remove(s.localSockPath)
	return nil
}

// InterfaceName returns the interface this session controls.
func (s *Session) InterfaceName() string { return s.interfaceName }
