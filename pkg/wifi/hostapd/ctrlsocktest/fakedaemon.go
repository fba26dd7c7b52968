// Package ctrlsocktest provides an in-process fake AP-daemon control
// socket for exercising pkg/wifi/hostapd/ctrlsock without a real
// hostapd. It speaks the same unix datagram protocol: one request
// datagram in, one reply datagram back to the sender's bound address,
// plus unsolicited pushes for event tests.
package ctrlsocktest

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// Handler computes a reply for one received command. Returning ("",
// false) sends no reply, simulating a dropped or timed-out command.
type Handler func(command string) (reply string, ok bool)

// FakeDaemon listens on SocketDir/InterfaceName, matching the real
// hostapd control socket layout (spec.md §4.1).
type FakeDaemon struct {
	InterfaceName string
	SocketDir     string

	fd int

	mu       sync.Mutex
	handler  Handler
	lastFrom unix.Sockaddr

	stop chan struct{}
	done chan struct{}
}

// Start creates the listening socket and begins serving commands with
// handler in a background goroutine.
func Start(interfaceName string, handler Handler) (*FakeDaemon, error) {
	dir, err := os.MkdirTemp("", "apcontrold-ctrlsocktest-*")
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM, 0)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, interfaceName)
	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, err
	}

	d := &FakeDaemon{
		InterfaceName: interfaceName,
		SocketDir:     dir,
		fd:            fd,
		handler:       handler,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
	go d.serve()
	return d, nil
}

// SetHandler swaps the handler used for subsequent commands.
func (d *FakeDaemon) SetHandler(handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = handler
}

func (d *FakeDaemon) serve() {
	defer close(d.done)
	buf := make([]byte, 4096)
	for {
		select {
		case <-d.stop:
			return
		default:
		}

		n, from, err := unix.Recvfrom(d.fd, buf, 0)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}

		d.mu.Lock()
		handler := d.handler
		if from != nil {
			d.lastFrom = from
		}
		d.mu.Unlock()
		if handler == nil {
			continue
		}

		reply, ok := handler(string(buf[:n]))
		if !ok || from == nil {
			continue
		}
		unix.Sendto(d.fd, []byte(reply), 0, from)
	}
}

// PushEvent sends an unsolicited severity-prefixed datagram
// ("<level>message") to the most recently seen client, simulating
// hostapd's asynchronous event delivery (spec.md §4.1). It fails if no
// client has sent a command yet, since the fake daemon (like the real
// control socket) only knows where to send a reply after hearing from
// the client first.
func (d *FakeDaemon) PushEvent(level int, message string) error {
	d.mu.Lock()
	from := d.lastFrom
	d.mu.Unlock()

	if from == nil {
		return fmt.Errorf("ctrlsocktest: no client has contacted %q yet", d.InterfaceName)
	}
	return unix.Sendto(d.fd, []byte(fmt.Sprintf("<%d>%s", level, message)), 0, from)
}

// Close stops serving and removes the socket directory.
func (d *FakeDaemon) Close() error {
	close(d.stop)
	unix.Close(d.fd)
	<-d.done
	return os.RemoveAll(d.SocketDir)
}
