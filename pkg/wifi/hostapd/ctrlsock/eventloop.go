package ctrlsock

import (
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const readBufferSize = 4096

// readLoop is the session's dedicated worker task. It multiplexes the
// control socket and the internal wake file descriptor through epoll
// (spec.md §4.1, §9): while attached, reads that are not the response
// to an in-flight command are delivered to the listener rather than
// the command caller. Close is effected by writing to the wake fd; the
// loop returns as soon as it sees the wake fd readable, without reading
// any datagrams still queued on the socket.
func (s *Session) readLoop() {
	defer close(s.loopDone)

	events := make([]unix.EpollEvent, 4)
	buf := make([]byte, readBufferSize)

	for {
		n, err := unix.EpollWait(s.epollFD, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			s.logger.Error().Err(err).Msg("control socket epoll wait failed")
			return
		}

		for i := 0; i < n; i++ {
			fd := int(events[i].Fd)
			switch fd {
			case s.wakeReadFD:
				return
			case s.socketFD:
				s.drainSocket(buf)
			}
		}
	}
}

func (s *Session) drainSocket(buf []byte) {
	for {
		n, err := unix.Read(s.socketFD, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			s.logger.Error().Err(err).Msg("control socket read failed")
			return
		}
		if n == 0 {
			return
		}
		s.dispatch(append([]byte(nil), buf[:n]...))
	}
}

// dispatch routes one datagram: unsolicited events (prefixed with a
// "<N>" severity marker, spec.md §4.1) go to the listener; everything
// else is treated as the response to the in-flight command.
func (s *Session) dispatch(data []byte) {
	if level, message, ok := parseSeverityPrefix(string(data)); ok {
		s.deliverEvent(level, message)
		return
	}

	s.pendingMu.Lock()
	ch := s.pendingCh
	s.pendingMu.Unlock()

	if ch == nil {
		// No in-flight command expects this payload; treat it as an
		// unprefixed unsolicited message rather than dropping it
		// silently (spec.md SUPPLEMENTED FEATURES: malformed/unprefixed
		// lines are still delivered, with an Unknown level).
		s.deliverEvent(unknownSeverityLevel, string(data))
		return
	}

	select {
	case ch <- data:
	default:
	}
}

const unknownSeverityLevel = -1

// parseSeverityPrefix strips a leading "<N>" marker and returns the
// numeric level plus the remainder (spec.md §4.1).
func parseSeverityPrefix(payload string) (level int, message string, ok bool) {
	if len(payload) < 3 || payload[0] != '<' {
		return 0, "", false
	}
	end := strings.IndexByte(payload, '>')
	if end < 0 {
		return 0, "", false
	}
	n, err := strconv.Atoi(payload[1:end])
	if err != nil {
		return 0, "", false
	}
	return n, payload[end+1:], true
}

func (s *Session) deliverEvent(level int, message string) {
	s.listenerMu.RLock()
	listener := s.listener
	s.listenerMu.RUnlock()

	if listener == nil {
		return
	}
	listener.OnEvent(level, message)
}
