package ctrlsock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wifictl/apcontrold/pkg/wifi/hostapd/ctrlsock"
	"github.com/wifictl/apcontrold/pkg/wifi/hostapd/ctrlsocktest"
)

func TestSendCommandRoundTrip(t *testing.T) {
	daemon, err := ctrlsocktest.Start("wlan0", func(command string) (string, bool) {
		if command == "PING" {
			return "PONG", true
		}
		return "UNKNOWN COMMAND", true
	})
	require.NoError(t, err)
	defer daemon.Close()

	session, err := ctrlsock.Connect("wlan0", daemon.SocketDir, time.Second, zerolog.Nop())
	require.NoError(t, err)
	defer session.Close()

	reply, err := session.SendCommand(context.Background(), "PING")
	require.NoError(t, err)
	assert.Equal(t, "PONG", reply)
}

func TestConnectFailsWhenSocketAbsent(t *testing.T) {
	_, err := ctrlsock.Connect("wlan0", t.TempDir(), time.Second, zerolog.Nop())
	require.Error(t, err)
	var connectFailed *ctrlsock.ConnectFailed
	assert.ErrorAs(t, err, &connectFailed)
}

func TestSendCommandTimesOutWhenDaemonDrops(t *testing.T) {
	daemon, err := ctrlsocktest.Start("wlan0", func(command string) (string, bool) {
		return "", false
	})
	require.NoError(t, err)
	defer daemon.Close()

	session, err := ctrlsock.Connect("wlan0", daemon.SocketDir, 50*time.Millisecond, zerolog.Nop())
	require.NoError(t, err)
	defer session.Close()

	_, err = session.SendCommand(context.Background(), "STATUS")
	require.Error(t, err)
	var timeout *ctrlsock.Timeout
	assert.ErrorAs(t, err, &timeout)
}

func TestSendCommandRespectsContextCancellation(t *testing.T) {
	daemon, err := ctrlsocktest.Start("wlan0", func(command string) (string, bool) {
		return "", false
	})
	require.NoError(t, err)
	defer daemon.Close()

	session, err := ctrlsock.Connect("wlan0", daemon.SocketDir, 5*time.Second, zerolog.Nop())
	require.NoError(t, err)
	defer session.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = session.SendCommand(ctx, "STATUS")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubscribeEventsOnlyOnce(t *testing.T) {
	daemon, err := ctrlsocktest.Start("wlan0", func(command string) (string, bool) { return "OK", true })
	require.NoError(t, err)
	defer daemon.Close()

	session, err := ctrlsock.Connect("wlan0", daemon.SocketDir, time.Second, zerolog.Nop())
	require.NoError(t, err)
	defer session.Close()

	recorder := &recordingListener{}
	require.NoError(t, session.SubscribeEvents(recorder))
	assert.Error(t, session.SubscribeEvents(recorder))
}

type recordingListener struct {
	levels   []int
	messages []string
}

func (r *recordingListener) OnEvent(level int, message string) {
	r.levels = append(r.levels, level)
	r.messages = append(r.messages, message)
}

// safeRecordingListener is a thread-safe EventListener: unlike
// recordingListener, it may be read from the test goroutine while the
// session's read loop is still delivering events concurrently.
type safeRecordingListener struct {
	mu       sync.Mutex
	levels   []int
	messages []string
}

func (r *safeRecordingListener) OnEvent(level int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.levels = append(r.levels, level)
	r.messages = append(r.messages, message)
}

func (r *safeRecordingListener) snapshot() ([]int, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.levels...), append([]string(nil), r.messages...)
}

func TestUnsolicitedEventDeliveredToListener(t *testing.T) {
	daemon, err := ctrlsocktest.Start("wlan0", func(command string) (string, bool) {
		return "OK", true
	})
	require.NoError(t, err)
	defer daemon.Close()

	session, err := ctrlsock.Connect("wlan0", daemon.SocketDir, time.Second, zerolog.Nop())
	require.NoError(t, err)
	defer session.Close()

	recorder := &safeRecordingListener{}
	require.NoError(t, session.SubscribeEvents(recorder))

	// The fake daemon only learns the client's address once it has
	// received a datagram from it, exactly like the real control socket.
	_, err = session.SendCommand(context.Background(), "PING")
	require.NoError(t, err)

	require.NoError(t, daemon.PushEvent(2, "AP-STA-CONNECTED aa:bb:cc:dd:ee:ff"))

	assert.Eventually(t, func() bool {
		_, messages := recorder.snapshot()
		return len(messages) == 1
	}, time.Second, 5*time.Millisecond)

	levels, messages := recorder.snapshot()
	assert.Equal(t, []int{2}, levels)
	assert.Equal(t, []string{"AP-STA-CONNECTED aa:bb:cc:dd:ee:ff"}, messages)
}

func TestPushEventFailsWithoutAPriorClientCommand(t *testing.T) {
	daemon, err := ctrlsocktest.Start("wlan0", func(command string) (string, bool) { return "OK", true })
	require.NoError(t, err)
	defer daemon.Close()

	err = daemon.PushEvent(2, "AP-STA-CONNECTED aa:bb:cc:dd:ee:ff")
	assert.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	daemon, err := ctrlsocktest.Start("wlan0", func(command string) (string, bool) { return "OK", true })
	require.NoError(t, err)
	defer daemon.Close()

	session, err := ctrlsock.Connect("wlan0", daemon.SocketDir, time.Second, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
}
