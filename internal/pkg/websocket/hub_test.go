package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/peers/internal/pkg/eventtime"
)

type recorderFunc func(ctx context.Context, s Session) error

func (f recorderFunc) RecordSession(ctx context.Context, s Session) error { return f(ctx, s) }

type testClock struct{ nanos atomic.Int64 }

func (c *testClock) Now() time.Time          { return time.Unix(0, c.nanos.Load()).UTC() }
func (c *testClock) Set(t time.Time)         { c.nanos.Store(t.UnixNano()) }
func (c *testClock) Advance(d time.Duration) { c.nanos.Add(int64(d)) }

var _ eventtime.Clock = (*testClock)(nil)

func startHub(t *testing.T, recorder SessionRecorder, clock eventtime.Clock) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(recorder, clock, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var userID int64 = 7
		if r.URL.Query().Get("user") == "8" {
			userID = 8
		}
		hub.Attach(conn, 42, userID)
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func readPresence(t *testing.T, conn *websocket.Conn) Presence {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var p Presence
	require.NoError(t, conn.ReadJSON(&p))
	return p
}

func TestHubRecordsSessionOnDisconnect(t *testing.T) {
	clock := &testClock{}
	start := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	clock.Set(start)

	sessions := make(chan Session, 1)
	hub, srv := startHub(t, recorderFunc(func(_ context.Context, s Session) error {
		sessions <- s
		return nil
	}), clock)

	conn := dial(t, srv, "user=7")
	joined := readPresence(t, conn)
	assert.Equal(t, PresenceJoined, joined.Type)
	assert.Equal(t, int64(42), joined.EventID)
	assert.Equal(t, []int64{7}, joined.Participants)
	assert.Equal(t, []int64{7}, hub.Participants(42))

	clock.Advance(25*time.Minute + 30*time.Second)
	require.NoError(t, conn.Close())

	select {
	case s := <-sessions:
		assert.Equal(t, int64(42), s.EventID)
		assert.Equal(t, int64(7), s.UserID)
		assert.True(t, start.Equal(s.JoinedAt))
		assert.Equal(t, 25, s.Minutes())
	case <-time.After(2 * time.Second):
		t.Fatal("session was not recorded")
	}

	assert.Eventually(t, func() bool { return len(hub.Participants(42)) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubBroadcastsPresenceToRoom(t *testing.T) {
	clock := &testClock{}
	clock.Set(time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC))
	_, srv := startHub(t, nil, clock)

	first := dial(t, srv, "user=7")
	defer first.Close()
	readPresence(t, first)

	second := dial(t, srv, "user=8")
	readPresence(t, second)

	joined := readPresence(t, first)
	assert.Equal(t, PresenceJoined, joined.Type)
	assert.Equal(t, int64(8), joined.UserID)
	assert.Equal(t, []int64{7, 8}, joined.Participants)

	require.NoError(t, second.Close())
	left := readPresence(t, first)
	assert.Equal(t, PresenceLeft, left.Type)
	assert.Equal(t, int64(8), left.UserID)
	assert.Equal(t, []int64{7}, left.Participants)
}

func TestSessionMinutes(t *testing.T) {
	at := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, Session{JoinedAt: at, LeftAt: at.Add(59 * time.Second)}.Minutes())
	assert.Equal(t, 90, Session{JoinedAt: at, LeftAt: at.Add(90 * time.Minute)}.Minutes())
	assert.Equal(t, 0, Session{JoinedAt: at, LeftAt: at.Add(-time.Minute)}.Minutes())
}

func TestHubShutdownRecordsOpenSessions(t *testing.T) {
	clock := &testClock{}
	clock.Set(time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC))

	var recorded atomic.Int32
	hub := NewHub(recorderFunc(func(_ context.Context, s Session) error {
		time.Sleep(20 * time.Millisecond)
		recorded.Add(1)
		return nil
	}), clock, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	upgrader := NewUpgrader(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Attach(conn, 42, 7)
	}))
	defer srv.Close()

	conn := dial(t, srv, "")
	defer conn.Close()
	readPresence(t, conn)

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, int32(1), recorded.Load(), "open sessions are recorded before Done")
	assert.Empty(t, hub.Participants(42))
}

func TestHubCountsOneStayPerUser(t *testing.T) {
	clock := &testClock{}
	start := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	clock.Set(start)

	sessions := make(chan Session, 2)
	hub, srv := startHub(t, recorderFunc(func(_ context.Context, s Session) error {
		sessions <- s
		return nil
	}), clock)

	connections := func() int {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		return len(hub.rooms[42])
	}

	laptop := dial(t, srv, "user=7")
	readPresence(t, laptop)
	phone := dial(t, srv, "user=7")
	defer phone.Close()
	readPresence(t, phone)
	readPresence(t, laptop)
	assert.Equal(t, []int64{7}, hub.Participants(42))

	clock.Advance(4 * time.Minute)
	require.NoError(t, laptop.Close())
	require.Eventually(t, func() bool { return connections() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []int64{7}, hub.Participants(42), "still connected from the phone")

	select {
	case s := <-sessions:
		t.Fatalf("stay ended while a connection was open: %+v", s)
	case <-time.After(100 * time.Millisecond):
	}

	clock.Advance(6 * time.Minute)
	require.NoError(t, phone.Close())

	select {
	case s := <-sessions:
		assert.Equal(t, int64(7), s.UserID)
		assert.True(t, start.Equal(s.JoinedAt))
		assert.Equal(t, 10, s.Minutes())
	case <-time.After(2 * time.Second):
		t.Fatal("session was not recorded")
	}

	select {
	case s := <-sessions:
		t.Fatalf("one stay recorded twice: %+v", s)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Empty(t, hub.Participants(42))
}
