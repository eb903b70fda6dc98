package websocket

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/peers/internal/pkg/eventtime"
)

// Session is one uninterrupted stay of a user in an event's call
type Session struct {
	EventID  int64
	UserID   int64
	JoinedAt time.Time
	LeftAt   time.Time
}

// Minutes returns the whole minutes spent in the call
func (s Session) Minutes() int {
	if s.LeftAt.Before(s.JoinedAt) {
		return 0
	}
	return int(s.LeftAt.Sub(s.JoinedAt) / time.Minute)
}

// SessionRecorder is told about every finished session
type SessionRecorder interface {
	RecordSession(ctx context.Context, s Session) error
}

// Presence types sent to clients
const (
	PresenceJoined = "joined"
	PresenceLeft   = "left"
)

// Presence is broadcast to everyone in a room when somebody joins or leaves
type Presence struct {
	Type         string    `json:"type"`
	EventID      int64     `json:"eventId"`
	UserID       int64     `json:"userId"`
	Participants []int64   `json:"participants"`
	Timestamp    time.Time `json:"timestamp"`
}

type stayKey struct {
	eventID int64
	userID  int64
}

// stay spans from a user's first open connection to an event's call until
// their last one closes
type stay struct {
	joinedAt time.Time
	conns    int
}

// Hub tracks who is connected to each event's call. All room mutations
// happen on the Run goroutine; mu only guards reads from other goroutines.
type Hub struct {
	rooms map[int64]map[*Client]bool
	stays map[stayKey]*stay

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu        sync.RWMutex
	recording sync.WaitGroup

	recorder SessionRecorder
	clock    eventtime.Clock
	logger   zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(recorder SessionRecorder, clock eventtime.Clock, logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]bool),
		stays:      make(map[stayKey]*stay),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		recorder:   recorder,
		clock:      clock,
		logger:     logger.With().Str("component", "call_hub").Logger(),
	}
}

// Run processes joins and leaves until ctx is cancelled, then disconnects
// every remaining client and records their sessions.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case <-ctx.Done():
			h.mu.RLock()
			var all []*Client
			for _, room := range h.rooms {
				for c := range room {
					all = append(all, c)
				}
			}
			h.mu.RUnlock()
			for _, c := range all {
				h.unregisterClient(c)
			}
			h.recording.Wait()
			return
		}
	}
}

// Done is closed once Run has returned and every client was let go
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) registerClient(client *Client) {
	key := stayKey{eventID: client.eventID, userID: client.userID}
	st, ok := h.stays[key]
	if !ok {
		st = &stay{joinedAt: h.clock.Now()}
		h.stays[key] = st
	}
	st.conns++

	h.mu.Lock()
	room, ok := h.rooms[client.eventID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[client.eventID] = room
	}
	room[client] = true
	h.mu.Unlock()

	h.logger.Info().
		Int64("eventID", client.eventID).
		Int64("userID", client.userID).
		Int("connections", st.conns).
		Msg("Participant joined call")
	h.broadcast(client.eventID, PresenceJoined, client.userID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.eventID]
	if !ok || !room[client] {
		h.mu.Unlock()
		return
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.eventID)
	}
	h.mu.Unlock()

	// Only the user's last connection ends the stay.
	key := stayKey{eventID: client.eventID, userID: client.userID}
	st := h.stays[key]
	if st == nil {
		return
	}
	if st.conns--; st.conns > 0 {
		return
	}
	delete(h.stays, key)

	session := Session{
		EventID:  client.eventID,
		UserID:   client.userID,
		JoinedAt: st.joinedAt,
		LeftAt:   h.clock.Now(),
	}
	h.logger.Info().
		Int64("eventID", session.EventID).
		Int64("userID", session.UserID).
		Int("minutes", session.Minutes()).
		Msg("Participant left call")

	h.broadcast(client.eventID, PresenceLeft, client.userID)
	h.recording.Add(1)
	go func() {
		defer h.recording.Done()
		h.record(session)
	}()
}

func (h *Hub) record(s Session) {
	if h.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.recorder.RecordSession(ctx, s); err != nil {
		h.logger.Error().Err(err).
			Int64("eventID", s.EventID).
			Int64("userID", s.UserID).
			Msg("Failed to record call session")
	}
}

// broadcast runs on the Run goroutine. Clients whose buffer is full are
// dropped.
func (h *Hub) broadcast(eventID int64, kind string, userID int64) {
	msg := Presence{
		Type:         kind,
		EventID:      eventID,
		UserID:       userID,
		Participants: h.Participants(eventID),
		Timestamp:    h.clock.Now(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Int64("eventID", eventID).Msg("Failed to marshal presence")
		return
	}

	h.mu.RLock()
	var slow []*Client
	for c := range h.rooms[eventID] {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn().Int64("userID", c.userID).Msg("Dropping slow call participant")
		h.unregisterClient(c)
	}
}

// Participants returns the sorted ids of users connected to an event's call.
// A user connected twice is listed once.
func (h *Hub) Participants(eventID int64) []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := []int64{}
	for c := range h.rooms[eventID] {
		ids = append(ids, c.userID)
	}
	slices.Sort(ids)
	return slices.Compact(ids)
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
