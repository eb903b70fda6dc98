package websocket

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// NewUpgrader accepts connections from the given origins. An empty list
// accepts any origin.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
		},
	}
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	eventID int64
	userID  int64
	logger  zerolog.Logger
}

// Attach registers an upgraded connection as userID's presence in eventID's
// call and starts its pumps. It returns false when the hub has stopped.
func (h *Hub) Attach(conn *websocket.Conn, eventID, userID int64) bool {
	c := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, 16),
		eventID: eventID,
		userID:  userID,
		logger:  h.logger,
	}
	if !h.join(c) {
		_ = conn.Close()
		return false
	}
	go c.writePump()
	go c.readPump()
	return true
}

// readPump only watches for the connection going away. Clients have
// nothing to say besides pongs.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug().Err(err).
					Int64("eventID", c.eventID).
					Int64("userID", c.userID).
					Msg("Call socket closed unexpectedly")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
