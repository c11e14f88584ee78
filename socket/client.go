package socket

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"creatorhub/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1 << 20
)

// newUpgrader accepts browser handshakes only from allowed origins. With no
// list configured it falls back to gorilla's same-host check. Requests that
// carry no Origin header are not from a browser and always pass.
func newUpgrader(allowed []string) websocket.Upgrader {
	u := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	switch {
	case len(allowed) == 0:
	case slices.Contains(allowed, "*"):
		u.CheckOrigin = func(*http.Request) bool { return true }
	default:
		u.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowed, origin)
		}
	}
	return u
}

type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Topic  string
	UserID string
	Send   chan []byte
}

func (c *Client) room() string { return RoomKey(c.Topic, c.UserID) }

func (c *Client) close() {
	if c.Conn != nil {
		c.Conn.Close()
	}
}

// ServeWs upgrades the request and attaches the session to the user's room
// for the topic named in the query string.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, userID string) {
	topic := r.URL.Query().Get("topic")
	if !ValidTopic(topic) {
		http.Error(w, "Unknown topic: must be projects or scheduled", http.StatusBadRequest)
		return
	}

	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		Hub:    hub,
		Conn:   conn,
		Topic:  topic,
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	select {
	case hub.Register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(rawMessage, &msg); err != nil {
			logger.Sugar.Errorf("Error unmarshalling message: %v", err)
			continue
		}

		// Server-authoritative fields; a session cannot speak for another room.
		msg.Topic = c.Topic
		msg.UserID = c.UserID

		if msg.Type != DraftType || c.Topic != TopicProjects {
			logger.Sugar.Warnf("Ignoring %q message from user %s on topic %s", msg.Type, c.UserID, c.Topic)
			continue
		}

		select {
		case c.Hub.Broadcast <- Envelope{Sender: c, Message: msg}:
		case <-c.Hub.done:
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
