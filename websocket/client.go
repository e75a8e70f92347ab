package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one connected socket. Its readPump dispatches inbound events to
// the hub; its writePump drains the send channel onto the wire.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

type typingPayload struct {
	UserID string `json:"userId"`
	ChatID string `json:"chatId"`
}

// ServeWS upgrades the request and starts the client's pumps.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Errorw("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	hub.Register(client)

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warnw("socket read error", "error", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.hub.log.Warnw("bad socket frame", "error", err)
			continue
		}
		c.handleEvent(ev)
	}
}

func (c *Client) handleEvent(ev Event) {
	switch ev.Event {
	case EventJoinChat:
		var chatID string
		if err := json.Unmarshal(ev.Payload, &chatID); err != nil || chatID == "" {
			return
		}
		c.hub.Join(chatID, c)

	case EventTyping:
		var p typingPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ChatID == "" {
			return
		}
		c.hub.BroadcastExcept(p.ChatID, c, EventUserTyping, p)

	case EventStopTyping:
		var p typingPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.ChatID == "" {
			return
		}
		c.hub.BroadcastExcept(p.ChatID, c, EventUserStopTyping, p)
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
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
