package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendQueueSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// auth happens before the upgrade, the origin check adds nothing here
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one websocket connection plus the set of session ids it
// receives events for.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	sessions  map[uint]struct{}
	closeOnce sync.Once
}

// Serve upgrades the request and pumps events for the given sessions until
// the peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, sessionIDs []uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		conn:     conn,
		send:     make(chan []byte, sendQueueSize),
		sessions: make(map[uint]struct{}, len(sessionIDs)),
	}
	for _, id := range sessionIDs {
		c.sessions[id] = struct{}{}
	}

	h.register(c)
	go c.writePump()
	go c.readPump(h)
	return nil
}

// readPump discards inbound frames; its job is noticing the peer closing.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
