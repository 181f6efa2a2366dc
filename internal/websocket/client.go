package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mnavcli/internal/config"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// Client pumps hub events out over one websocket connection. Inbound
// traffic is ignored apart from control frames; the API is one-way.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	id         string
	logger     *slog.Logger
	pingPeriod time.Duration
	pongWait   time.Duration
}

// Upgrader builds the gorilla upgrader from config, enforcing the CORS
// origin allow-list on the handshake.
func Upgrader(cfg config.WebSocketConfig, allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			for _, a := range allowedOrigins {
				if a == "*" || a == origin {
					return true
				}
			}
			return false
		},
	}
}

// Serve registers a freshly upgraded connection with the hub and starts its
// pumps. It returns immediately.
func Serve(hub *Hub, conn *websocket.Conn, cfg config.WebSocketConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.New().String()
	c := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 64),
		id:         id,
		logger:     logger.With(slog.String("component", "websocket.client"), slog.String("client_id", id)),
		pingPeriod: cfg.PingPeriod,
		pongWait:   cfg.PongWait,
	}
	if c.pongWait <= 0 {
		c.pongWait = 60 * time.Second
	}
	if c.pingPeriod <= 0 || c.pingPeriod >= c.pongWait {
		c.pingPeriod = c.pongWait * 9 / 10
	}

	hub.register <- c
	go c.writePump()
	go c.readPump()

	greeting, _ := json.Marshal(Event{Type: TypeConnected, At: time.Now().UTC()})
	select {
	case c.send <- greeting:
	default:
	}
	return c
}

func (c *Client) close() {
	c.hub.unregister <- c
	c.conn.Close()
}

// readPump discards inbound frames and watches for disconnects.
func (c *Client) readPump() {
	defer c.close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("unexpected close", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump flushes queued events and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
