package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"

	"github.com/nadwiabd/insight-edms/internal/setup"
	"github.com/nadwiabd/insight-edms/pkg/api"
	"github.com/nadwiabd/insight-edms/pkg/log"
)

// Client represents a WebSocket connection receiving setup events
type Client struct {
	conn   *websocket.Conn
	pubsub *redis.PubSub
	kinds  map[api.ObjectKind]bool
	closed chan struct{}
	once   sync.Once
}

const (
	writeWait          = 10 * time.Second
	pongWait           = 60 * time.Second
	pingPeriod         = (pongWait * 9) / 10
	maxMessageSize     = 512
	wsBufferSize       = 1024
	incomingBufferSize = 16

	subscribeType = "subscribe"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  wsBufferSize,
	WriteBufferSize: wsBufferSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleWebSocket(c *gin.Context) {
	if !s.requirePermission(c,
		setup.PermissionWorkflowSetupView, setup.PermissionStateSetupView,
	) {
		return
	}

	pubsub := s.store.Subscribe(context.Background())
	if _, err := pubsub.Receive(c.Request.Context()); err != nil {
		_ = pubsub.Close()
		s.handleError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		_ = pubsub.Close()
		slog.Error("WebSocket upgrade failed",
			log.Error(err))
		return
	}

	client := &Client{
		conn:   conn,
		pubsub: pubsub,
		kinds:  map[api.ObjectKind]bool{},
		closed: make(chan struct{}),
	}
	s.registerWebSocket(client)

	go func() {
		defer s.unregisterWebSocket(client)
		client.run()
	}()
}

// Close ends the connection and its subscription
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.pubsub.Close()
		_ = c.conn.Close()
	})
}

func (c *Client) run() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	incoming := make(chan []byte, incomingBufferSize)
	go c.readMessages(incoming)

	events := c.pubsub.Channel()
	for {
		select {
		case <-c.closed:
			return

		case message, ok := <-incoming:
			if !ok {
				return
			}
			c.handleSubscribe(message)

		case msg, ok := <-events:
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.sendEventIfMatched(msg.Payload) {
				return
			}

		case <-ticker.C:
			if !c.sendPing() {
				return
			}
		}
	}
}

func (c *Client) readMessages(incoming chan []byte) {
	defer close(incoming)
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		select {
		case incoming <- message:
		case <-c.closed:
			return
		}
	}
}

// handleSubscribe replaces the set of object kinds the client receives.
// Messages look like {"type":"subscribe","kinds":["workflow","state"]}
func (c *Client) handleSubscribe(message []byte) {
	if !gjson.ValidBytes(message) {
		slog.Error("Failed to parse WebSocket message",
			log.ErrorString("invalid JSON"))
		return
	}
	res := gjson.ParseBytes(message)
	if res.Get("type").String() != subscribeType {
		return
	}

	kinds := map[api.ObjectKind]bool{}
	for _, k := range res.Get("kinds").Array() {
		kinds[api.ObjectKind(k.String())] = true
	}
	c.kinds = kinds

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(map[string]any{
		"type":  "subscribed",
		"kinds": res.Get("kinds").Value(),
	}); err != nil {
		slog.Error("WebSocket write failed",
			slog.String("context", "subscribed"),
			log.Error(err))
	}
}

func (c *Client) sendEventIfMatched(payload string) bool {
	var ev api.SetupEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		slog.Error("Failed to unmarshal setup event",
			log.Error(err))
		return true
	}
	if !c.kinds[ev.Kind] {
		return true
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(ev); err != nil {
		slog.Error("WebSocket write failed",
			log.Error(err))
		return false
	}
	return true
}

func (c *Client) sendPing() bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.conn.WriteMessage(websocket.PingMessage, nil)
	return err == nil
}
