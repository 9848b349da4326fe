// internal/server/handlers/websocket.go

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// progressClient is one connected progress-stream subscriber
type progressClient struct {
	conn     *websocket.Conn
	send     chan []byte
	runID    string
	natsSubs []*nats.Subscription
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 64 * 1024,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware already restricts origins for the REST routes;
		// browsers do not apply it to WebSocket upgrades
		return true
	},
}

// ProgressWebSocketHandler streams the lifecycle events of one analysis run
// over a WebSocket by bridging the run's event bus subjects
func ProgressWebSocketHandler(natsConn *nats.Conn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "id")
		if runID == "" {
			http.Error(w, "Missing run ID", http.StatusBadRequest)
			return
		}

		if natsConn == nil {
			http.Error(w, "Event streaming not configured", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := &progressClient{
			conn:  conn,
			send:  make(chan []byte, 64),
			runID: runID,
		}

		go client.writePump()
		go client.readPump()

		if err := client.subscribe(natsConn); err != nil {
			log.Warn().Err(err).Str("run_id", runID).Msg("event subscription failed")
			client.close()
			return
		}

		welcome, _ := json.Marshal(map[string]any{
			"type":   "subscribed",
			"run_id": runID,
			"time":   time.Now().UTC(),
		})
		client.send <- welcome

		log.Debug().Str("run_id", runID).Msg("progress stream opened")
	}
}

// subscribe bridges every event subject of the run onto the send channel
func (c *progressClient) subscribe(natsConn *nats.Conn) error {
	sub, err := natsConn.Subscribe(fmt.Sprintf("analysis.%s.>", c.runID), func(msg *nats.Msg) {
		select {
		case c.send <- msg.Data:
		default:
			// Drop rather than block the NATS callback on a slow client
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to run events: %w", err)
	}
	c.natsSubs = append(c.natsSubs, sub)
	return nil
}

// readPump drains the connection so close and pong frames are processed
func (c *progressClient) readPump() {
	config := DefaultWebSocketConfig()

	defer c.close()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("websocket read error")
			}
			break
		}
	}
}

// writePump forwards queued events to the peer and keeps the connection
// alive with pings
func (c *progressClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Flush queued events into the same frame
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// close tears down the subscriptions and the connection. Safe to call from
// both pumps.
func (c *progressClient) close() {
	for _, sub := range c.natsSubs {
		sub.Unsubscribe()
	}
	c.conn.Close()

	log.Debug().Str("run_id", c.runID).Msg("progress stream closed")
}
