package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/nishat1/Instock/internal/adapters/nats"
	"github.com/nishat1/Instock/internal/pkg/metrics"
	"github.com/nishat1/Instock/internal/pkg/validation"
)

// wsMessage is sent from client to subscribe/unsubscribe to stock changes.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Store  string `json:"store"`  // store id filter (optional, "" = all stores)
	Item   string `json:"item"`   // item id filter (optional, requires store)
}

// wsSubject builds the availability subject for a filter, or "" if the
// filter is malformed.
func wsSubject(m wsMessage) string {
	switch {
	case m.Store == "" && m.Item == "":
		return natsadapter.AvailabilitySubjects
	case m.Store == "" || !validation.UUID(m.Store):
		return ""
	case m.Item == "":
		return "instock.availability." + m.Store + ".>"
	case !validation.UUID(m.Item):
		return ""
	default:
		return "instock.availability." + m.Store + "." + m.Item
	}
}

// WebSocketHandler returns a handler that relays availability events from
// NATS to connected clients. Clients start subscribed to every store and send
// {"action":"subscribe","store":"<id>"} to add narrower feeds.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription)

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(msg *nats.Msg) {
			_ = writeJSON(json.RawMessage(msg.Data))
		}

		sub, err := nc.Subscribe(natsadapter.AvailabilitySubjects, relay)
		if err != nil {
			slog.Error("ws default subscribe failed", "error", err)
			return
		}
		subs[natsadapter.AvailabilitySubjects] = sub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			subject := wsSubject(m)
			if subject == "" {
				_ = writeJSON(map[string]string{"error": "store and item must be ids, and item needs a store"})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, relay)
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}
