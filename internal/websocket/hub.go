package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans stream events out to the websocket subscribers of each session.
// Events for sessions running on another instance arrive over the Redis
// relay channel.
type Hub struct {
	// Registered clients map: SessionID -> List of Clients (multi-tab)
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance relay. Optional.
	rdb *redis.Client

	logger logger.ILogger
}

const relayChannel = "research_stream_events"

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Stream client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Last stream client unregistered", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers a stream event to every subscriber of the session. Delivery
// is at-most-once: a subscriber whose buffer is full is dropped rather than
// blocking the run.
func (h *Hub) Send(sessionID uuid.UUID, event dto.StreamEvent) {
	data, _ := json.Marshal(event)

	h.sendLocal(sessionID, data)

	// Relay for subscribers connected to other instances.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_session_id": sessionID.String(),
			"message":           json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), relayChannel, jsonPayload)
	}
}

func (h *Hub) sendLocal(sessionID uuid.UUID, data []byte) {
	h.mu.RLock()
	clients, ok := h.clients[sessionID]
	h.mu.RUnlock()

	if !ok {
		return
	}
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping subscriber", map[string]interface{}{"session_id": sessionID})
			close(client.Send)
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// All instances subscribe to the relay channel; each delivers only to
	// sessions it has local subscribers for.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetSessionID string          `json:"target_session_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		sid, err := uuid.Parse(payload.TargetSessionID)
		if err != nil {
			continue
		}

		h.sendLocal(sid, payload.Message)
	}
}
