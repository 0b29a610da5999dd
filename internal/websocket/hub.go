package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"ai-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans chat events (title updates, session deletes) out to every
// connected client. Sessions are anonymous, so there is no per-user routing;
// every event goes to everyone and the frontend filters by session id.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger

	// Identifies this instance so its own Redis publishes are skipped.
	instanceID string
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rdb:        rdb,
		logger:     log,
		instanceID: uuid.NewString(),
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"clients": len(h.clients)})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"clients": len(h.clients)})
		}
	}
}

// Broadcast sends an event to ALL connected clients, local and remote.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	// 1. Serialize
	data, _ := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})

	// 2. Send to all local clients
	h.sendLocal(data)

	// 3. Publish to Redis for other instances
	if h.rdb != nil {
		// RawMessage keeps the event embedded as JSON rather than base64.
		envelope := map[string]interface{}{
			"origin":  h.instanceID,
			"message": json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(envelope)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) sendLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			// Slow client; the unregister path closes its Send channel.
			h.logger.Warn("Hub", "Client Send buffer full, dropping client", nil)
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

// subscribeToRedis relays events published by other instances to the clients
// connected to this one.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var envelope struct {
			Origin  string          `json:"origin"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		// Local clients already got this one when it was broadcast here.
		if envelope.Origin == h.instanceID {
			continue
		}
		h.sendLocal(envelope.Message)
	}
}
