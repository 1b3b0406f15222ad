package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/complyance/governance/application/port/outbound"
	"github.com/complyance/governance/infrastructure/service/logger"
)

const (
	DefaultHeartbeat  = 15 * time.Second
	clientBufferSize  = 64
	lifecycleEventTag = "lifecycle"
)

// Streamer fans lifecycle events out to Server-Sent Events subscribers.
// A subscriber whose buffer is full misses events rather than slowing the
// publisher down.
type Streamer struct {
	clients   map[string]*Client
	mu        sync.RWMutex
	heartbeat time.Duration
	logger    logger.Logger

	published atomic.Int64
	dropped   atomic.Int64
}

// Client represents an SSE client connection
type Client struct {
	ID      string
	Channel chan []byte
}

// NewStreamer creates a new SSE streamer
func NewStreamer(log logger.Logger, heartbeat time.Duration) *Streamer {
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeat
	}
	return &Streamer{
		clients:   make(map[string]*Client),
		heartbeat: heartbeat,
		logger:    log,
	}
}

var _ outbound.LifecycleEventPublisher = (*Streamer)(nil)

// Publish implements outbound.LifecycleEventPublisher.
func (s *Streamer) Publish(ctx context.Context, event outbound.LifecycleEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		s.logger.Error(ctx, "Failed to marshal lifecycle event", err, nil)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	s.published.Add(1)
	for _, client := range s.clients {
		select {
		case client.Channel <- message:
		default:
			s.dropped.Add(1)
			s.logger.Warn(ctx, "Event stream subscriber is lagging, event dropped", map[string]interface{}{
				"client_id": client.ID,
				"action":    event.Action,
			})
		}
	}
}

// AddClient registers a subscriber. Reusing an ID replaces the old one.
func (s *Streamer) AddClient(clientID string) *Client {
	client := &Client{
		ID:      clientID,
		Channel: make(chan []byte, clientBufferSize),
	}

	s.mu.Lock()
	if old, ok := s.clients[clientID]; ok {
		close(old.Channel)
	}
	s.clients[clientID] = client
	s.mu.Unlock()
	return client
}

// RemoveClient closes the subscriber's channel if it is still registered.
func (s *Streamer) RemoveClient(client *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.clients[client.ID]; ok && current == client {
		delete(s.clients, client.ID)
		close(client.Channel)
	}
}

// Close disconnects every subscriber.
func (s *Streamer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, client := range s.clients {
		delete(s.clients, id)
		close(client.Channel)
	}
}

// GetClientCount returns the number of connected clients
func (s *Streamer) GetClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// StreamingMetrics tracks streaming statistics
type StreamingMetrics struct {
	ActiveConnections int   `json:"active_connections"`
	EventsPublished   int64 `json:"events_published"`
	EventsDropped     int64 `json:"events_dropped"`
}

func (s *Streamer) GetMetrics() StreamingMetrics {
	return StreamingMetrics{
		ActiveConnections: s.GetClientCount(),
		EventsPublished:   s.published.Load(),
		EventsDropped:     s.dropped.Load(),
	}
}

// HandleSSE streams lifecycle events until the client disconnects.
func (s *Streamer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// the server's write timeout would otherwise cut long-lived streams
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		clientID = uuid.NewString()
	}

	client := s.AddClient(clientID)
	defer s.RemoveClient(client)

	s.logger.Info(r.Context(), "Event stream subscriber connected", map[string]interface{}{
		"client_id": clientID,
	})

	initEvent := map[string]interface{}{
		"client_id": clientID,
		"connected": true,
	}
	if err := writeSSEEvent(w, "connected", initEvent); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case message, ok := <-client.Channel:
			if !ok {
				return
			}
			if err := writeSSEMessage(w, lifecycleEventTag, message); err != nil {
				return
			}

		case <-ticker.C:
			if err := writeSSEComment(w, "heartbeat"); err != nil {
				return
			}
		}

		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, eventType string, data interface{}) error {
	message, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return writeSSEMessage(w, eventType, message)
}

func writeSSEMessage(w http.ResponseWriter, eventType string, message []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, message)
	return err
}

func writeSSEComment(w http.ResponseWriter, comment string) error {
	_, err := fmt.Fprintf(w, ":%s\n\n", comment)
	return err
}
