package realtime

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

const (
	clientBuffer     = 16
	defaultHeartbeat = 15 * time.Second
)

// SSEClient is one open event stream. Outbound is closed by CloseClient.
type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage

	seq     uint64
	dropped atomic.Int64
	done    chan struct{}
	once    sync.Once
}

// Dropped counts messages lost because the client fell behind.
func (c *SSEClient) Dropped() int64 { return c.dropped.Load() }

// SSEHub routes messages by channel to the streams of this instance.
type SSEHub struct {
	log       *logger.Logger
	heartbeat time.Duration

	mu       sync.RWMutex
	channels map[string]map[*SSEClient]struct{}
	clients  map[*SSEClient]struct{}
}

func NewSSEHub(log *logger.Logger) *SSEHub {
	return &SSEHub{
		log:       log.With("component", "SSEHub"),
		heartbeat: defaultHeartbeat,
		channels:  make(map[string]map[*SSEClient]struct{}),
		clients:   make(map[*SSEClient]struct{}),
	}
}

func (hub *SSEHub) NewSSEClient(userID uuid.UUID) *SSEClient {
	return &SSEClient{
		ID:       uuid.New(),
		UserID:   userID,
		Channels: make(map[string]bool),
		Outbound: make(chan SSEMessage, clientBuffer),
		done:     make(chan struct{}),
	}
}

func (hub *SSEHub) AddChannel(client *SSEClient, channel string) {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return
	}
	hub.mu.Lock()
	defer hub.mu.Unlock()
	subs := hub.channels[channel]
	if subs == nil {
		subs = make(map[*SSEClient]struct{})
		hub.channels[channel] = subs
	}
	subs[client] = struct{}{}
	client.Channels[channel] = true
	hub.clients[client] = struct{}{}
	hub.log.Debug("subscribed", "client_id", client.ID, "channel", channel)
}

func (hub *SSEHub) RemoveChannel(client *SSEClient, channel string) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.dropLocked(client, strings.TrimSpace(channel))
}

// RemoveClient unsubscribes client from every channel.
func (hub *SSEHub) RemoveClient(client *SSEClient) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	for ch := range client.Channels {
		hub.dropLocked(client, ch)
	}
	delete(hub.clients, client)
}

func (hub *SSEHub) dropLocked(client *SSEClient, channel string) {
	delete(client.Channels, channel)
	subs, ok := hub.channels[channel]
	if !ok {
		return
	}
	delete(subs, client)
	if len(subs) == 0 {
		delete(hub.channels, channel)
	}
}

func (hub *SSEHub) Subscribers(channel string) int {
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	return len(hub.channels[channel])
}

// Broadcast never blocks; a client whose buffer is full misses the message.
func (hub *SSEHub) Broadcast(msg SSEMessage) {
	if msg.Channel == "" {
		return
	}
	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for c := range hub.channels[msg.Channel] {
		select {
		case c.Outbound <- msg:
		default:
			n := c.dropped.Add(1)
			hub.log.Warn("client behind, message dropped", "client_id", c.ID, "event", msg.Event, "dropped_total", n)
		}
	}
}

// ServeHTTP streams client's messages until the request ends or the client is
// closed. Each frame carries the event name and a per-stream sequence id.
func (hub *SSEHub) ServeHTTP(w http.ResponseWriter, r *http.Request, client *SSEClient) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")

	comment := func(text string) {
		_, _ = fmt.Fprintf(w, ": %s\n\n", text)
		flusher.Flush()
	}
	comment("connected")

	ticker := time.NewTicker(hub.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case <-ticker.C:
			comment("ping")
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			client.seq++
			if err := writeFrame(w, client.seq, msg); err != nil {
				hub.log.Warn("SSE write failed", "client_id", client.ID, "event", msg.Event, "error", err)
				continue
			}
			flusher.Flush()
		}
	}
}

func writeFrame(w io.Writer, id uint64, msg SSEMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", msg.Event, err)
	}
	_, err = fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", id, msg.Event, raw)
	return err
}

// CloseClient is idempotent.
func (hub *SSEHub) CloseClient(client *SSEClient) {
	client.once.Do(func() {
		close(client.done)
		hub.RemoveClient(client)
		close(client.Outbound)
	})
}

// CloseAll ends every open stream.
func (hub *SSEHub) CloseAll() {
	hub.mu.RLock()
	open := make([]*SSEClient, 0, len(hub.clients))
	for c := range hub.clients {
		open = append(open, c)
	}
	hub.mu.RUnlock()
	for _, c := range open {
		hub.CloseClient(c)
	}
}
