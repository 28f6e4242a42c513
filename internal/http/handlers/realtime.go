package handlers

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	loc *Localizer
	hub *realtime.SSEHub

	mu      sync.Mutex
	clients map[uuid.UUID]*realtime.SSEClient // key: token session id
}

func NewRealtimeHandler(log *logger.Logger, loc *Localizer, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		loc:     loc,
		hub:     hub,
		clients: make(map[uuid.UUID]*realtime.SSEClient),
	}
}

// GET /api/sse/stream?lecture_id=
//
// Every stream receives the user's channel; lecture_id adds that lecture's
// artifact updates. A second stream for the same token session replaces the first.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	uid := userID(c)
	var lectureID uuid.UUID
	if raw := c.Query("lecture_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(h.loc, c, "invalid_id", err)
			return
		}
		lectureID = id
	}

	client := h.hub.NewSSEClient(uid)
	sessionKey := client.ID
	if sid := requestSession(c); sid != uuid.Nil {
		sessionKey = sid
	}
	h.mu.Lock()
	if existing, ok := h.clients[sessionKey]; ok {
		h.hub.CloseClient(existing)
	}
	h.clients[sessionKey] = client
	h.mu.Unlock()

	h.hub.AddChannel(client, realtime.UserChannel(uid.String()))
	if lectureID != uuid.Nil {
		h.hub.AddChannel(client, realtime.LectureChannel(uid.String(), lectureID.String()))
	}
	h.log.Debug("SSE stream open", "user_id", uid, "client_id", client.ID, "lecture_id", lectureID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.mu.Lock()
	if h.clients[sessionKey] == client {
		delete(h.clients, sessionKey)
	}
	h.mu.Unlock()
	h.hub.CloseClient(client)
}

// Active reports how many streams are open.
func (h *RealtimeHandler) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
