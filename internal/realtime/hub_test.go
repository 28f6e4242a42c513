package realtime

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubOrderingAndReconnect(t *testing.T) {
	hub := NewSSEHub(logger.NewNop())
	channel := LectureChannel(uuid.NewString(), uuid.NewString())

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventArtifactState, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventFileUploaded, Data: map[string]any{"seq": 2}})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventArtifactState {
		t.Fatalf("first event: want=%s got=%s", SSEEventArtifactState, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventFileUploaded {
		t.Fatalf("second event: want=%s got=%s", SSEEventFileUploaded, got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	if _, ok := <-clientA.Outbound; ok {
		t.Fatalf("clientA outbound should be closed after disconnect")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventFileDeleted})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventFileDeleted {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventFileDeleted, got.Event)
	}
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(logger.NewNop())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "c")
	for i := 0; i < cap(client.Outbound)+5; i++ {
		hub.Broadcast(SSEMessage{Channel: "c", Event: SSEEventArtifactState})
	}
	if got := len(client.Outbound); got != cap(client.Outbound) {
		t.Fatalf("buffered: want=%d got=%d", cap(client.Outbound), got)
	}
}

func TestSSEHubServeHTTPWritesEvents(t *testing.T) {
	hub := NewSSEHub(logger.NewNop())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "c")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeHTTP(w, r, client)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: got=%q", ct)
	}

	hub.Broadcast(SSEMessage{Channel: "c", Event: SSEEventPlanChanged, Data: map[string]any{"plan": "premium"}})

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var msg SSEMessage
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Event != SSEEventPlanChanged {
			t.Fatalf("event: want=%s got=%s", SSEEventPlanChanged, msg.Event)
		}
		hub.CloseClient(client)
		return
	}
	t.Fatalf("stream ended without a data line: %v", sc.Err())
}

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(ctx context.Context, msg SSEMessage) error {
	p.calls++
	return context.DeadlineExceeded
}

func TestNotifierFallsBackToLocalBroadcast(t *testing.T) {
	hub := NewSSEHub(logger.NewNop())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, "c")
	pub := &failingPublisher{}

	NewNotifier(logger.NewNop(), hub, pub).Notify(SSEMessage{Channel: "c", Event: SSEEventArtifactState})

	if pub.calls != 1 {
		t.Fatalf("publisher calls: want=1 got=%d", pub.calls)
	}
	if got := recvMessage(t, client.Outbound, time.Second); got.Event != SSEEventArtifactState {
		t.Fatalf("event: got=%s", got.Event)
	}
}

func TestCloseAllEndsStreams(t *testing.T) {
	hub := NewSSEHub(logger.NewNop())
	a := hub.NewSSEClient(uuid.New())
	b := hub.NewSSEClient(uuid.New())
	hub.AddChannel(a, "x")
	hub.AddChannel(a, "y")
	hub.AddChannel(b, "y")

	hub.CloseAll()

	if n := hub.Subscribers("x") + hub.Subscribers("y"); n != 0 {
		t.Fatalf("subscribers after CloseAll: want=0 got=%d", n)
	}
	if _, ok := <-a.Outbound; ok {
		t.Fatalf("client a outbound still open")
	}
	hub.CloseClient(b)
}
