package realtime

import (
	"context"
	"time"

	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

// Publisher fans a message out to every API instance.
type Publisher interface {
	Publish(ctx context.Context, msg SSEMessage) error
}

// Notifier delivers messages to connected clients. With a Publisher the message goes
// through it (and comes back through the forwarder into the local hub); without one it
// is broadcast locally.
type Notifier struct {
	hub *SSEHub
	pub Publisher
	log *logger.Logger
}

func NewNotifier(log *logger.Logger, hub *SSEHub, pub Publisher) *Notifier {
	return &Notifier{hub: hub, pub: pub, log: log.With("component", "Notifier")}
}

func (n *Notifier) Notify(msg SSEMessage) {
	if n == nil {
		return
	}
	if n.pub != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		err := n.pub.Publish(ctx, msg)
		if err == nil {
			return
		}
		n.log.Warn("bus publish failed; broadcasting locally", "event", msg.Event, "error", err)
	}
	if n.hub != nil {
		n.hub.Broadcast(msg)
	}
}
