package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/realtime"
)

const (
	defaultChannel = "studyhub:sse"
	lagWarn        = 2 * time.Second
)

var errNotInitialized = errors.New("redis SSE bus not initialized")

type RedisConfig struct {
	Addr     string
	Password string
	Channel  string
}

// envelope is the pub/sub payload. Origin identifies the publishing instance.
type envelope struct {
	Origin  string              `json:"origin"`
	SentAt  time.Time           `json:"sent_at"`
	Message realtime.SSEMessage `json:"message"`
}

func encodeEnvelope(origin string, now time.Time, msg realtime.SSEMessage) ([]byte, error) {
	raw, err := json.Marshal(envelope{Origin: origin, SentAt: now.UTC(), Message: msg})
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Event, err)
	}
	return raw, nil
}

func decodeEnvelope(payload string) (envelope, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return envelope{}, fmt.Errorf("decode payload: %w", err)
	}
	if env.Message.Channel == "" {
		return envelope{}, fmt.Errorf("decode payload: message has no channel")
	}
	return env, nil
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	origin  string
	tracer  trace.Tracer
}

func NewRedisBus(log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = defaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DialTimeout:  5 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	b := &redisBus{
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
		tracer:  otel.Tracer("studyhub/realtime/bus"),
	}
	b.log = log.With("service", "RedisSSEBus", "origin", b.origin)
	return b, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return errNotInitialized
	}
	ctx, span := b.tracer.Start(ctx, "sse.publish", trace.WithAttributes(
		attribute.String("sse.event", string(msg.Event)),
		attribute.String("sse.channel", msg.Channel),
	))
	defer span.End()

	raw, err := encodeEnvelope(b.origin, time.Now(), msg)
	if err == nil {
		err = b.rdb.Publish(ctx, b.channel, raw).Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("publish %s: %w", msg.Event, err)
	}
	return nil
}

// StartForwarder hands every message on the pub/sub channel to onMsg, including
// this instance's own, until ctx ends.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return errNotInitialized
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe %s: %w", b.channel, err)
	}
	b.log.Info("forwarding SSE messages", "channel", b.channel)

	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(m realtime.SSEMessage)) {
	defer sub.Close()
	incoming := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-incoming:
			if !ok {
				b.log.Warn("redis subscription closed")
				return
			}
			if m == nil {
				continue
			}
			env, err := decodeEnvelope(m.Payload)
			if err != nil {
				b.log.Warn("bad redis SSE payload", "error", err)
				continue
			}
			if lag := time.Since(env.SentAt); !env.SentAt.IsZero() && lag > lagWarn {
				b.log.Warn("slow SSE delivery", "event", env.Message.Event, "from", env.Origin, "lag", lag)
			}
			onMsg(env.Message)
		}
	}
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
