// Package ctxutil carries per-request caller and trace data on a context.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type key int

const (
	requestDataKey key = iota
	traceDataKey
)

// RequestData is what the auth middleware learns about the caller.
type RequestData struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Email     string
	Name      string
	Language  string
}

// TraceData correlates logs with the request and its span.
type TraceData struct {
	TraceID   string
	RequestID string
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func lookup[T any](ctx context.Context, k key) *T {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(k).(*T)
	return v
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(Default(ctx), requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData { return lookup[RequestData](ctx, requestDataKey) }

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(Default(ctx), traceDataKey, td)
}

func GetTraceData(ctx context.Context) *TraceData { return lookup[TraceData](ctx, traceDataKey) }

// UserID returns the authenticated user or uuid.Nil.
func UserID(ctx context.Context) uuid.UUID {
	if rd := GetRequestData(ctx); rd != nil {
		return rd.UserID
	}
	return uuid.Nil
}

// LogFields returns trace and user fields for a log line.
func LogFields(ctx context.Context) []any {
	var out []any
	if td := GetTraceData(ctx); td != nil {
		out = append(out, "trace_id", td.TraceID, "request_id", td.RequestID)
	}
	if id := UserID(ctx); id != uuid.Nil {
		out = append(out, "user_id", id.String())
	}
	return out
}
