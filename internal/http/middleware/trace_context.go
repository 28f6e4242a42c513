package middleware

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/studyhub-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// Client supplied ids are echoed only when they look like ids.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

func inboundID(c *gin.Context, header string) string {
	v := strings.TrimSpace(c.GetHeader(header))
	if !idPattern.MatchString(v) {
		return ""
	}
	return v
}

// AttachTraceContext stores trace and request ids on the request context and
// echoes them as response headers. Mount it after otelgin so the span's trace id
// wins over the inbound header.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{RequestID: inboundID(c, headerRequestID)}
		if td.RequestID == "" {
			td.RequestID = uuid.NewString()
		}
		switch sc := trace.SpanContextFromContext(c.Request.Context()); {
		case sc.HasTraceID():
			td.TraceID = sc.TraceID().String()
		default:
			td.TraceID = inboundID(c, headerTraceID)
		}
		if td.TraceID == "" {
			td.TraceID = td.RequestID
		}

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		h := c.Writer.Header()
		h.Set(headerTraceID, td.TraceID)
		h.Set(headerRequestID, td.RequestID)
		c.Next()
	}
}
