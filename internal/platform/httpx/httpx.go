package httpx

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusCoder is implemented by errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatusCode() int
}

// statusCloudflareTimeout is Cloudflare's origin timeout.
const statusCloudflareTimeout = 524

func statusOf(err error) (int, bool) {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode(), true
	}
	return 0, false
}

// IsTimeoutStatus reports request, gateway and proxy timeouts.
func IsTimeoutStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusGatewayTimeout, statusCloudflareTimeout:
		return true
	}
	return false
}

// IsRetryableStatus reports 408, 429 and any 5xx.
func IsRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

// IsTimeout reports whether err means the remote side ran out of time: a deadline,
// a net timeout, a timeout status, or a message that says so.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if netErr := net.Error(nil); errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if code, ok := statusOf(err); ok && IsTimeoutStatus(code) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out")
}

// IsRetryable reports whether another attempt could succeed. Cancellation never is.
func IsRetryable(err error) bool {
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		return false
	case IsTimeout(err):
		return true
	}
	code, ok := statusOf(err)
	return ok && IsRetryableStatus(code)
}

// Backoff computes exponential retry delays with +/- Jitter spread. A Retry-After
// header in seconds replaces the computed delay. Max caps both.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64
}

func (b Backoff) Delay(attempt int, resp *http.Response) time.Duration {
	d := b.Base
	for i := 0; i < attempt && (b.Max <= 0 || d < b.Max); i++ {
		d *= 2
	}
	if ra, ok := retryAfter(resp); ok {
		d = ra
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	return spread(d, b.Jitter)
}

func retryAfter(resp *http.Response) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func spread(d time.Duration, frac float64) time.Duration {
	if d <= 0 || frac <= 0 {
		return max(d, 0)
	}
	offset := (rand.Float64()*2 - 1) * frac * float64(d)
	return max(time.Duration(float64(d)+offset), 0)
}
