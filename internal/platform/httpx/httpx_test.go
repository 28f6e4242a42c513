package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string       { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatusCode() int { return int(e) }

type netTimeout struct{}

func (netTimeout) Error() string   { return "i/o" }
func (netTimeout) Timeout() bool   { return true }
func (netTimeout) Temporary() bool { return false }

func TestIsTimeout(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"net", netTimeout{}, true},
		{"504", statusErr(504), true},
		{"524", fmt.Errorf("wrapped: %w", statusErr(524)), true},
		{"408", statusErr(408), true},
		{"500", statusErr(500), false},
		{"text", errors.New("upstream request timed out"), true},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsTimeout(tc.err); got != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{context.Canceled, false},
		{statusErr(429), true},
		{statusErr(503), true},
		{statusErr(400), false},
		{errors.New("boom"), false},
		{netTimeout{}, true},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Fatalf("%v: want=%v got=%v", tc.err, tc.want, got)
		}
	}
}

func TestBackoffDelay(t *testing.T) {
	b := Backoff{Base: time.Second, Max: 10 * time.Second}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{6, 10 * time.Second},
	}
	for _, tc := range cases {
		if got := b.Delay(tc.attempt, nil); got != tc.want {
			t.Fatalf("attempt %d: want=%v got=%v", tc.attempt, tc.want, got)
		}
	}

	resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
	if got := b.Delay(0, resp); got != 3*time.Second {
		t.Fatalf("retry-after: want=3s got=%v", got)
	}
	resp.Header.Set("Retry-After", "120")
	if got := b.Delay(0, resp); got != 10*time.Second {
		t.Fatalf("retry-after capped: want=10s got=%v", got)
	}
}

func TestBackoffJitterBounds(t *testing.T) {
	b := Backoff{Base: time.Second, Jitter: 0.2}
	for i := 0; i < 50; i++ {
		d := b.Delay(0, nil)
		if d < 800*time.Millisecond || d > 1200*time.Millisecond {
			t.Fatalf("jitter out of bounds: %v", d)
		}
	}
}
