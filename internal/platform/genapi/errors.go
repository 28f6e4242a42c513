package genapi

import (
	"errors"
	"fmt"
	"strings"
)

// HTTPError is a non-2xx answer from a generation endpoint.
type HTTPError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 256 {
		body = body[:256]
	}
	return fmt.Sprintf("%s: http %d: %s", e.Endpoint, e.StatusCode, body)
}

func (e *HTTPError) HTTPStatusCode() int { return e.StatusCode }

// RemoteJobError is a 2xx answer whose payload reports a failed job.
type RemoteJobError struct {
	Endpoint string
	Message  string
}

func (e *RemoteJobError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = "generation failed"
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, msg)
}

func IsRemoteJobError(err error) bool {
	var rj *RemoteJobError
	return errors.As(err, &rj)
}
