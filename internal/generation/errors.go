package generation

import (
	"context"
	"errors"
	"net"
	"net/url"

	"github.com/yungbote/studyhub-backend/internal/platform/genapi"
	"github.com/yungbote/studyhub-backend/internal/platform/httpx"
)

// Error codes double as i18n message keys.
const (
	CodeNetwork        = "network_error"
	CodeTimeout        = "timeout"
	CodeNotFound       = "not_found"
	CodeValidation     = "validation_error"
	CodeRemoteJob      = "remote_job_error"
	CodeTakingLong     = "generation_taking_long"
	CodePollFailed     = "poll_failed"
	CodeFailed         = "generation_failed"
	CodeNoFile         = "no_file_selected"
	CodeNoQuestionType = "no_question_type"
	CodeUnsupported    = "unsupported_file_type"
)

const MsgTakingLong = "Generation is taking unusually long. Please check back in a few minutes."

var (
	// ErrPending means the generator accepted the job but the artifact is not
	// stored yet; the session reconciles by polling.
	ErrPending = errors.New("generation pending")
	// ErrNotFound is absorbed into the no-artifact state and never surfaced.
	ErrNotFound = errors.New("artifact not found")
)

type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(code, msg string) *ValidationError {
	return &ValidationError{Code: code, Message: msg}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Classify maps an error to its taxonomy code.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Code
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrPending), httpx.IsTimeout(err):
		return CodeTimeout
	case genapi.IsRemoteJobError(err):
		return CodeRemoteJob
	case isNetwork(err):
		return CodeNetwork
	}
	return CodeFailed
}

func isNetwork(err error) bool {
	var ne net.Error
	var ue *url.Error
	var he *genapi.HTTPError
	return errors.As(err, &ne) || errors.As(err, &ue) || errors.As(err, &he)
}

// deferToPoller reports whether a generation error means "still running".
func deferToPoller(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrPending) || httpx.IsTimeout(err)
}

// userMessage is the English text stored on a snapshot; handlers localize by code.
func userMessage(code string, err error) string {
	switch code {
	case CodeTakingLong:
		return MsgTakingLong
	case CodeNetwork:
		return "Could not reach the generation service. Please try again."
	case CodePollFailed:
		return "We could not check on your generation. Please try again."
	case CodeRemoteJob:
		return "The generator could not process this file. Please try again."
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return "Generation failed. Please try again."
}
