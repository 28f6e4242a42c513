package generation

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/yungbote/studyhub-backend/internal/platform/genapi"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", NewValidationError(CodeNoQuestionType, "Please select at least one question type."), CodeNoQuestionType},
		{"not found", fmt.Errorf("load: %w", ErrNotFound), CodeNotFound},
		{"deadline", context.DeadlineExceeded, CodeTimeout},
		{"gateway timeout", &genapi.HTTPError{StatusCode: 524}, CodeTimeout},
		{"pending", ErrPending, CodeTimeout},
		{"remote job", &genapi.RemoteJobError{Message: "bad pdf"}, CodeRemoteJob},
		{"http 500", &genapi.HTTPError{StatusCode: 500}, CodeNetwork},
		{"other", errors.New("boom"), CodeFailed},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestDeferToPoller(t *testing.T) {
	if !deferToPoller(fmt.Errorf("call: %w", context.DeadlineExceeded)) {
		t.Fatalf("deadline should defer")
	}
	if deferToPoller(context.Canceled) {
		t.Fatalf("cancel must not defer")
	}
	if deferToPoller(&genapi.RemoteJobError{Message: "x"}) {
		t.Fatalf("remote job error must not defer")
	}
}
