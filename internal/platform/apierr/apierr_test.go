package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsFindsWrappedError(t *testing.T) {
	err := fmt.Errorf("load lecture: %w", NotFound("not_found", errors.New("lecture not found")))
	ae, ok := As(err)
	if !ok || ae.Code != "not_found" || ae.Status != http.StatusNotFound {
		t.Fatalf("As: ok=%v err=%+v", ok, ae)
	}
	if err.Error() != "load lecture: lecture not found" {
		t.Fatalf("message: got=%q", err.Error())
	}
	if _, ok := As(errors.New("plain")); ok {
		t.Fatalf("plain error should not match")
	}
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Conflict("already_present", nil), http.StatusConflict},
		{New(0, "odd", nil), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusOf(tc.err); got != tc.want {
			t.Fatalf("%v: want=%d got=%d", tc.err, tc.want, got)
		}
	}
}

func TestErrorText(t *testing.T) {
	if got := BadRequest("invalid_id", nil).Error(); got != "invalid_id" {
		t.Fatalf("code text: got=%q", got)
	}
	if got := New(http.StatusTeapot, "", nil).Error(); got != "api error 418" {
		t.Fatalf("status text: got=%q", got)
	}
}
