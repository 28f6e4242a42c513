package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 5 * time.Minute},
		{"90s", 90 * time.Second},
		{"30", 30 * time.Second},
		{"nonsense", 5 * time.Minute},
	}
	for _, tc := range cases {
		t.Setenv("ENVUTIL_TEST_DURATION", tc.raw)
		if got := Duration("ENVUTIL_TEST_DURATION", 5*time.Minute); got != tc.want {
			t.Fatalf("Duration(%q): want=%v got=%v", tc.raw, tc.want, got)
		}
	}
}

func TestIntBoolList(t *testing.T) {
	t.Setenv("ENVUTIL_TEST_INT", "42")
	if got := Int("ENVUTIL_TEST_INT", 1); got != 42 {
		t.Fatalf("Int: want=42 got=%d", got)
	}
	t.Setenv("ENVUTIL_TEST_INT", "x")
	if got := Int("ENVUTIL_TEST_INT", 1); got != 1 {
		t.Fatalf("Int fallback: want=1 got=%d", got)
	}
	t.Setenv("ENVUTIL_TEST_BOOL", "off")
	if Bool("ENVUTIL_TEST_BOOL", true) {
		t.Fatalf("Bool: want=false")
	}
	t.Setenv("ENVUTIL_TEST_LIST", " a, ,b ")
	got := List("ENVUTIL_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: want=[a b] got=%v", got)
	}
}
