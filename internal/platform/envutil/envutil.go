// Package envutil reads typed settings from the environment. Unset, blank or
// unparsable values fall back to the default.
package envutil

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func lookup[T any](name string, def T, parse func(string) (T, bool)) T {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return def
	}
	if v, ok := parse(raw); ok {
		return v
	}
	return def
}

func String(name, def string) string {
	return lookup(name, def, func(s string) (string, bool) { return s, true })
}

func Int(name string, def int) int {
	return lookup(name, def, func(s string) (int, bool) {
		i, err := strconv.Atoi(s)
		return i, err == nil
	})
}

func Float(name string, def float64) float64 {
	return lookup(name, def, func(s string) (float64, bool) {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	})
}

func Bool(name string, def bool) bool {
	return lookup(name, def, func(s string) (bool, bool) {
		switch strings.ToLower(s) {
		case "1", "true", "yes", "on":
			return true, true
		case "0", "false", "no", "off":
			return false, true
		}
		return false, false
	})
}

// Duration accepts Go syntax ("90s", "15m") or a bare number of seconds.
func Duration(name string, def time.Duration) time.Duration {
	return lookup(name, def, func(s string) (time.Duration, bool) {
		if d, err := time.ParseDuration(s); err == nil {
			return d, true
		}
		secs, err := strconv.Atoi(s)
		return time.Duration(secs) * time.Second, err == nil
	})
}

// List splits a comma separated value and drops empty entries.
func List(name string, def []string) []string {
	return lookup(name, def, func(s string) ([]string, bool) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out, len(out) > 0
	})
}
