package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/yungbote/studyhub-backend/internal/platform/envutil"
)

const redacted = "[REDACTED]"

// redactor hides secrets and pseudonymizes identifiers in log fields.
type redactor struct {
	enabled bool
	salt    string
	secret  []string
	hashed  []string
}

var processRedactor = sync.OnceValue(func() redactor {
	return redactor{
		enabled: envutil.Bool("LOG_REDACTION_ENABLED", true),
		salt:    envutil.String("LOG_HASH_SALT", ""),
		secret: []string{
			"token", "authorization", "password", "secret", "cookie", "api_key",
			"apikey", "email", "refresh", "server_key", "signature",
		},
		hashed: []string{"user_id", "session_id"},
	}
})

func scrub(kv []any) []any {
	return processRedactor().fields(kv)
}

func (r redactor) fields(kv []any) []any {
	if !r.enabled || len(kv) == 0 {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i+1 < len(kv); i += 2 {
		name := stringify(kv[i])
		out = append(out, name, r.value(normalizeKey(name), kv[i+1]))
	}
	if len(kv)%2 == 1 {
		out = append(out, kv[len(kv)-1])
	}
	return out
}

func (r redactor) value(key string, val any) any {
	switch {
	case key == "":
	case containsAny(key, r.secret):
		return redacted
	case containsAny(key, r.hashed):
		return r.hash(val)
	}
	switch v := val.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, inner := range v {
			out[k] = r.value(normalizeKey(k), inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = r.value("", inner)
		}
		return out
	case string:
		if isJWT(v) {
			return redacted
		}
	}
	return val
}

func (r redactor) hash(val any) string {
	raw := stringify(val)
	if raw == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(r.salt + raw))
	return "hash:" + hex.EncodeToString(sum[:])[:12]
}

func normalizeKey(k string) string { return strings.ToLower(strings.TrimSpace(k)) }

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isJWT(s string) bool {
	head, rest, ok := strings.Cut(s, ".")
	if !ok {
		return false
	}
	payload, sig, ok := strings.Cut(rest, ".")
	return ok && sig != "" && !strings.Contains(sig, ".") && len(head) > 10 && len(payload) > 10
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
