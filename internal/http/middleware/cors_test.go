package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func preflight(r *gin.Engine, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/subjects", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSOrigins(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"dev default", nil, "http://localhost:5173", "http://localhost:5173"},
		{"configured", []string{"https://app.example.com"}, "https://app.example.com", "https://app.example.com"},
		{"not listed", []string{"https://app.example.com"}, "http://localhost:5173", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tc.allowed))
			r.POST("/api/subjects", func(c *gin.Context) { c.Status(http.StatusCreated) })

			rec := preflight(r, tc.origin)
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Fatalf("allow-origin: want=%q got=%q", tc.want, got)
			}
		})
	}
}
