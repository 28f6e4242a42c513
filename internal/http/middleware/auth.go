package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/http/response"
	"github.com/yungbote/studyhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type AuthConfig struct {
	// Secret is the HS256 key the hosted auth service signs session tokens with.
	Secret string
	// Issuer is checked when set.
	Issuer string
}

// Claims are the session token claims; the subject is the user id.
type Claims struct {
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	Language  string `json:"lang,omitempty"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
	parser *jwt.Parser
}

func NewAuthMiddleware(log *logger.Logger, cfg AuthConfig) (*AuthMiddleware, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("missing AUTH_JWT_SECRET")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if iss := strings.TrimSpace(cfg.Issuer); iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}
	return &AuthMiddleware{
		log:    log.With("middleware", "AuthMiddleware"),
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(opts...),
	}, nil
}

// Verify parses a token and returns the caller it names.
func (am *AuthMiddleware) Verify(token string) (*ctxutil.RequestData, error) {
	claims := &Claims{}
	if _, err := am.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return am.secret, nil
	}); err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return nil, errors.New("token subject is not a user id")
	}
	rd := &ctxutil.RequestData{
		UserID:   userID,
		Email:    claims.Email,
		Name:     claims.Name,
		Language: claims.Language,
	}
	if sid, err := uuid.Parse(claims.SessionID); err == nil {
		rd.SessionID = sid
	}
	return rd, nil
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.RespondMessage(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}
		rd, err := am.Verify(token)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.RespondMessage(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}

// extractToken accepts ?token= for EventSource, which cannot set headers.
func extractToken(c *gin.Context) string {
	if q := strings.TrimSpace(c.Query("token")); q != "" {
		return q
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
