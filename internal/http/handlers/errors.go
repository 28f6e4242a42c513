package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/http/response"
	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
	"github.com/yungbote/studyhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/i18n"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/services"
)

// Localizer turns error codes into messages in the caller's language.
type Localizer struct {
	log   *logger.Logger
	tr    *i18n.Translator
	prefs services.PreferenceService
}

// NewLocalizer accepts nil prefs; the token's language and Accept-Language
// decide then.
func NewLocalizer(log *logger.Logger, tr *i18n.Translator, prefs services.PreferenceService) *Localizer {
	return &Localizer{log: log.With("component", "Localizer"), tr: tr, prefs: prefs}
}

func (l *Localizer) language(c *gin.Context) language.Tag {
	preferred := ""
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		preferred = rd.Language
		if l.prefs != nil && rd.UserID != uuid.Nil {
			if p, err := l.prefs.Get(dbctx.Context{Ctx: c.Request.Context()}, rd.UserID); err == nil && p.ID != uuid.Nil {
				preferred = p.Language
			}
		}
	}
	return l.tr.Resolve(preferred, c.GetHeader("Accept-Language"))
}

func (l *Localizer) message(c *gin.Context, code, fallback string) string {
	return l.tr.Message(l.language(c), code, fallback)
}

// Error maps a service error to a status, a stable code and a localized message.
// Unclassified errors are logged and reported without detail.
func (l *Localizer) Error(c *gin.Context, err error) {
	if ae, ok := apierr.As(err); ok {
		code := ae.Code
		if code == "" {
			code = generation.Classify(ae.Err)
		}
		msg := ae.Error()
		var ve *generation.ValidationError
		if errors.As(err, &ve) {
			msg = ve.Message
		}
		status := apierr.StatusOf(ae)
		if status >= http.StatusInternalServerError {
			l.log.Warn("upstream failure", "path", c.FullPath(), "code", code, "error", err)
			msg = "The request could not be completed. Please try again."
		}
		response.RespondMessage(c, status, code, l.message(c, code, msg))
		return
	}
	_ = c.Error(err)
	l.log.Error("unhandled error", "path", c.FullPath(), "error", err)
	response.RespondMessage(c, http.StatusInternalServerError, "internal_error",
		l.message(c, "internal_error", "Something went wrong. Please try again."))
}

// Snapshot localizes the message a session snapshot carries.
func localizeSnapshot[T any](l *Localizer, c *gin.Context, snap generation.Snapshot[T]) generation.Snapshot[T] {
	if snap.ErrorCode != "" {
		snap.Error = l.message(c, snap.ErrorCode, snap.Error)
	}
	return snap
}

func badRequest(l *Localizer, c *gin.Context, code string, err error) {
	l.Error(c, apierr.BadRequest(code, err))
}

// userID is set by the auth middleware on every protected route.
func userID(c *gin.Context) uuid.UUID {
	return ctxutil.UserID(c.Request.Context())
}

func dbcOf(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

func requestSession(c *gin.Context) uuid.UUID {
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
		return rd.SessionID
	}
	return uuid.Nil
}
