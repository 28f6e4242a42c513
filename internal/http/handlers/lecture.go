package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyhub-backend/internal/http/response"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/services"
)

type LectureHandler struct {
	log      *logger.Logger
	loc      *Localizer
	lectures services.LectureService
}

func NewLectureHandler(log *logger.Logger, loc *Localizer, lectures services.LectureService) *LectureHandler {
	return &LectureHandler{log: log.With("handler", "LectureHandler"), loc: loc, lectures: lectures}
}

// GET /api/lectures/:id
func (h *LectureHandler) Overview(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		badRequest(h.loc, c, "invalid_id", err)
		return
	}
	ov, err := h.lectures.Overview(dbcOf(c), userID(c), id)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, ov)
}

// PATCH /api/lectures/:id
func (h *LectureHandler) Rename(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		badRequest(h.loc, c, "invalid_id", err)
		return
	}
	var in services.LectureInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(h.loc, c, "invalid_body", err)
		return
	}
	l, err := h.lectures.Rename(dbcOf(c), userID(c), id, in)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lecture": l})
}

// DELETE /api/lectures/:id
func (h *LectureHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		badRequest(h.loc, c, "invalid_id", err)
		return
	}
	if err := h.lectures.Delete(dbcOf(c), userID(c), id); err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondNoContent(c)
}
