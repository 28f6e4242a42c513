package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyhub-backend/internal/http/response"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/services"
)

type SubjectHandler struct {
	log      *logger.Logger
	loc      *Localizer
	subjects services.SubjectService
	lectures services.LectureService
}

func NewSubjectHandler(log *logger.Logger, loc *Localizer, subjects services.SubjectService, lectures services.LectureService) *SubjectHandler {
	return &SubjectHandler{
		log:      log.With("handler", "SubjectHandler"),
		loc:      loc,
		subjects: subjects,
		lectures: lectures,
	}
}

// GET /api/subjects
func (h *SubjectHandler) List(c *gin.Context) {
	out, err := h.subjects.List(dbcOf(c), userID(c))
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subjects": out})
}

// POST /api/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	var in services.SubjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(h.loc, c, "invalid_body", err)
		return
	}
	s, err := h.subjects.Create(dbcOf(c), userID(c), in)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"subject": s})
}

// PATCH /api/subjects/:id
func (h *SubjectHandler) Update(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		badRequest(h.loc, c, "invalid_id", err)
		return
	}
	var in services.SubjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(h.loc, c, "invalid_body", err)
		return
	}
	s, err := h.subjects.Update(dbcOf(c), userID(c), id, in)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subject": s})
}

// DELETE /api/subjects/:id
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		badRequest(h.loc, c, "invalid_id", err)
		return
	}
	if err := h.subjects.Delete(dbcOf(c), userID(c), id); err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/subjects/:id/lectures
func (h *SubjectHandler) ListLectures(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		badRequest(h.loc, c, "invalid_id", err)
		return
	}
	out, err := h.lectures.ListBySubject(dbcOf(c), userID(c), id)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lectures": out})
}

// POST /api/subjects/:id/lectures
func (h *SubjectHandler) CreateLecture(c *gin.Context) {
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
	l, err := h.lectures.Create(dbcOf(c), userID(c), id, in)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"lecture": l})
}
