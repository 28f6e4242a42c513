package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/http/response"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/services"
)

// generateBody is the request for brief and flashcard generation. An empty
// file_id means the lecture's latest upload.
type generateBody struct {
	FileID uuid.UUID `json:"file_id"`
}

type positionBody struct {
	Position *int `json:"position" binding:"required"`
}

// respondGenerate answers 202 whether or not a run started; accepted is false
// when one was already in flight and the current state is returned instead.
func respondGenerate[T any](h *ArtifactHandler, c *gin.Context, snap generation.Snapshot[T], started bool) {
	response.RespondAccepted(c, gin.H{"accepted": started, "state": localizeSnapshot(h.loc, c, snap)})
}

func respondState[T any](h *ArtifactHandler, c *gin.Context, snap generation.Snapshot[T]) {
	response.RespondOK(c, gin.H{"state": localizeSnapshot(h.loc, c, snap)})
}

func respondMoved[T any](h *ArtifactHandler, c *gin.Context, snap generation.Snapshot[T], moved bool) {
	response.RespondOK(c, gin.H{"moved": moved, "state": localizeSnapshot(h.loc, c, snap)})
}

type ArtifactHandler struct {
	log        *logger.Logger
	loc        *Localizer
	briefs     services.BriefService
	flashcards services.FlashcardService
	quizzes    services.QuizService
}

func NewArtifactHandler(
	log *logger.Logger,
	loc *Localizer,
	briefs services.BriefService,
	flashcards services.FlashcardService,
	quizzes services.QuizService,
) *ArtifactHandler {
	return &ArtifactHandler{
		log:        log.With("handler", "ArtifactHandler"),
		loc:        loc,
		briefs:     briefs,
		flashcards: flashcards,
		quizzes:    quizzes,
	}
}

func (h *ArtifactHandler) lectureID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuidParam(c, "id")
	if err != nil {
		badRequest(h.loc, c, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

// optionalBody binds JSON when the request has one.
func optionalBody(c *gin.Context, dst any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(dst)
}

func (h *ArtifactHandler) position(c *gin.Context) (int, bool) {
	var body positionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(h.loc, c, "invalid_body", err)
		return 0, false
	}
	return *body.Position, true
}

// ---- brief ----

// GET /api/lectures/:id/brief
func (h *ArtifactHandler) BriefState(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	snap, err := h.briefs.State(dbcOf(c), userID(c), id)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	respondState(h, c, snap)
}

// POST /api/lectures/:id/brief/generate
func (h *ArtifactHandler) GenerateBrief(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	var body generateBody
	if err := optionalBody(c, &body); err != nil {
		badRequest(h.loc, c, "invalid_body", err)
		return
	}
	snap, started, err := h.briefs.Generate(dbcOf(c), userID(c), id, body.FileID)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	respondGenerate(h, c, snap, started)
}

// PUT /api/lectures/:id/brief/page
func (h *ArtifactHandler) SetBriefPage(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	page, ok := h.position(c)
	if !ok {
		return
	}
	snap, moved, err := h.briefs.SetPage(dbcOf(c), userID(c), id, page)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	respondMoved(h, c, snap, moved)
}

// GET /api/lectures/:id/brief/pages/:page/html
func (h *ArtifactHandler) BriefPageHTML(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil {
		badRequest(h.loc, c, "invalid_page", err)
		return
	}
	html, err := h.briefs.PageHTML(dbcOf(c), userID(c), id, page)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// GET /api/lectures/:id/brief/quality
func (h *ArtifactHandler) BriefQuality(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	q, err := h.briefs.Quality(dbcOf(c), userID(c), id)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, q)
}

// DELETE /api/lectures/:id/brief/session
func (h *ArtifactHandler) CloseBrief(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	h.briefs.Close(userID(c), id)
	response.RespondNoContent(c)
}

// ---- flashcards ----

// GET /api/lectures/:id/flashcards
func (h *ArtifactHandler) FlashcardState(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	snap, err := h.flashcards.State(dbcOf(c), userID(c), id)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	respondState(h, c, snap)
}

// POST /api/lectures/:id/flashcards/generate
func (h *ArtifactHandler) GenerateFlashcards(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	var body generateBody
	if err := optionalBody(c, &body); err != nil {
		badRequest(h.loc, c, "invalid_body", err)
		return
	}
	snap, started, err := h.flashcards.Generate(dbcOf(c), userID(c), id, body.FileID)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	respondGenerate(h, c, snap, started)
}

// PUT /api/lectures/:id/flashcards/card
func (h *ArtifactHandler) SetFlashcard(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	card, ok := h.position(c)
	if !ok {
		return
	}
	snap, moved, err := h.flashcards.SetCard(dbcOf(c), userID(c), id, card)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	respondMoved(h, c, snap, moved)
}

// DELETE /api/lectures/:id/flashcards/session
func (h *ArtifactHandler) CloseFlashcards(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	h.flashcards.Close(userID(c), id)
	response.RespondNoContent(c)
}

// ---- quiz ----

// GET /api/lectures/:id/quiz
func (h *ArtifactHandler) QuizState(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	snap, err := h.quizzes.State(dbcOf(c), userID(c), id)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	respondState(h, c, snap)
}

// POST /api/lectures/:id/quiz/generate
func (h *ArtifactHandler) GenerateQuiz(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	var in services.QuizGenerateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(h.loc, c, "invalid_body", err)
		return
	}
	snap, started, err := h.quizzes.Generate(dbcOf(c), userID(c), id, in)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	respondGenerate(h, c, snap, started)
}

// PUT /api/lectures/:id/quiz/question
func (h *ArtifactHandler) SetQuizQuestion(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	index, ok := h.position(c)
	if !ok {
		return
	}
	snap, moved, err := h.quizzes.SetQuestion(dbcOf(c), userID(c), id, index)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	respondMoved(h, c, snap, moved)
}

// POST /api/lectures/:id/quiz/submissions
func (h *ArtifactHandler) SubmitQuiz(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	var in services.QuizSubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(h.loc, c, "invalid_body", err)
		return
	}
	sub, err := h.quizzes.Submit(dbcOf(c), userID(c), id, in)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"submission": sub})
}

// GET /api/lectures/:id/quiz/submissions?limit=
func (h *ArtifactHandler) QuizSubmissions(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(h.loc, c, "invalid_limit", fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	out, err := h.quizzes.Submissions(dbcOf(c), userID(c), id, limit)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"submissions": out})
}

// DELETE /api/lectures/:id/quiz/session
func (h *ArtifactHandler) CloseQuiz(c *gin.Context) {
	id, ok := h.lectureID(c)
	if !ok {
		return
	}
	h.quizzes.Close(userID(c), id)
	response.RespondNoContent(c)
}
