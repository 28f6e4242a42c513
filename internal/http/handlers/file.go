package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studyhub-backend/internal/http/response"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/services"
)

// maxMultipartMemory is what ParseMultipartForm keeps in memory; the rest spills to disk.
const maxMultipartMemory = 32 << 20

type FileHandler struct {
	log   *logger.Logger
	loc   *Localizer
	files services.FileService
}

func NewFileHandler(log *logger.Logger, loc *Localizer, files services.FileService) *FileHandler {
	return &FileHandler{log: log.With("handler", "FileHandler"), loc: loc, files: files}
}

// POST /api/lectures/:id/files (multipart field "file")
func (h *FileHandler) Upload(c *gin.Context) {
	lectureID, err := uuidParam(c, "id")
	if err != nil {
		badRequest(h.loc, c, "invalid_id", err)
		return
	}
	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		badRequest(h.loc, c, "invalid_multipart_form", err)
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(h.loc, c, "missing_file", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(h.loc, c, "missing_file", err)
		return
	}
	defer f.Close()

	view, err := h.files.Upload(dbcOf(c), userID(c), lectureID, services.FileUpload{
		Name:   fh.Filename,
		Size:   fh.Size,
		Reader: f,
	})
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"file": view})
}

// GET /api/lectures/:id/files
func (h *FileHandler) List(c *gin.Context) {
	lectureID, err := uuidParam(c, "id")
	if err != nil {
		badRequest(h.loc, c, "invalid_id", err)
		return
	}
	out, err := h.files.List(dbcOf(c), userID(c), lectureID)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"files": out})
}

// GET /api/files/:id/url
func (h *FileHandler) URL(c *gin.Context) {
	fileID, err := uuidParam(c, "id")
	if err != nil {
		badRequest(h.loc, c, "invalid_id", err)
		return
	}
	url, err := h.files.PublicURL(dbcOf(c), userID(c), fileID)
	if err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondOK(c, gin.H{"url": url})
}

// DELETE /api/files/:id
func (h *FileHandler) Delete(c *gin.Context) {
	fileID, err := uuidParam(c, "id")
	if err != nil {
		badRequest(h.loc, c, "invalid_id", err)
		return
	}
	if err := h.files.Delete(dbcOf(c), userID(c), fileID); err != nil {
		h.loc.Error(c, err)
		return
	}
	response.RespondNoContent(c)
}
