package services

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/gcp"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/realtime"
)

var allowedExtensions = map[string]bool{".pdf": true, ".docx": true, ".pptx": true}

type FileUpload struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// FileView is a stored file plus its download URL.
type FileView struct {
	*types.File
	URL string `json:"url"`
}

type FileService interface {
	Upload(dbc dbctx.Context, userID, lectureID uuid.UUID, up FileUpload) (*FileView, error)
	List(dbc dbctx.Context, userID, lectureID uuid.UUID) ([]*FileView, error)
	PublicURL(dbc dbctx.Context, userID, fileID uuid.UUID) (string, error)
	Delete(dbc dbctx.Context, userID, fileID uuid.UUID) error
	// ResolveSource picks the file a generation runs on: fileID when set,
	// otherwise the lecture's latest upload.
	ResolveSource(dbc dbctx.Context, userID, lectureID, fileID uuid.UUID) (*types.File, error)
}

type fileService struct {
	log      *logger.Logger
	lectures repos.LectureRepo
	files    repos.FileRepo
	bucket   gcp.ObjectStore
	plans    PlanService
	notifier *realtime.Notifier
}

func NewFileService(
	baseLog *logger.Logger,
	lectures repos.LectureRepo,
	files repos.FileRepo,
	bucket gcp.ObjectStore,
	plans PlanService,
	notifier *realtime.Notifier,
) FileService {
	return &fileService{
		log:      baseLog.With("service", "FileService"),
		lectures: lectures,
		files:    files,
		bucket:   bucket,
		plans:    plans,
		notifier: notifier,
	}
}

// validationFailure is a 400 whose cause classifies under code.
func validationFailure(code, msg string) error {
	return apierr.BadRequest(code, generation.NewValidationError(code, msg))
}

func storageKey(userID, lectureID uuid.UUID, name string) string {
	return fmt.Sprintf("%s/%s/%s-%s", userID, lectureID, uuid.NewString(), name)
}

func cleanFileName(name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func (s *fileService) Upload(dbc dbctx.Context, userID, lectureID uuid.UUID, up FileUpload) (*FileView, error) {
	if up.Reader == nil {
		return nil, validationFailure(generation.CodeNoFile, "No file selected.")
	}
	name := cleanFileName(up.Name)
	ext := strings.ToLower(path.Ext(name))
	if name == "" || !allowedExtensions[ext] {
		return nil, validationFailure(generation.CodeUnsupported, "Only PDF, DOCX and PPTX files are supported.")
	}
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return nil, err
	}
	limits, err := s.plans.Limits(dbc, userID)
	if err != nil {
		return nil, err
	}
	if !limits.AllowsUpload(up.Size) {
		return nil, apierr.New(http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Errorf("the %s plan allows uploads up to %d MB", limits.Name, limits.MaxUploadMB))
	}

	key := storageKey(userID, lectureID, name)
	if err := s.bucket.Put(dbc.Ctx, key, up.Reader, gcp.ContentTypeForKey(key)); err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}
	row := &types.File{
		LectureID:   lectureID,
		UserID:      userID,
		Name:        name,
		MimeType:    gcp.ContentTypeForKey(key),
		SizeBytes:   up.Size,
		StoragePath: key,
	}
	if err := s.files.Create(dbc, row); err != nil {
		removeObjects(dbc.Ctx, s.log, s.bucket, []string{key})
		return nil, fmt.Errorf("record upload: %w", err)
	}
	view := &FileView{File: row, URL: s.bucket.URL(key)}
	s.notifier.Notify(realtime.SSEMessage{
		Channel: realtime.LectureChannel(userID.String(), lectureID.String()),
		Event:   realtime.SSEEventFileUploaded,
		Data:    view,
	})
	return view, nil
}

func (s *fileService) List(dbc dbctx.Context, userID, lectureID uuid.UUID) ([]*FileView, error) {
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return nil, err
	}
	rows, err := s.files.ListByLecture(dbc, lectureID)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	out := make([]*FileView, 0, len(rows))
	for _, f := range rows {
		out = append(out, &FileView{File: f, URL: s.bucket.URL(f.StoragePath)})
	}
	return out, nil
}

func (s *fileService) PublicURL(dbc dbctx.Context, userID, fileID uuid.UUID) (string, error) {
	f, err := ownedFile(dbc, s.files, userID, fileID)
	if err != nil {
		return "", err
	}
	return s.bucket.URL(f.StoragePath), nil
}

func (s *fileService) Delete(dbc dbctx.Context, userID, fileID uuid.UUID) error {
	f, err := ownedFile(dbc, s.files, userID, fileID)
	if err != nil {
		return err
	}
	if err := s.files.Delete(dbc, fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	removeObjects(dbc.Ctx, s.log, s.bucket, []string{f.StoragePath})
	s.notifier.Notify(realtime.SSEMessage{
		Channel: realtime.LectureChannel(userID.String(), f.LectureID.String()),
		Event:   realtime.SSEEventFileDeleted,
		Data:    map[string]any{"file_id": fileID},
	})
	return nil
}

func (s *fileService) ResolveSource(dbc dbctx.Context, userID, lectureID, fileID uuid.UUID) (*types.File, error) {
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return nil, err
	}
	var (
		f   *types.File
		err error
	)
	if fileID != uuid.Nil {
		f, err = ownedFile(dbc, s.files, userID, fileID)
		if err != nil {
			return nil, err
		}
		if f.LectureID != lectureID {
			return nil, errFileNotFound
		}
		return f, nil
	}
	f, err = s.files.Latest(dbc, lectureID)
	if err != nil {
		return nil, fmt.Errorf("latest file: %w", err)
	}
	if f == nil {
		return nil, validationFailure(generation.CodeNoFile, "Please upload or select a file first.")
	}
	return f, nil
}
