package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
	"github.com/yungbote/studyhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/gcp"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type SubjectInput struct {
	Name  string `json:"name" validate:"required,max=120"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type SubjectService interface {
	List(dbc dbctx.Context, userID uuid.UUID) ([]*types.Subject, error)
	Create(dbc dbctx.Context, userID uuid.UUID, in SubjectInput) (*types.Subject, error)
	Update(dbc dbctx.Context, userID, subjectID uuid.UUID, in SubjectInput) (*types.Subject, error)
	// Delete removes the subject, its lectures and artifacts, and the stored files.
	Delete(dbc dbctx.Context, userID, subjectID uuid.UUID) error
}

type subjectService struct {
	log      *logger.Logger
	subjects repos.SubjectRepo
	lectures repos.LectureRepo
	files    repos.FileRepo
	bucket   gcp.ObjectStore
	plans    PlanService
}

func NewSubjectService(
	baseLog *logger.Logger,
	subjects repos.SubjectRepo,
	lectures repos.LectureRepo,
	files repos.FileRepo,
	bucket gcp.ObjectStore,
	plans PlanService,
) SubjectService {
	return &subjectService{
		log:      baseLog.With("service", "SubjectService"),
		subjects: subjects,
		lectures: lectures,
		files:    files,
		bucket:   bucket,
		plans:    plans,
	}
}

func (s *subjectService) List(dbc dbctx.Context, userID uuid.UUID) ([]*types.Subject, error) {
	rows, err := s.subjects.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return rows, nil
}

func (s *subjectService) Create(dbc dbctx.Context, userID uuid.UUID, in SubjectInput) (*types.Subject, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	limits, err := s.plans.Limits(dbc, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.subjects.CountByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("count subjects: %w", err)
	}
	if !limits.AllowsSubject(count) {
		return nil, apierr.New(http.StatusPaymentRequired, "plan_limit_reached",
			fmt.Errorf("the %s plan allows %d subjects", limits.Name, limits.MaxSubjects))
	}
	row := &types.Subject{UserID: userID, Name: in.Name, Color: in.Color}
	if err := s.subjects.Create(dbc, row); err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}
	return row, nil
}

func (s *subjectService) Update(dbc dbctx.Context, userID, subjectID uuid.UUID, in SubjectInput) (*types.Subject, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	row, err := ownedSubject(dbc, s.subjects, userID, subjectID)
	if err != nil {
		return nil, err
	}
	if err := s.subjects.Update(dbc, subjectID, in.Name, in.Color); err != nil {
		return nil, fmt.Errorf("update subject: %w", err)
	}
	row.Name, row.Color = in.Name, in.Color
	return row, nil
}

func (s *subjectService) Delete(dbc dbctx.Context, userID, subjectID uuid.UUID) error {
	if _, err := ownedSubject(dbc, s.subjects, userID, subjectID); err != nil {
		return err
	}
	lectures, err := s.lectures.ListBySubject(dbc, subjectID)
	if err != nil {
		return fmt.Errorf("list lectures: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(lectures))
	for _, l := range lectures {
		ids = append(ids, l.ID)
	}
	keys, err := s.files.StoragePathsByLectures(dbc, ids)
	if err != nil {
		return fmt.Errorf("collect storage paths: %w", err)
	}
	if err := s.subjects.Delete(dbc, subjectID); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	removeObjects(dbc.Ctx, s.log, s.bucket, keys)
	return nil
}

// removeObjects is best effort: the rows are already gone.
func removeObjects(ctx context.Context, log *logger.Logger, bucket gcp.ObjectStore, keys []string) {
	if bucket == nil || len(keys) == 0 {
		return
	}
	if err := bucket.Delete(context.WithoutCancel(ctxutil.Default(ctx)), keys...); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn("failed to remove stored files", "count", len(keys), "error", err)
	}
}
