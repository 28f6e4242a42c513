package services

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
	"github.com/yungbote/studyhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/gcp"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type LectureInput struct {
	Title string `json:"title" validate:"required,max=200"`
}

// LectureOverview is what the lecture page needs on first paint.
type LectureOverview struct {
	Lecture       *types.Lecture `json:"lecture"`
	Files         []*types.File  `json:"files"`
	HasBrief      bool           `json:"has_brief"`
	HasFlashcards bool           `json:"has_flashcards"`
	HasQuiz       bool           `json:"has_quiz"`
}

type LectureService interface {
	ListBySubject(dbc dbctx.Context, userID, subjectID uuid.UUID) ([]*types.Lecture, error)
	Create(dbc dbctx.Context, userID, subjectID uuid.UUID, in LectureInput) (*types.Lecture, error)
	Rename(dbc dbctx.Context, userID, lectureID uuid.UUID, in LectureInput) (*types.Lecture, error)
	Delete(dbc dbctx.Context, userID, lectureID uuid.UUID) error
	Overview(dbc dbctx.Context, userID, lectureID uuid.UUID) (*LectureOverview, error)
}

type lectureService struct {
	log        *logger.Logger
	subjects   repos.SubjectRepo
	lectures   repos.LectureRepo
	files      repos.FileRepo
	briefs     repos.BriefRepo
	flashcards repos.FlashcardSetRepo
	quizzes    repos.QuizSetRepo
	bucket     gcp.ObjectStore
	plans      PlanService
}

func NewLectureService(
	baseLog *logger.Logger,
	subjects repos.SubjectRepo,
	lectures repos.LectureRepo,
	files repos.FileRepo,
	briefs repos.BriefRepo,
	flashcards repos.FlashcardSetRepo,
	quizzes repos.QuizSetRepo,
	bucket gcp.ObjectStore,
	plans PlanService,
) LectureService {
	return &lectureService{
		log:        baseLog.With("service", "LectureService"),
		subjects:   subjects,
		lectures:   lectures,
		files:      files,
		briefs:     briefs,
		flashcards: flashcards,
		quizzes:    quizzes,
		bucket:     bucket,
		plans:      plans,
	}
}

func (s *lectureService) ListBySubject(dbc dbctx.Context, userID, subjectID uuid.UUID) ([]*types.Lecture, error) {
	if _, err := ownedSubject(dbc, s.subjects, userID, subjectID); err != nil {
		return nil, err
	}
	rows, err := s.lectures.ListBySubject(dbc, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	return rows, nil
}

func (s *lectureService) Create(dbc dbctx.Context, userID, subjectID uuid.UUID, in LectureInput) (*types.Lecture, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if _, err := ownedSubject(dbc, s.subjects, userID, subjectID); err != nil {
		return nil, err
	}
	limits, err := s.plans.Limits(dbc, userID)
	if err != nil {
		return nil, err
	}
	count, err := s.lectures.CountByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("count lectures: %w", err)
	}
	if !limits.AllowsLecture(count) {
		return nil, apierr.New(http.StatusPaymentRequired, "plan_limit_reached",
			fmt.Errorf("the %s plan allows %d lectures", limits.Name, limits.MaxLectures))
	}
	row := &types.Lecture{SubjectID: subjectID, UserID: userID, Title: in.Title}
	if err := s.lectures.Create(dbc, row); err != nil {
		return nil, fmt.Errorf("create lecture: %w", err)
	}
	return row, nil
}

func (s *lectureService) Rename(dbc dbctx.Context, userID, lectureID uuid.UUID, in LectureInput) (*types.Lecture, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	row, err := ownedLecture(dbc, s.lectures, userID, lectureID)
	if err != nil {
		return nil, err
	}
	if err := s.lectures.Rename(dbc, lectureID, in.Title); err != nil {
		return nil, fmt.Errorf("rename lecture: %w", err)
	}
	row.Title = in.Title
	return row, nil
}

func (s *lectureService) Delete(dbc dbctx.Context, userID, lectureID uuid.UUID) error {
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return err
	}
	keys, err := s.files.StoragePathsByLectures(dbc, []uuid.UUID{lectureID})
	if err != nil {
		return fmt.Errorf("collect storage paths: %w", err)
	}
	if err := s.lectures.Delete(dbc, lectureID); err != nil {
		return fmt.Errorf("delete lecture: %w", err)
	}
	removeObjects(dbc.Ctx, s.log, s.bucket, keys)
	return nil
}

func (s *lectureService) Overview(dbc dbctx.Context, userID, lectureID uuid.UUID) (*LectureOverview, error) {
	lecture, err := ownedLecture(dbc, s.lectures, userID, lectureID)
	if err != nil {
		return nil, err
	}
	out := &LectureOverview{Lecture: lecture}
	g, gctx := errgroup.WithContext(ctxutil.Default(dbc.Ctx))
	if dbc.Tx != nil {
		// a transaction is bound to one connection
		g.SetLimit(1)
	}
	sub := dbc.With(gctx)
	g.Go(func() error {
		files, err := s.files.ListByLecture(sub, lectureID)
		if err != nil {
			return fmt.Errorf("list files: %w", err)
		}
		out.Files = files
		return nil
	})
	g.Go(func() error {
		b, err := s.briefs.GetByLectureID(sub, lectureID)
		out.HasBrief = b != nil
		return err
	})
	g.Go(func() error {
		f, err := s.flashcards.GetByLectureID(sub, lectureID)
		out.HasFlashcards = f != nil
		return err
	})
	g.Go(func() error {
		q, err := s.quizzes.GetByLectureID(sub, lectureID)
		out.HasQuiz = q != nil
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("lecture overview: %w", err)
	}
	if out.Files == nil {
		out.Files = []*types.File{}
	}
	return out, nil
}
