package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/domain/artifacts"
	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
	"github.com/yungbote/studyhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/genapi"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

const (
	defaultQuestionCount = 10
	maxEvaluations       = 4
)

type QuizState = generation.Snapshot[types.QuizSet]

type QuizOptionsInput struct {
	MultipleChoice bool   `json:"multiple_choice"`
	OpenEnded      bool   `json:"open_ended"`
	CaseStudy      bool   `json:"case_study"`
	QuestionCount  int    `json:"question_count" validate:"omitempty,min=1,max=100"`
	Difficulty     string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

type QuizGenerateInput struct {
	FileID  uuid.UUID        `json:"file_id"`
	Options QuizOptionsInput `json:"options"`
}

type SubmittedAnswer struct {
	QuestionID uuid.UUID    `json:"question_id"`
	Answer     types.Answer `json:"answer"`
}

type QuizSubmitInput struct {
	Answers []SubmittedAnswer `json:"answers"`
}

type QuizService interface {
	State(dbc dbctx.Context, userID, lectureID uuid.UUID) (QuizState, error)
	// Generate rejects a request with no question type before anything else runs.
	Generate(dbc dbctx.Context, userID, lectureID uuid.UUID, in QuizGenerateInput) (QuizState, bool, error)
	SetQuestion(dbc dbctx.Context, userID, lectureID uuid.UUID, index int) (QuizState, bool, error)
	Submit(dbc dbctx.Context, userID, lectureID uuid.UUID, in QuizSubmitInput) (*types.QuizSubmission, error)
	Submissions(dbc dbctx.Context, userID, lectureID uuid.UUID, limit int) ([]*types.QuizSubmission, error)
	Close(userID, lectureID uuid.UUID)
}

type quizService struct {
	log         *logger.Logger
	hub         *SessionHub
	lectures    repos.LectureRepo
	files       FileService
	quizzes     repos.QuizSetRepo
	submissions repos.QuizSubmissionRepo
	plans       PlanService
	gen         genapi.Client
}

func NewQuizService(
	baseLog *logger.Logger,
	hub *SessionHub,
	lectures repos.LectureRepo,
	files FileService,
	quizzes repos.QuizSetRepo,
	submissions repos.QuizSubmissionRepo,
	plans PlanService,
	gen genapi.Client,
) QuizService {
	return &quizService{
		log:         baseLog.With("service", "QuizService"),
		hub:         hub,
		lectures:    lectures,
		files:       files,
		quizzes:     quizzes,
		submissions: submissions,
		plans:       plans,
		gen:         gen,
	}
}

// findPublic loads the lecture's quiz without the answer key.
func (s *quizService) findPublic(ctx context.Context, lectureID uuid.UUID) (*types.QuizSet, error) {
	q, err := s.quizzes.GetByLectureID(dbctx.Context{Ctx: ctx}, lectureID)
	if err != nil || q == nil {
		return q, err
	}
	for i := range q.Questions {
		q.Questions[i].ModelAnswer = ""
		for j := range q.Questions[i].Options {
			q.Questions[i].Options[j].IsCorrect = false
		}
	}
	return q, nil
}

func (s *quizService) session(userID, lectureID uuid.UUID) (*generation.Session[types.QuizSet], error) {
	return openSession(s.hub, userID, lectureID, generation.KindQuiz, generation.Adapter[types.QuizSet]{
		Find: func(ctx context.Context) (*types.QuizSet, error) {
			return s.findPublic(ctx, lectureID)
		},
		Bounds: func(q *types.QuizSet) (int, int) { return 0, len(q.Questions) - 1 },
	})
}

func (s *quizService) State(dbc dbctx.Context, userID, lectureID uuid.UUID) (QuizState, error) {
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return QuizState{}, err
	}
	sess, err := s.session(userID, lectureID)
	if err != nil {
		return QuizState{}, err
	}
	snap, err := sess.Load(dbc.Ctx)
	if err != nil {
		s.log.Warn("quiz load failed", "lecture_id", lectureID, "error", err)
	}
	return snap, nil
}

func normalizeQuizOptions(in QuizOptionsInput) types.QuizOptions {
	out := types.QuizOptions{
		MultipleChoice: in.MultipleChoice,
		OpenEnded:      in.OpenEnded,
		CaseStudy:      in.CaseStudy,
		QuestionCount:  in.QuestionCount,
		Difficulty:     artifacts.Difficulty(strings.ToLower(strings.TrimSpace(in.Difficulty))),
	}
	if out.QuestionCount <= 0 {
		out.QuestionCount = defaultQuestionCount
	}
	if out.Difficulty == "" {
		out.Difficulty = artifacts.DifficultyMedium
	}
	return out
}

func (s *quizService) Generate(dbc dbctx.Context, userID, lectureID uuid.UUID, in QuizGenerateInput) (QuizState, bool, error) {
	opts := normalizeQuizOptions(in.Options)
	if !opts.AnyType() {
		return QuizState{}, false, validationFailure(generation.CodeNoQuestionType, "Please select at least one question type.")
	}
	in.Options.Difficulty = string(opts.Difficulty)
	if err := validateInput(in.Options); err != nil {
		return QuizState{}, false, err
	}
	limits, err := s.plans.Limits(dbc, userID)
	if err != nil {
		return QuizState{}, false, err
	}
	if !limits.AllowsQuestions(opts.QuestionCount) {
		return QuizState{}, false, apierr.New(http.StatusPaymentRequired, "plan_limit_reached",
			fmt.Errorf("the %s plan allows up to %d questions", limits.Name, limits.MaxQuizQuestions))
	}
	file, err := s.files.ResolveSource(dbc, userID, lectureID, in.FileID)
	if err != nil {
		return QuizState{}, false, err
	}
	sess, err := s.session(userID, lectureID)
	if err != nil {
		return QuizState{}, false, err
	}
	req := genapi.QuizRequest{
		ProcessRequest: genapi.ProcessRequest{UserID: userID.String(), LectureID: lectureID.String(), FilePath: file.StoragePath},
		Options: genapi.QuizOptions{
			MultipleChoice: opts.MultipleChoice,
			OpenEnded:      opts.OpenEnded,
			CaseStudy:      opts.CaseStudy,
			QuestionCount:  opts.QuestionCount,
			Difficulty:     string(opts.Difficulty),
		},
	}
	started := sess.Generate(func(ctx context.Context) (*types.QuizSet, error) {
		if err := s.gen.ProcessQuiz(ctx, req); err != nil {
			return nil, err
		}
		// the job stores the quiz itself
		q, err := s.findPublic(ctx, lectureID)
		if err != nil {
			return nil, err
		}
		if q == nil {
			return nil, generation.ErrPending
		}
		return q, nil
	})
	return sess.Snapshot(), started, nil
}

func (s *quizService) SetQuestion(dbc dbctx.Context, userID, lectureID uuid.UUID, index int) (QuizState, bool, error) {
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return QuizState{}, false, err
	}
	sess, err := s.session(userID, lectureID)
	if err != nil {
		return QuizState{}, false, err
	}
	if _, err := loadIfCold(dbc.Ctx, sess); err != nil {
		return QuizState{}, false, fmt.Errorf("load quiz: %w", err)
	}
	snap, changed := sess.Navigate(index)
	return snap, changed, nil
}

func (s *quizService) loadQuiz(dbc dbctx.Context, userID, lectureID uuid.UUID) (*types.QuizSet, error) {
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return nil, err
	}
	q, err := s.quizzes.GetByLectureID(dbc, lectureID)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	if q == nil {
		return nil, apierr.NotFound("not_found", errors.New("lecture has no quiz"))
	}
	return q, nil
}

func (s *quizService) Submit(dbc dbctx.Context, userID, lectureID uuid.UUID, in QuizSubmitInput) (*types.QuizSubmission, error) {
	quiz, err := s.loadQuiz(dbc, userID, lectureID)
	if err != nil {
		return nil, err
	}
	if len(in.Answers) == 0 {
		return nil, apierr.BadRequest("invalid_answer", errors.New("no answers submitted"))
	}
	seen := make(map[uuid.UUID]bool, len(in.Answers))
	graded := make([]types.GradedAnswer, len(in.Answers))
	for i, a := range in.Answers {
		q := quiz.Question(a.QuestionID)
		if err := a.Answer.Validate(q); err != nil {
			return nil, apierr.BadRequest("invalid_answer", err)
		}
		if seen[a.QuestionID] {
			return nil, apierr.BadRequest("invalid_answer", fmt.Errorf("question %s answered twice", a.QuestionID))
		}
		seen[a.QuestionID] = true
		graded[i] = types.GradedAnswer{QuestionID: a.QuestionID, Answer: a.Answer}
		if !q.Type.FreeText() {
			if q.Option(a.Answer.OptionID).IsCorrect {
				graded[i].IsCorrect, graded[i].Score = true, 1
			}
		}
	}

	g, gctx := errgroup.WithContext(ctxutil.Default(dbc.Ctx))
	g.SetLimit(maxEvaluations)
	for i := range graded {
		q := quiz.Question(graded[i].QuestionID)
		if !q.Type.FreeText() {
			continue
		}
		g.Go(func() error {
			ev, err := s.gen.EvaluateAnswer(gctx, genapi.EvaluateRequest{
				Question:    q.Question,
				ModelAnswer: q.ModelAnswer,
				UserAnswer:  graded[i].Answer.Value,
			})
			if err != nil {
				return fmt.Errorf("evaluate question %s: %w", q.ID, err)
			}
			graded[i].IsCorrect = ev.IsCorrect
			graded[i].Score = ev.Score
			graded[i].Feedback = ev.Feedback
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		code := generation.Classify(err)
		s.log.Debug("answer evaluation failed", "lecture_id", lectureID, "code", code, "error", err)
		return nil, apierr.New(http.StatusBadGateway, code, err)
	}

	score := 0
	for _, a := range graded {
		if a.IsCorrect {
			score++
		}
	}
	row := &types.QuizSubmission{
		QuizSetID: quiz.ID,
		UserID:    userID,
		Answers:   datatypes.NewJSONSlice(graded),
		Score:     score,
		MaxScore:  len(quiz.Questions),
	}
	if err := s.submissions.Create(dbc, row); err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}
	return row, nil
}

func (s *quizService) Submissions(dbc dbctx.Context, userID, lectureID uuid.UUID, limit int) ([]*types.QuizSubmission, error) {
	quiz, err := s.loadQuiz(dbc, userID, lectureID)
	if err != nil {
		return nil, err
	}
	rows, err := s.submissions.ListByQuizSet(dbc, quiz.ID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return rows, nil
}

func (s *quizService) Close(userID, lectureID uuid.UUID) {
	s.hub.Close(userID, lectureID, generation.KindQuiz)
}
