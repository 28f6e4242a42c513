package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/genapi"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type FlashcardState = generation.Snapshot[types.FlashcardSet]

type FlashcardService interface {
	State(dbc dbctx.Context, userID, lectureID uuid.UUID) (FlashcardState, error)
	Generate(dbc dbctx.Context, userID, lectureID, fileID uuid.UUID) (FlashcardState, bool, error)
	SetCard(dbc dbctx.Context, userID, lectureID uuid.UUID, card int) (FlashcardState, bool, error)
	Close(userID, lectureID uuid.UUID)
}

type flashcardService struct {
	log      *logger.Logger
	hub      *SessionHub
	lectures repos.LectureRepo
	files    FileService
	sets     repos.FlashcardSetRepo
	gen      genapi.Client
}

func NewFlashcardService(
	baseLog *logger.Logger,
	hub *SessionHub,
	lectures repos.LectureRepo,
	files FileService,
	sets repos.FlashcardSetRepo,
	gen genapi.Client,
) FlashcardService {
	return &flashcardService{
		log:      baseLog.With("service", "FlashcardService"),
		hub:      hub,
		lectures: lectures,
		files:    files,
		sets:     sets,
		gen:      gen,
	}
}

func (s *flashcardService) session(userID, lectureID uuid.UUID) (*generation.Session[types.FlashcardSet], error) {
	return openSession(s.hub, userID, lectureID, generation.KindFlashcards, generation.Adapter[types.FlashcardSet]{
		Find: func(ctx context.Context) (*types.FlashcardSet, error) {
			return s.sets.GetByLectureID(dbctx.Context{Ctx: ctx}, lectureID)
		},
		Bounds: func(f *types.FlashcardSet) (int, int) { return 0, len(f.Cards) - 1 },
		Stored: func(f *types.FlashcardSet) int { return f.CurrentCard },
	})
}

func (s *flashcardService) State(dbc dbctx.Context, userID, lectureID uuid.UUID) (FlashcardState, error) {
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return FlashcardState{}, err
	}
	sess, err := s.session(userID, lectureID)
	if err != nil {
		return FlashcardState{}, err
	}
	snap, err := sess.Load(dbc.Ctx)
	if err != nil {
		s.log.Warn("flashcards load failed", "lecture_id", lectureID, "error", err)
	}
	return snap, nil
}

func (s *flashcardService) Generate(dbc dbctx.Context, userID, lectureID, fileID uuid.UUID) (FlashcardState, bool, error) {
	file, err := s.files.ResolveSource(dbc, userID, lectureID, fileID)
	if err != nil {
		return FlashcardState{}, false, err
	}
	sess, err := s.session(userID, lectureID)
	if err != nil {
		return FlashcardState{}, false, err
	}
	req := genapi.ProcessRequest{UserID: userID.String(), LectureID: lectureID.String(), FilePath: file.StoragePath}
	started := sess.Generate(func(ctx context.Context) (*types.FlashcardSet, error) {
		res, err := s.gen.ProcessPdf(ctx, req)
		if err != nil {
			return nil, err
		}
		cards := make([]types.Flashcard, 0, len(res.Flashcards))
		for _, c := range res.Flashcards {
			q, a := strings.TrimSpace(c.Question), strings.TrimSpace(c.Answer)
			if q == "" {
				continue
			}
			cards = append(cards, types.Flashcard{Question: q, Answer: a})
		}
		return s.sets.UpsertByLecture(dbctx.Context{Ctx: ctx}, &types.FlashcardSet{
			LectureID: lectureID,
			UserID:    userID,
			Cards:     datatypes.NewJSONSlice(cards),
		})
	})
	return sess.Snapshot(), started, nil
}

func (s *flashcardService) SetCard(dbc dbctx.Context, userID, lectureID uuid.UUID, card int) (FlashcardState, bool, error) {
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return FlashcardState{}, false, err
	}
	sess, err := s.session(userID, lectureID)
	if err != nil {
		return FlashcardState{}, false, err
	}
	if _, err := loadIfCold(dbc.Ctx, sess); err != nil {
		return FlashcardState{}, false, fmt.Errorf("load flashcards: %w", err)
	}
	snap, changed := sess.Navigate(card)
	if changed {
		if err := s.sets.SetCurrentCard(dbc, lectureID, snap.Position); err != nil {
			s.log.Warn("failed to persist flashcard position", "lecture_id", lectureID, "card", snap.Position, "error", err)
		}
	}
	return snap, changed, nil
}

func (s *flashcardService) Close(userID, lectureID uuid.UUID) {
	s.hub.Close(userID, lectureID, generation.KindFlashcards)
}
