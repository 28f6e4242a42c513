package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"gorm.io/datatypes"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/envutil"
	"github.com/yungbote/studyhub-backend/internal/platform/genapi"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type BriefState = generation.Snapshot[types.Brief]

// BriefQuality flags pages whose summary looks too thin. It is advisory; a
// brief is never rejected for it.
type BriefQuality struct {
	MinWords   int   `json:"min_words"`
	WordCounts []int `json:"word_counts"`
	ShortPages []int `json:"short_pages"`
}

type BriefService interface {
	State(dbc dbctx.Context, userID, lectureID uuid.UUID) (BriefState, error)
	// Generate reports false when a generation for the lecture is already running.
	Generate(dbc dbctx.Context, userID, lectureID, fileID uuid.UUID) (BriefState, bool, error)
	SetPage(dbc dbctx.Context, userID, lectureID uuid.UUID, page int) (BriefState, bool, error)
	PageHTML(dbc dbctx.Context, userID, lectureID uuid.UUID, page int) (string, error)
	Quality(dbc dbctx.Context, userID, lectureID uuid.UUID) (*BriefQuality, error)
	Close(userID, lectureID uuid.UUID)
}

type briefService struct {
	log      *logger.Logger
	hub      *SessionHub
	lectures repos.LectureRepo
	files    FileService
	briefs   repos.BriefRepo
	gen      genapi.Client
	md       goldmark.Markdown
	minWords int
}

func NewBriefService(
	baseLog *logger.Logger,
	hub *SessionHub,
	lectures repos.LectureRepo,
	files FileService,
	briefs repos.BriefRepo,
	gen genapi.Client,
) BriefService {
	return &briefService{
		log:      baseLog.With("service", "BriefService"),
		hub:      hub,
		lectures: lectures,
		files:    files,
		briefs:   briefs,
		gen:      gen,
		md:       goldmark.New(),
		minWords: envutil.Int("BRIEF_MIN_PAGE_WORDS", 40),
	}
}

func (s *briefService) adapter(lectureID uuid.UUID) generation.Adapter[types.Brief] {
	return generation.Adapter[types.Brief]{
		Find: func(ctx context.Context) (*types.Brief, error) {
			return s.briefs.GetByLectureID(dbctx.Context{Ctx: ctx}, lectureID)
		},
		Bounds: func(b *types.Brief) (int, int) { return 1, b.Pages() },
		Stored: func(b *types.Brief) int { return b.CurrentPage },
	}
}

func (s *briefService) session(userID, lectureID uuid.UUID) (*generation.Session[types.Brief], error) {
	return openSession(s.hub, userID, lectureID, generation.KindBrief, s.adapter(lectureID))
}

func (s *briefService) State(dbc dbctx.Context, userID, lectureID uuid.UUID) (BriefState, error) {
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return BriefState{}, err
	}
	sess, err := s.session(userID, lectureID)
	if err != nil {
		return BriefState{}, err
	}
	snap, err := sess.Load(dbc.Ctx)
	if err != nil {
		s.log.Warn("brief load failed", "lecture_id", lectureID, "error", err)
	}
	return snap, nil
}

func (s *briefService) Generate(dbc dbctx.Context, userID, lectureID, fileID uuid.UUID) (BriefState, bool, error) {
	file, err := s.files.ResolveSource(dbc, userID, lectureID, fileID)
	if err != nil {
		return BriefState{}, false, err
	}
	sess, err := s.session(userID, lectureID)
	if err != nil {
		return BriefState{}, false, err
	}
	req := genapi.ProcessRequest{UserID: userID.String(), LectureID: lectureID.String(), FilePath: file.StoragePath}
	started := sess.Generate(func(ctx context.Context) (*types.Brief, error) {
		res, err := s.gen.ProcessBrief(ctx, req)
		if err != nil {
			return nil, err
		}
		return s.briefs.UpsertByLecture(dbctx.Context{Ctx: ctx}, briefFromResult(userID, lectureID, res))
	})
	return sess.Snapshot(), started, nil
}

func briefFromResult(userID, lectureID uuid.UUID, res *genapi.BriefResult) *types.Brief {
	summary := strings.TrimSpace(res.Overview.Summary)
	return &types.Brief{
		LectureID:     lectureID,
		UserID:        userID,
		PageSummaries: datatypes.NewJSONSlice(res.PageSummaries),
		TotalPages:    res.TotalPages,
		CurrentPage:   1,
		Metadata: datatypes.NewJSONType(types.BriefMetadata{
			DocumentTitle:    strings.TrimSpace(res.Overview.DocumentTitle),
			MainThemes:       res.Overview.MainThemes,
			Summary:          summary,
			KeyConcepts:      res.KeyConcepts,
			ImportantDetails: res.ImportantDetails,
		}),
	}
}

func (s *briefService) SetPage(dbc dbctx.Context, userID, lectureID uuid.UUID, page int) (BriefState, bool, error) {
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return BriefState{}, false, err
	}
	sess, err := s.session(userID, lectureID)
	if err != nil {
		return BriefState{}, false, err
	}
	if _, err := loadIfCold(dbc.Ctx, sess); err != nil {
		return BriefState{}, false, fmt.Errorf("load brief: %w", err)
	}
	snap, changed := sess.Navigate(page)
	if changed {
		if err := s.briefs.SetCurrentPage(dbc, lectureID, snap.Position); err != nil {
			s.log.Warn("failed to persist brief page", "lecture_id", lectureID, "page", snap.Position, "error", err)
		}
	}
	return snap, changed, nil
}

func (s *briefService) load(dbc dbctx.Context, userID, lectureID uuid.UUID) (*types.Brief, error) {
	if _, err := ownedLecture(dbc, s.lectures, userID, lectureID); err != nil {
		return nil, err
	}
	b, err := s.briefs.GetByLectureID(dbc, lectureID)
	if err != nil {
		return nil, fmt.Errorf("load brief: %w", err)
	}
	if b == nil {
		return nil, apierr.NotFound("not_found", errors.New("lecture has no brief"))
	}
	return b, nil
}

func (s *briefService) PageHTML(dbc dbctx.Context, userID, lectureID uuid.UUID, page int) (string, error) {
	b, err := s.load(dbc, userID, lectureID)
	if err != nil {
		return "", err
	}
	if page < 1 || page > b.Pages() {
		return "", apierr.NotFound("not_found", fmt.Errorf("page %d out of range 1..%d", page, b.Pages()))
	}
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(b.Page(page)), &buf); err != nil {
		return "", fmt.Errorf("render page %d: %w", page, err)
	}
	return buf.String(), nil
}

func (s *briefService) Quality(dbc dbctx.Context, userID, lectureID uuid.UUID) (*BriefQuality, error) {
	b, err := s.load(dbc, userID, lectureID)
	if err != nil {
		return nil, err
	}
	return assessBrief(b, s.minWords), nil
}

func assessBrief(b *types.Brief, minWords int) *BriefQuality {
	q := &BriefQuality{MinWords: minWords, WordCounts: []int{}, ShortPages: []int{}}
	for i := 1; i <= b.Pages(); i++ {
		n := len(strings.Fields(b.Page(i)))
		q.WordCounts = append(q.WordCounts, n)
		if n < minWords {
			q.ShortPages = append(q.ShortPages, i)
		}
	}
	return q
}

func (s *briefService) Close(userID, lectureID uuid.UUID) {
	s.hub.Close(userID, lectureID, generation.KindBrief)
}
