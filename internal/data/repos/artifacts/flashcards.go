package artifacts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type FlashcardSetRepo interface {
	GetByLectureID(dbc dbctx.Context, lectureID uuid.UUID) (*types.FlashcardSet, error)
	UpsertByLecture(dbc dbctx.Context, row *types.FlashcardSet) (*types.FlashcardSet, error)
	SetCurrentCard(dbc dbctx.Context, lectureID uuid.UUID, card int) error
}

type flashcardSetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardSetRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardSetRepo {
	return &flashcardSetRepo{db: db, log: baseLog.With("repo", "FlashcardSetRepo")}
}

func (r *flashcardSetRepo) GetByLectureID(dbc dbctx.Context, lectureID uuid.UUID) (*types.FlashcardSet, error) {
	if lectureID == uuid.Nil {
		return nil, nil
	}
	var row types.FlashcardSet
	res := dbc.DB(r.db).Where("lecture_id = ?", lectureID).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *flashcardSetRepo) UpsertByLecture(dbc dbctx.Context, row *types.FlashcardSet) (*types.FlashcardSet, error) {
	if row == nil || row.LectureID == uuid.Nil {
		return nil, nil
	}
	now := time.Now().UTC()
	row.UpdatedAt = now
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	err := upsertByLecture(dbc.DB(r.db), row, []string{
		"user_id",
		"cards",
		"current_card",
		"updated_at",
	}, func(tx *gorm.DB) error {
		var existing types.FlashcardSet
		res := tx.Where("lecture_id = ?", row.LectureID).Limit(1).Find(&existing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Create(row).Error
		}
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		return tx.Save(row).Error
	})
	if err != nil {
		r.log.Debug("flashcard upsert failed", "lecture_id", row.LectureID, "error", err)
		return nil, err
	}
	return r.GetByLectureID(dbc, row.LectureID)
}

func (r *flashcardSetRepo) SetCurrentCard(dbc dbctx.Context, lectureID uuid.UUID, card int) error {
	return dbc.DB(r.db).
		Model(&types.FlashcardSet{}).
		Where("lecture_id = ?", lectureID).
		Updates(map[string]any{"current_card": card, "updated_at": time.Now().UTC()}).Error
}
