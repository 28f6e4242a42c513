package artifacts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type BriefRepo interface {
	GetByLectureID(dbc dbctx.Context, lectureID uuid.UUID) (*types.Brief, error)
	UpsertByLecture(dbc dbctx.Context, row *types.Brief) (*types.Brief, error)
	SetCurrentPage(dbc dbctx.Context, lectureID uuid.UUID, page int) error
}

type briefRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBriefRepo(db *gorm.DB, baseLog *logger.Logger) BriefRepo {
	return &briefRepo{db: db, log: baseLog.With("repo", "BriefRepo")}
}

// GetByLectureID returns nil, nil when the lecture has no brief yet.
func (r *briefRepo) GetByLectureID(dbc dbctx.Context, lectureID uuid.UUID) (*types.Brief, error) {
	if lectureID == uuid.Nil {
		return nil, nil
	}
	var row types.Brief
	res := dbc.DB(r.db).Where("lecture_id = ?", lectureID).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *briefRepo) UpsertByLecture(dbc dbctx.Context, row *types.Brief) (*types.Brief, error) {
	if row == nil || row.LectureID == uuid.Nil {
		return nil, nil
	}
	now := time.Now().UTC()
	row.UpdatedAt = now
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	t := dbc.DB(r.db)
	err := upsertByLecture(t, row, []string{
		"user_id",
		"page_summaries",
		"total_pages",
		"current_page",
		"metadata",
		"updated_at",
	}, func(tx *gorm.DB) error {
		var existing types.Brief
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
		r.log.Debug("brief upsert failed", "lecture_id", row.LectureID, "error", err)
		return nil, err
	}
	return r.GetByLectureID(dbc, row.LectureID)
}

func (r *briefRepo) SetCurrentPage(dbc dbctx.Context, lectureID uuid.UUID, page int) error {
	return dbc.DB(r.db).
		Model(&types.Brief{}).
		Where("lecture_id = ?", lectureID).
		Updates(map[string]any{"current_page": page, "updated_at": time.Now().UTC()}).Error
}
