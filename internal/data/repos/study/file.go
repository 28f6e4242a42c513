package study

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type FileRepo interface {
	Create(dbc dbctx.Context, row *types.File) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.File, error)
	ListByLecture(dbc dbctx.Context, lectureID uuid.UUID) ([]*types.File, error)
	// Latest returns the most recent upload of a lecture, or nil.
	Latest(dbc dbctx.Context, lectureID uuid.UUID) (*types.File, error)
	StoragePathsByLectures(dbc dbctx.Context, lectureIDs []uuid.UUID) ([]string, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type fileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFileRepo(db *gorm.DB, baseLog *logger.Logger) FileRepo {
	return &fileRepo{db: db, log: baseLog.With("repo", "FileRepo")}
}

func (r *fileRepo) Create(dbc dbctx.Context, row *types.File) error {
	return dbc.DB(r.db).Create(row).Error
}

func (r *fileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.File, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.File
	res := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *fileRepo) ListByLecture(dbc dbctx.Context, lectureID uuid.UUID) ([]*types.File, error) {
	var out []*types.File
	err := dbc.DB(r.db).Where("lecture_id = ?", lectureID).Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *fileRepo) Latest(dbc dbctx.Context, lectureID uuid.UUID) (*types.File, error) {
	var rows []*types.File
	if err := dbc.DB(r.db).Where("lecture_id = ?", lectureID).Order("created_at DESC").Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *fileRepo) StoragePathsByLectures(dbc dbctx.Context, lectureIDs []uuid.UUID) ([]string, error) {
	if len(lectureIDs) == 0 {
		return nil, nil
	}
	var out []string
	err := dbc.DB(r.db).Model(&types.File{}).Where("lecture_id IN ?", lectureIDs).Pluck("storage_path", &out).Error
	return out, err
}

func (r *fileRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.File{}).Error
}
