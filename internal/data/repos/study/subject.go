package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type SubjectRepo interface {
	Create(dbc dbctx.Context, row *types.Subject) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Subject, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Subject, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	Update(dbc dbctx.Context, id uuid.UUID, name, color string) error
	// Delete removes the subject and everything below it.
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	return &subjectRepo{db: db, log: baseLog.With("repo", "SubjectRepo")}
}

func (r *subjectRepo) Create(dbc dbctx.Context, row *types.Subject) error {
	return dbc.DB(r.db).Create(row).Error
}

func (r *subjectRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Subject, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Subject
	res := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *subjectRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Subject, error) {
	var out []*types.Subject
	err := dbc.DB(r.db).Where("user_id = ?", userID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *subjectRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Subject{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *subjectRepo) Update(dbc dbctx.Context, id uuid.UUID, name, color string) error {
	return dbc.DB(r.db).Model(&types.Subject{}).Where("id = ?", id).Updates(map[string]any{
		"name":       name,
		"color":      color,
		"updated_at": time.Now().UTC(),
	}).Error
}

func (r *subjectRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		var lectureIDs []uuid.UUID
		if err := tx.Model(&types.Lecture{}).Where("subject_id = ?", id).Pluck("id", &lectureIDs).Error; err != nil {
			return err
		}
		if err := deleteLectureRows(tx, lectureIDs); err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&types.Subject{}).Error
	})
}
