package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type UserPreferenceRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreference, error)
	Upsert(dbc dbctx.Context, row *types.UserPreference) error
}

type userPreferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) UserPreferenceRepo {
	return &userPreferenceRepo{db: db, log: baseLog.With("repo", "UserPreferenceRepo")}
}

func (r *userPreferenceRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreference, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.UserPreference
	res := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *userPreferenceRepo) Upsert(dbc dbctx.Context, row *types.UserPreference) error {
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	row.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"language",
				"theme",
				"updated_at",
			}),
		}).
		Create(row).Error
}
