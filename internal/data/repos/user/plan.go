package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/studyhub-backend/internal/domain"
	domainuser "github.com/yungbote/studyhub-backend/internal/domain/user"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type UserPlanRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserPlan, error)
	Upsert(dbc dbctx.Context, row *types.UserPlan) error
	// MarkPending records an open checkout without touching the paid period.
	MarkPending(dbc dbctx.Context, userID uuid.UUID, plan, orderID string) error
}

type userPlanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserPlanRepo(db *gorm.DB, baseLog *logger.Logger) UserPlanRepo {
	return &userPlanRepo{db: db, log: baseLog.With("repo", "UserPlanRepo")}
}

func (r *userPlanRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserPlan, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.UserPlan
	res := dbc.DB(r.db).Where("user_id = ?", userID).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *userPlanRepo) Upsert(dbc dbctx.Context, row *types.UserPlan) error {
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	row.UpdatedAt = now
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plan",
				"status",
				"order_id",
				"current_period_end",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *userPlanRepo) MarkPending(dbc dbctx.Context, userID uuid.UUID, plan, orderID string) error {
	if userID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	row := &types.UserPlan{
		UserID:    userID,
		Plan:      plan,
		Status:    domainuser.PlanStatusPending,
		OrderID:   orderID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan", "status", "order_id", "updated_at"}),
		}).
		Create(row).Error
}
