package user

import (
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type PlanOrderRepo interface {
	Create(dbc dbctx.Context, row *types.PlanOrder) error
	GetByOrderID(dbc dbctx.Context, orderID string) (*types.PlanOrder, error)
	// SetStatus moves the order to status; paidAt is stored only when non-nil.
	SetStatus(dbc dbctx.Context, orderID, status string, paidAt *time.Time) error
}

type planOrderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanOrderRepo(db *gorm.DB, baseLog *logger.Logger) PlanOrderRepo {
	return &planOrderRepo{db: db, log: baseLog.With("repo", "PlanOrderRepo")}
}

func (r *planOrderRepo) Create(dbc dbctx.Context, row *types.PlanOrder) error {
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	return dbc.DB(r.db).Create(row).Error
}

func (r *planOrderRepo) GetByOrderID(dbc dbctx.Context, orderID string) (*types.PlanOrder, error) {
	if orderID == "" {
		return nil, nil
	}
	var row types.PlanOrder
	res := dbc.DB(r.db).Where("order_id = ?", orderID).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *planOrderRepo) SetStatus(dbc dbctx.Context, orderID, status string, paidAt *time.Time) error {
	updates := map[string]any{"status": status, "updated_at": time.Now().UTC()}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	return dbc.DB(r.db).Model(&types.PlanOrder{}).Where("order_id = ?", orderID).Updates(updates).Error
}
