package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

const (
	PlanStatusActive  = "active"
	PlanStatusPending = "pending"
	PlanStatusFailed  = "failed"
)

// UserPlan is the billing tier of a user. A row exists only once the user has
// started a checkout; users without one are on the free plan.
type UserPlan struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Plan             string     `gorm:"type:text;not null;default:'free'" json:"plan"`
	Status           string     `gorm:"type:text;not null;default:'active'" json:"status"`
	OrderID          string     `gorm:"type:text;not null;default:'';index" json:"order_id"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserPlan) TableName() string { return "user_plans" }

func (p *UserPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// EffectivePlan is premium only while the paid period is running.
func (p *UserPlan) EffectivePlan(now time.Time) string {
	if p == nil || p.Plan != PlanPremium || p.Status != PlanStatusActive {
		return PlanFree
	}
	if p.CurrentPeriodEnd != nil && now.After(*p.CurrentPeriodEnd) {
		return PlanFree
	}
	return PlanPremium
}
