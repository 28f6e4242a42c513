package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// PlanOrder is one checkout sent to the payment gateway. A user may hold
// several payable orders at once; each is settled on its own.
type PlanOrder struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID   string     `gorm:"type:text;not null;uniqueIndex" json:"order_id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Plan      string     `gorm:"type:text;not null" json:"plan"`
	AmountIDR int64      `gorm:"not null" json:"amount_idr"`
	Status    string     `gorm:"type:text;not null;default:'pending'" json:"status"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PlanOrder) TableName() string { return "plan_orders" }

func (o *PlanOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
