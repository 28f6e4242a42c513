package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

type UserPreference struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Language string    `gorm:"type:text;not null;default:'en'" json:"language"`
	Theme    string    `gorm:"type:text;not null;default:'system'" json:"theme"`

	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserPreference) TableName() string { return "user_preferences" }

func (p *UserPreference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
