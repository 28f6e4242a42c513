package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lecture groups uploaded files and the artifacts generated from them.
type Lecture struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"subject_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"type:text;not null" json:"title"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Lecture) TableName() string { return "lectures" }

func (l *Lecture) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
