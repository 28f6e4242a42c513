package artifacts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FlashcardSet struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LectureID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"lecture_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Cards       datatypes.JSONSlice[Flashcard] `json:"cards"`
	CurrentCard int                            `gorm:"not null;default:0" json:"current_card"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (FlashcardSet) TableName() string { return "flashcard_sets" }

func (f *FlashcardSet) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
