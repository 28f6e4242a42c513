package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// File is an uploaded lecture document. StoragePath is the object key inside the
// lecture files bucket and is what the generation endpoints receive as filePath.
type File struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LectureID   uuid.UUID `gorm:"type:uuid;not null;index" json:"lecture_id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	MimeType    string    `gorm:"type:text;not null" json:"mime_type"`
	SizeBytes   int64     `gorm:"not null;default:0" json:"size_bytes"`
	StoragePath string    `gorm:"type:text;not null;uniqueIndex" json:"storage_path"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (File) TableName() string { return "files" }

func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
