package artifacts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BriefMetadata struct {
	DocumentTitle    string   `json:"document_title"`
	MainThemes       []string `json:"main_themes"`
	Summary          string   `json:"summary,omitempty"`
	KeyConcepts      []string `json:"key_concepts"`
	ImportantDetails []string `json:"important_details"`
}

// Brief is the paginated summary of a lecture. One row per lecture.
type Brief struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LectureID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"lecture_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	PageSummaries datatypes.JSONSlice[string]       `json:"page_summaries"`
	TotalPages    int                               `gorm:"not null;default:0" json:"total_pages"`
	CurrentPage   int                               `gorm:"not null;default:1" json:"current_page"`
	Metadata      datatypes.JSONType[BriefMetadata] `json:"metadata"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Brief) TableName() string { return "briefs" }

func (b *Brief) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Pages is the navigable page count. Rows written by the remote job sometimes
// leave total_pages at zero, so the summaries decide in that case.
func (b *Brief) Pages() int {
	if b == nil {
		return 0
	}
	if b.TotalPages > 0 {
		return b.TotalPages
	}
	return len(b.PageSummaries)
}

// Page returns the 1-based page summary, or "" when out of range.
func (b *Brief) Page(n int) string {
	if b == nil || n < 1 || n > len(b.PageSummaries) {
		return ""
	}
	return b.PageSummaries[n-1]
}
