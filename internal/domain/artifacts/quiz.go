package artifacts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionOpenEnded      QuestionType = "open_ended"
	QuestionCaseStudy      QuestionType = "case_study"
)

// FreeText reports whether answers to this question are graded by the evaluator.
func (t QuestionType) FreeText() bool { return t != QuestionMultipleChoice }

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// QuizOptions are the toggles a quiz was requested with.
type QuizOptions struct {
	MultipleChoice bool       `json:"multiple_choice"`
	OpenEnded      bool       `json:"open_ended"`
	CaseStudy      bool       `json:"case_study"`
	QuestionCount  int        `json:"question_count"`
	Difficulty     Difficulty `json:"difficulty"`
}

func (o QuizOptions) AnyType() bool { return o.MultipleChoice || o.OpenEnded || o.CaseStudy }

type QuizSet struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LectureID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"lecture_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"type:text;not null;default:''" json:"title"`

	Options   datatypes.JSONType[QuizOptions] `json:"options"`
	Questions []QuizQuestion                  `gorm:"foreignKey:QuizSetID" json:"questions"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizSet) TableName() string { return "quiz_sets" }

func (q *QuizSet) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (q *QuizSet) Question(id uuid.UUID) *QuizQuestion {
	if q == nil {
		return nil
	}
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

type QuizQuestion struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	QuizSetID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"quiz_set_id"`
	Position    int          `gorm:"not null;default:0" json:"position"`
	Type        QuestionType `gorm:"type:text;not null" json:"type"`
	Question    string       `gorm:"type:text;not null" json:"question"`
	ModelAnswer string       `gorm:"type:text;not null;default:''" json:"model_answer,omitempty"`
	CaseContext string       `gorm:"type:text;not null;default:''" json:"case_context,omitempty"`
	Options     []QuizOption `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (QuizQuestion) TableName() string { return "quiz_questions" }

func (q *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (q *QuizQuestion) Option(id uuid.UUID) *QuizOption {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return &q.Options[i]
		}
	}
	return nil
}

type QuizOption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
}

func (QuizOption) TableName() string { return "quiz_options" }

func (o *QuizOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// GradedAnswer is one entry of a stored submission.
type GradedAnswer struct {
	QuestionID uuid.UUID `json:"question_id"`
	Answer     Answer    `json:"answer"`
	IsCorrect  bool      `json:"is_correct"`
	Score      float64   `json:"score"`
	Feedback   string    `json:"feedback,omitempty"`
}

type QuizSubmission struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizSetID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_set_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Answers  datatypes.JSONSlice[GradedAnswer] `json:"answers"`
	Score    int                               `gorm:"not null;default:0" json:"score"`
	MaxScore int                               `gorm:"not null;default:0" json:"max_score"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (QuizSubmission) TableName() string { return "quiz_submissions" }

func (s *QuizSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
