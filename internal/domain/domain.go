package domain

import (
	"github.com/yungbote/studyhub-backend/internal/domain/artifacts"
	"github.com/yungbote/studyhub-backend/internal/domain/study"
	"github.com/yungbote/studyhub-backend/internal/domain/user"
)

type (
	Subject = study.Subject
	Lecture = study.Lecture
	File    = study.File

	Brief          = artifacts.Brief
	BriefMetadata  = artifacts.BriefMetadata
	Flashcard      = artifacts.Flashcard
	FlashcardSet   = artifacts.FlashcardSet
	QuizSet        = artifacts.QuizSet
	QuizQuestion   = artifacts.QuizQuestion
	QuizOption     = artifacts.QuizOption
	QuizOptions    = artifacts.QuizOptions
	QuizSubmission = artifacts.QuizSubmission
	GradedAnswer   = artifacts.GradedAnswer
	Answer         = artifacts.Answer
	QuestionType   = artifacts.QuestionType

	UserPlan       = user.UserPlan
	PlanOrder      = user.PlanOrder
	UserPreference = user.UserPreference
)

// Models lists every table owned by this service, in migration order.
func Models() []any {
	return []any{
		&Subject{},
		&Lecture{},
		&File{},
		&Brief{},
		&FlashcardSet{},
		&QuizSet{},
		&QuizQuestion{},
		&QuizOption{},
		&QuizSubmission{},
		&UserPlan{},
		&PlanOrder{},
		&UserPreference{},
	}
}
