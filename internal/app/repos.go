package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type Repos struct {
	Subject        repos.SubjectRepo
	Lecture        repos.LectureRepo
	File           repos.FileRepo
	Brief          repos.BriefRepo
	FlashcardSet   repos.FlashcardSetRepo
	QuizSet        repos.QuizSetRepo
	QuizSubmission repos.QuizSubmissionRepo
	UserPlan       repos.UserPlanRepo
	PlanOrder      repos.PlanOrderRepo
	UserPreference repos.UserPreferenceRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Subject:        repos.NewSubjectRepo(db, log),
		Lecture:        repos.NewLectureRepo(db, log),
		File:           repos.NewFileRepo(db, log),
		Brief:          repos.NewBriefRepo(db, log),
		FlashcardSet:   repos.NewFlashcardSetRepo(db, log),
		QuizSet:        repos.NewQuizSetRepo(db, log),
		QuizSubmission: repos.NewQuizSubmissionRepo(db, log),
		UserPlan:       repos.NewUserPlanRepo(db, log),
		PlanOrder:      repos.NewPlanOrderRepo(db, log),
		UserPreference: repos.NewUserPreferenceRepo(db, log),
	}
}
