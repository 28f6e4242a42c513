package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/studyhub-backend/internal/data/repos/artifacts"
	"github.com/yungbote/studyhub-backend/internal/data/repos/study"
	"github.com/yungbote/studyhub-backend/internal/data/repos/user"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type SubjectRepo = study.SubjectRepo
type LectureRepo = study.LectureRepo
type FileRepo = study.FileRepo

type BriefRepo = artifacts.BriefRepo
type FlashcardSetRepo = artifacts.FlashcardSetRepo
type QuizSetRepo = artifacts.QuizSetRepo
type QuizSubmissionRepo = artifacts.QuizSubmissionRepo

type UserPlanRepo = user.UserPlanRepo
type PlanOrderRepo = user.PlanOrderRepo
type UserPreferenceRepo = user.UserPreferenceRepo

func NewSubjectRepo(db *gorm.DB, log *logger.Logger) SubjectRepo { return study.NewSubjectRepo(db, log) }
func NewLectureRepo(db *gorm.DB, log *logger.Logger) LectureRepo { return study.NewLectureRepo(db, log) }
func NewFileRepo(db *gorm.DB, log *logger.Logger) FileRepo       { return study.NewFileRepo(db, log) }

func NewBriefRepo(db *gorm.DB, log *logger.Logger) BriefRepo { return artifacts.NewBriefRepo(db, log) }
func NewFlashcardSetRepo(db *gorm.DB, log *logger.Logger) FlashcardSetRepo {
	return artifacts.NewFlashcardSetRepo(db, log)
}
func NewQuizSetRepo(db *gorm.DB, log *logger.Logger) QuizSetRepo { return artifacts.NewQuizSetRepo(db, log) }
func NewQuizSubmissionRepo(db *gorm.DB, log *logger.Logger) QuizSubmissionRepo {
	return artifacts.NewQuizSubmissionRepo(db, log)
}

func NewUserPlanRepo(db *gorm.DB, log *logger.Logger) UserPlanRepo { return user.NewUserPlanRepo(db, log) }
func NewPlanOrderRepo(db *gorm.DB, log *logger.Logger) PlanOrderRepo { return user.NewPlanOrderRepo(db, log) }
func NewUserPreferenceRepo(db *gorm.DB, log *logger.Logger) UserPreferenceRepo {
	return user.NewUserPreferenceRepo(db, log)
}
