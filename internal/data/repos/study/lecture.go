package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type LectureRepo interface {
	Create(dbc dbctx.Context, row *types.Lecture) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lecture, error)
	ListBySubject(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.Lecture, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	Rename(dbc dbctx.Context, id uuid.UUID, title string) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type lectureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLectureRepo(db *gorm.DB, baseLog *logger.Logger) LectureRepo {
	return &lectureRepo{db: db, log: baseLog.With("repo", "LectureRepo")}
}

func (r *lectureRepo) Create(dbc dbctx.Context, row *types.Lecture) error {
	return dbc.DB(r.db).Create(row).Error
}

func (r *lectureRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Lecture, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Lecture
	res := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *lectureRepo) ListBySubject(dbc dbctx.Context, subjectID uuid.UUID) ([]*types.Lecture, error) {
	var out []*types.Lecture
	err := dbc.DB(r.db).Where("subject_id = ?", subjectID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *lectureRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Lecture{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *lectureRepo) Rename(dbc dbctx.Context, id uuid.UUID, title string) error {
	return dbc.DB(r.db).Model(&types.Lecture{}).Where("id = ?", id).Updates(map[string]any{
		"title":      title,
		"updated_at": time.Now().UTC(),
	}).Error
}

func (r *lectureRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		return deleteLectureRows(tx, []uuid.UUID{id})
	})
}

// deleteLectureRows removes lectures with their files and artifacts. Stored
// objects are removed by the caller.
func deleteLectureRows(tx *gorm.DB, lectureIDs []uuid.UUID) error {
	if len(lectureIDs) == 0 {
		return nil
	}
	quizSets := tx.Model(&types.QuizSet{}).Select("id").Where("lecture_id IN ?", lectureIDs)
	questions := tx.Model(&types.QuizQuestion{}).Select("id").Where("quiz_set_id IN (?)", quizSets)
	steps := []func() error{
		func() error { return tx.Where("question_id IN (?)", questions).Delete(&types.QuizOption{}).Error },
		func() error { return tx.Where("quiz_set_id IN (?)", quizSets).Delete(&types.QuizQuestion{}).Error },
		func() error { return tx.Where("quiz_set_id IN (?)", quizSets).Delete(&types.QuizSubmission{}).Error },
		func() error { return tx.Where("lecture_id IN ?", lectureIDs).Delete(&types.QuizSet{}).Error },
		func() error { return tx.Where("lecture_id IN ?", lectureIDs).Delete(&types.Brief{}).Error },
		func() error { return tx.Where("lecture_id IN ?", lectureIDs).Delete(&types.FlashcardSet{}).Error },
		func() error { return tx.Where("lecture_id IN ?", lectureIDs).Delete(&types.File{}).Error },
		func() error { return tx.Where("id IN ?", lectureIDs).Delete(&types.Lecture{}).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
