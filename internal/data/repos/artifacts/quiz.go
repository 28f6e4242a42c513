package artifacts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type QuizSetRepo interface {
	GetByLectureID(dbc dbctx.Context, lectureID uuid.UUID) (*types.QuizSet, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizSet, error)
	// UpsertByLecture replaces the lecture's quiz, questions and options included.
	UpsertByLecture(dbc dbctx.Context, row *types.QuizSet) (*types.QuizSet, error)
}

type quizSetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizSetRepo(db *gorm.DB, baseLog *logger.Logger) QuizSetRepo {
	return &quizSetRepo{db: db, log: baseLog.With("repo", "QuizSetRepo")}
}

func withQuestions(t *gorm.DB) *gorm.DB {
	return t.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *quizSetRepo) GetByLectureID(dbc dbctx.Context, lectureID uuid.UUID) (*types.QuizSet, error) {
	if lectureID == uuid.Nil {
		return nil, nil
	}
	var rows []types.QuizSet
	if err := withQuestions(dbc.DB(r.db)).Where("lecture_id = ?", lectureID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *quizSetRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizSet, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var rows []types.QuizSet
	if err := withQuestions(dbc.DB(r.db)).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *quizSetRepo) UpsertByLecture(dbc dbctx.Context, row *types.QuizSet) (*types.QuizSet, error) {
	if row == nil || row.LectureID == uuid.Nil {
		return nil, nil
	}
	now := time.Now().UTC()
	questions := row.Questions
	err := dbc.DB(r.db).Transaction(func(tx *gorm.DB) error {
		var existing types.QuizSet
		res := tx.Where("lecture_id = ?", row.LectureID).Limit(1).Find(&existing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			row.CreatedAt = now
			row.UpdatedAt = now
			if err := tx.Omit("Questions").Create(row).Error; err != nil {
				return err
			}
		} else {
			row.ID = existing.ID
			if err := tx.Model(&types.QuizSet{}).Where("id = ?", existing.ID).Updates(map[string]any{
				"user_id":    row.UserID,
				"title":      row.Title,
				"options":    row.Options,
				"updated_at": now,
			}).Error; err != nil {
				return err
			}
			oldQuestions := tx.Model(&types.QuizQuestion{}).Select("id").Where("quiz_set_id = ?", existing.ID)
			if err := tx.Where("question_id IN (?)", oldQuestions).Delete(&types.QuizOption{}).Error; err != nil {
				return err
			}
			if err := tx.Where("quiz_set_id = ?", existing.ID).Delete(&types.QuizQuestion{}).Error; err != nil {
				return err
			}
		}
		if len(questions) == 0 {
			return nil
		}
		fresh := make([]types.QuizQuestion, len(questions))
		for i, q := range questions {
			q.ID = uuid.Nil
			q.QuizSetID = row.ID
			q.Position = i
			opts := make([]types.QuizOption, len(q.Options))
			for j, o := range q.Options {
				o.ID = uuid.Nil
				o.QuestionID = uuid.Nil
				o.Position = j
				opts[j] = o
			}
			q.Options = opts
			fresh[i] = q
		}
		return tx.Create(&fresh).Error
	})
	if err != nil {
		r.log.Debug("quiz upsert failed", "lecture_id", row.LectureID, "error", err)
		return nil, err
	}
	return r.GetByLectureID(dbc, row.LectureID)
}

type QuizSubmissionRepo interface {
	Create(dbc dbctx.Context, row *types.QuizSubmission) error
	ListByQuizSet(dbc dbctx.Context, quizSetID, userID uuid.UUID, limit int) ([]*types.QuizSubmission, error)
}

type quizSubmissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) QuizSubmissionRepo {
	return &quizSubmissionRepo{db: db, log: baseLog.With("repo", "QuizSubmissionRepo")}
}

func (r *quizSubmissionRepo) Create(dbc dbctx.Context, row *types.QuizSubmission) error {
	if row == nil {
		return nil
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return dbc.DB(r.db).Create(row).Error
}

// ListByQuizSet returns the newest submissions first.
func (r *quizSubmissionRepo) ListByQuizSet(dbc dbctx.Context, quizSetID, userID uuid.UUID, limit int) ([]*types.QuizSubmission, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []*types.QuizSubmission
	err := dbc.DB(r.db).
		Where("quiz_set_id = ? AND user_id = ?", quizSetID, userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
