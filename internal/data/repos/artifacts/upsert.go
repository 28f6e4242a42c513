package artifacts

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// upsertByLecture inserts row or overwrites columns of the existing row for the
// same lecture. Databases without a unique index on lecture_id reject the
// ON CONFLICT target; fallback then does read-then-update/insert in one tx.
func upsertByLecture(t *gorm.DB, row any, columns []string, fallback func(tx *gorm.DB) error) error {
	err := t.Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lecture_id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(row).Error
	if err == nil || !isMissingConflictTarget(err) {
		return err
	}
	return t.Transaction(fallback)
}

func isMissingConflictTarget(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no unique or exclusion constraint") ||
		strings.Contains(msg, "does not match any primary key or unique constraint")
}
