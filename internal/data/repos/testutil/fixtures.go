package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/studyhub-backend/internal/domain"
)

func SeedSubject(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID) *types.Subject {
	tb.Helper()
	s := &types.Subject{UserID: userID, Name: "Biology", Color: "#22aa55"}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subject: %v", err)
	}
	return s
}

func SeedLecture(tb testing.TB, ctx context.Context, tx *gorm.DB, subject *types.Subject) *types.Lecture {
	tb.Helper()
	l := &types.Lecture{SubjectID: subject.ID, UserID: subject.UserID, Title: "Cells"}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lecture: %v", err)
	}
	return l
}

func SeedFile(tb testing.TB, ctx context.Context, tx *gorm.DB, lecture *types.Lecture, name string) *types.File {
	tb.Helper()
	f := &types.File{
		LectureID:   lecture.ID,
		UserID:      lecture.UserID,
		Name:        name,
		MimeType:    "application/pdf",
		SizeBytes:   1024,
		StoragePath: lecture.UserID.String() + "/" + lecture.ID.String() + "/" + uuid.NewString() + "-" + name,
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed file: %v", err)
	}
	return f
}
