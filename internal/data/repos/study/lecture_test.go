package study

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/studyhub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
)

func TestSubjectDeleteCascades(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: db}
	log := testutil.Logger(t)

	subject := testutil.SeedSubject(t, ctx, db, uuid.New())
	lecture := testutil.SeedLecture(t, ctx, db, subject)
	file := testutil.SeedFile(t, ctx, db, lecture, "cells.pdf")
	brief := &types.Brief{LectureID: lecture.ID, UserID: lecture.UserID, PageSummaries: datatypes.NewJSONSlice([]string{"p"})}
	if err := db.Create(brief).Error; err != nil {
		t.Fatalf("seed brief: %v", err)
	}

	files := NewFileRepo(db, log)
	paths, err := files.StoragePathsByLectures(dbc, []uuid.UUID{lecture.ID})
	if err != nil || len(paths) != 1 || paths[0] != file.StoragePath {
		t.Fatalf("paths: got=%v err=%v", paths, err)
	}

	if err := NewSubjectRepo(db, log).Delete(dbc, subject.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, model := range []any{&types.Subject{}, &types.Lecture{}, &types.File{}, &types.Brief{}} {
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			t.Fatalf("count %T: %v", model, err)
		}
		if n != 0 {
			t.Fatalf("%T: want=0 got=%d", model, n)
		}
	}
}

func TestLectureCountsAndLatestFile(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: db}
	log := testutil.Logger(t)

	userID := uuid.New()
	subject := testutil.SeedSubject(t, ctx, db, userID)
	lecture := testutil.SeedLecture(t, ctx, db, subject)
	testutil.SeedLecture(t, ctx, db, subject)

	n, err := NewLectureRepo(db, log).CountByUser(dbc, userID)
	if err != nil || n != 2 {
		t.Fatalf("count: want=2 got=%d err=%v", n, err)
	}

	files := NewFileRepo(db, log)
	latest, err := files.Latest(dbc, lecture.ID)
	if err != nil || latest != nil {
		t.Fatalf("latest on empty lecture: got=%v err=%v", latest, err)
	}
	older := testutil.SeedFile(t, ctx, db, lecture, "a.pdf")
	newer := testutil.SeedFile(t, ctx, db, lecture, "b.pdf")
	if err := db.Model(older).Update("created_at", newer.CreatedAt.Add(-time.Minute)).Error; err != nil {
		t.Fatalf("age file: %v", err)
	}
	latest, err = files.Latest(dbc, lecture.ID)
	if err != nil || latest == nil || latest.ID != newer.ID {
		t.Fatalf("latest: want=%s got=%v err=%v", newer.ID, latest, err)
	}
}
