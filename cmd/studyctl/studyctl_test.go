package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/studyhub-backend/internal/data/db"
	"github.com/yungbote/studyhub-backend/internal/data/repos"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

// hookWaiter returns immediately and runs onWait before the given attempt's read.
type hookWaiter struct {
	calls  atomic.Int32
	onWait func(n int)
}

func (w *hookWaiter) Wait(ctx context.Context, d time.Duration) error {
	n := int(w.calls.Add(1))
	if w.onWait != nil {
		w.onWait(n)
	}
	return ctx.Err()
}

// seedLecture creates a sqlite file with one lecture and its brief.
func seedLecture(t *testing.T) (dsn string, lectureID uuid.UUID) {
	t.Helper()
	dsn = filepath.Join(t.TempDir(), "studyhub.db")
	gdb, err := db.OpenSQLite(dsn, true)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := db.AutoMigrateAll(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	userID := uuid.New()
	lecture := &types.Lecture{ID: uuid.New(), SubjectID: uuid.New(), UserID: userID, Title: "Cell biology"}
	if err := gdb.Create(lecture).Error; err != nil {
		t.Fatalf("create lecture: %v", err)
	}
	briefs := repos.NewBriefRepo(gdb, logger.NewNop())
	if _, err := briefs.UpsertByLecture(dbctx.Context{Ctx: context.Background()}, &types.Brief{
		LectureID:     lecture.ID,
		UserID:        userID,
		PageSummaries: datatypes.NewJSONSlice([]string{"one", "two", "three"}),
		TotalPages:    3,
		CurrentPage:   2,
	}); err != nil {
		t.Fatalf("seed brief: %v", err)
	}
	return dsn, lecture.ID
}

func run(t *testing.T, ctx *commandContext, args ...string) (string, error) {
	t.Helper()
	cmd := buildRootCommand(ctx)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-mode", "test"))
	err := cmd.Execute()
	ctx.close()
	return out.String(), err
}

func TestScheduleCommand(t *testing.T) {
	t.Setenv("GENERATION_SCHEDULES_YAML", "")
	out, err := run(t, newCommandContext(), "schedule", "brief")
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	for _, want := range []string{"brief: 30 attempts", "1-5", "2s", "6-10"} {
		if !strings.Contains(out, want) {
			t.Fatalf("schedule output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "quiz") {
		t.Fatalf("single kind should print one table:\n%s", out)
	}

	if _, err := run(t, newCommandContext(), "schedule", "essay"); err == nil {
		t.Fatalf("unknown kind: want error")
	}
}

func TestScheduleRows(t *testing.T) {
	rows := scheduleRows(generation.DefaultSchedule)
	if len(rows) != 4 {
		t.Fatalf("rows: want=4 got=%d", len(rows))
	}
	// 5*2s + 5*3s
	if rows[1][0] != "6-10" || rows[1][2] != "25s" {
		t.Fatalf("second step: got=%v", rows[1])
	}
}

func TestArtifactsStatus(t *testing.T) {
	dsn, lectureID := seedLecture(t)
	out, err := run(t, newCommandContext(), "artifacts", "status", lectureID.String(), "--sqlite", dsn)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Cell biology") {
		t.Fatalf("missing lecture title:\n%s", out)
	}
	lines := strings.Split(out, "\n")
	var briefLine, quizLine string
	for _, l := range lines {
		switch {
		case strings.Contains(l, "brief"):
			briefLine = l
		case strings.Contains(l, "quiz"):
			quizLine = l
		}
	}
	if !strings.Contains(briefLine, "yes") || !strings.Contains(briefLine, "3") {
		t.Fatalf("brief row: got=%q", briefLine)
	}
	if !strings.Contains(quizLine, "no") {
		t.Fatalf("quiz row: got=%q", quizLine)
	}

	if _, err := run(t, newCommandContext(), "artifacts", "status", uuid.NewString(), "--sqlite", dsn); err == nil {
		t.Fatalf("unknown lecture: want error")
	}
}

func TestReconcileFindsLateArtifact(t *testing.T) {
	dsn, lectureID := seedLecture(t)
	ctx := newCommandContext()
	waiter := &hookWaiter{}
	waiter.onWait = func(n int) {
		if n != 2 {
			return
		}
		gdb, err := ctx.database()
		if err != nil {
			t.Errorf("database: %v", err)
			return
		}
		sets := repos.NewFlashcardSetRepo(gdb, logger.NewNop())
		if _, err := sets.UpsertByLecture(dbctx.Context{Ctx: context.Background()}, &types.FlashcardSet{
			LectureID: lectureID,
			UserID:    uuid.New(),
			Cards:     datatypes.NewJSONSlice([]types.Flashcard{{Question: "q", Answer: "a"}}),
		}); err != nil {
			t.Errorf("late insert: %v", err)
		}
	}
	ctx.waiter = waiter

	out, err := run(t, ctx, "reconcile", lectureID.String(), "--kind", "flashcards", "--sqlite", dsn)
	if err != nil {
		t.Fatalf("reconcile: %v\n%s", err, out)
	}
	if !strings.Contains(out, "found") {
		t.Fatalf("want found outcome:\n%s", out)
	}
	if n := waiter.calls.Load(); n != 2 {
		t.Fatalf("waits: want=2 got=%d", n)
	}
}

func TestReconcileReportsMissing(t *testing.T) {
	dsn, lectureID := seedLecture(t)
	ctx := newCommandContext()
	ctx.waiter = &hookWaiter{}

	out, err := run(t, ctx, "reconcile", lectureID.String(), "--sqlite", dsn)
	if err == nil || !strings.Contains(err.Error(), "2 artifact(s) still missing") {
		t.Fatalf("want two missing kinds, got err=%v\n%s", err, out)
	}
	if !strings.Contains(out, "timeout") {
		t.Fatalf("want timeout outcome:\n%s", out)
	}
}
