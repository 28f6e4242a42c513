package artifacts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/studyhub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
)

func newBrief(lectureID, userID uuid.UUID) *types.Brief {
	return &types.Brief{
		LectureID:     lectureID,
		UserID:        userID,
		PageSummaries: datatypes.NewJSONSlice([]string{"page one", "page two"}),
		TotalPages:    2,
		CurrentPage:   1,
		Metadata: datatypes.NewJSONType(types.BriefMetadata{
			DocumentTitle: "Cells",
			MainThemes:    []string{"membranes"},
		}),
	}
}

func countBriefs(t *testing.T, dbc dbctx.Context, lectureID uuid.UUID) int64 {
	t.Helper()
	var n int64
	if err := dbc.Tx.WithContext(dbc.Ctx).Model(&types.Brief{}).Where("lecture_id = ?", lectureID).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestBriefUpsertTwiceKeepsOneRow(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: db}
	repo := NewBriefRepo(db, testutil.Logger(t))

	lectureID, userID := uuid.New(), uuid.New()
	first, err := repo.UpsertByLecture(dbc, newBrief(lectureID, userID))
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := repo.UpsertByLecture(dbc, newBrief(lectureID, userID))
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if n := countBriefs(t, dbc, lectureID); n != 1 {
		t.Fatalf("rows: want=1 got=%d", n)
	}
	if first.ID != second.ID {
		t.Fatalf("id: want=%s got=%s", first.ID, second.ID)
	}
	if second.Pages() != 2 || second.Page(2) != "page two" {
		t.Fatalf("content: got=%+v", second.PageSummaries)
	}
	if second.Metadata.Data().DocumentTitle != "Cells" {
		t.Fatalf("metadata: got=%+v", second.Metadata.Data())
	}
}

func TestBriefUpsertWithoutUniqueIndexFallsBack(t *testing.T) {
	db := testutil.DB(t)
	if err := db.Exec("DROP INDEX IF EXISTS idx_briefs_lecture_id").Error; err != nil {
		t.Fatalf("drop index: %v", err)
	}
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: db}
	repo := NewBriefRepo(db, testutil.Logger(t))

	lectureID, userID := uuid.New(), uuid.New()
	if _, err := repo.UpsertByLecture(dbc, newBrief(lectureID, userID)); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	updated := newBrief(lectureID, userID)
	updated.PageSummaries = datatypes.NewJSONSlice([]string{"only page"})
	updated.TotalPages = 1
	got, err := repo.UpsertByLecture(dbc, updated)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if n := countBriefs(t, dbc, lectureID); n != 1 {
		t.Fatalf("rows: want=1 got=%d", n)
	}
	if got.Pages() != 1 || got.Page(1) != "only page" {
		t.Fatalf("content: got=%+v", got.PageSummaries)
	}
}

func TestBriefSetCurrentPage(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: db}
	repo := NewBriefRepo(db, testutil.Logger(t))

	lectureID := uuid.New()
	if _, err := repo.UpsertByLecture(dbc, newBrief(lectureID, uuid.New())); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.SetCurrentPage(dbc, lectureID, 2); err != nil {
		t.Fatalf("SetCurrentPage: %v", err)
	}
	got, err := repo.GetByLectureID(dbc, lectureID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentPage != 2 {
		t.Fatalf("current page: want=2 got=%d", got.CurrentPage)
	}
	missing, err := repo.GetByLectureID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("missing: want nil,nil got=%v,%v", missing, err)
	}
}
