package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	domainuser "github.com/yungbote/studyhub-backend/internal/domain/user"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
)

func TestUserPlanUpsertByUser(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: db}
	repo := NewUserPlanRepo(db, testutil.Logger(t))

	userID := uuid.New()
	if err := repo.Upsert(dbc, &types.UserPlan{UserID: userID, Plan: domainuser.PlanPremium, Status: domainuser.PlanStatusPending, OrderID: "PREM-1"}); err != nil {
		t.Fatalf("pending upsert: %v", err)
	}
	end := time.Now().UTC().Add(30 * 24 * time.Hour)
	if err := repo.Upsert(dbc, &types.UserPlan{UserID: userID, Plan: domainuser.PlanPremium, Status: domainuser.PlanStatusActive, OrderID: "PREM-1", CurrentPeriodEnd: &end}); err != nil {
		t.Fatalf("active upsert: %v", err)
	}
	got, err := repo.GetByUserID(dbc, userID)
	if err != nil || got == nil {
		t.Fatalf("by user: got=%v err=%v", got, err)
	}
	if got.UserID != userID || got.Status != domainuser.PlanStatusActive {
		t.Fatalf("plan: got=%+v", got)
	}
	var n int64
	if err := db.Model(&types.UserPlan{}).Count(&n).Error; err != nil || n != 1 {
		t.Fatalf("rows: want=1 got=%d err=%v", n, err)
	}
}

func TestMarkPendingKeepsPaidPeriod(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: db}
	repo := NewUserPlanRepo(db, testutil.Logger(t))

	userID := uuid.New()
	end := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Second)
	if err := repo.Upsert(dbc, &types.UserPlan{UserID: userID, Plan: domainuser.PlanPremium, Status: domainuser.PlanStatusActive, OrderID: "PREM-1", CurrentPeriodEnd: &end}); err != nil {
		t.Fatalf("active upsert: %v", err)
	}
	if err := repo.MarkPending(dbc, userID, domainuser.PlanPremium, "PREM-2"); err != nil {
		t.Fatalf("MarkPending: %v", err)
	}
	got, err := repo.GetByUserID(dbc, userID)
	if err != nil || got == nil {
		t.Fatalf("by user: got=%v err=%v", got, err)
	}
	if got.Status != domainuser.PlanStatusPending || got.OrderID != "PREM-2" {
		t.Fatalf("pending plan: got=%+v", got)
	}
	if got.CurrentPeriodEnd == nil || !got.CurrentPeriodEnd.Equal(end) {
		t.Fatalf("period end: want=%v got=%v", end, got.CurrentPeriodEnd)
	}
}

func TestPlanOrderStatus(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: db}
	repo := NewPlanOrderRepo(db, testutil.Logger(t))

	order := &types.PlanOrder{OrderID: "PREM-9", UserID: uuid.New(), Plan: domainuser.PlanPremium, AmountIDR: 49000, Status: domainuser.OrderStatusPending, ExpiresAt: time.Now().Add(24 * time.Hour)}
	if err := repo.Create(dbc, order); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(dbc, &types.PlanOrder{OrderID: "PREM-9", UserID: uuid.New(), Plan: domainuser.PlanPremium, ExpiresAt: time.Now()}); err == nil {
		t.Fatalf("duplicate order id must fail")
	}
	paidAt := time.Now().UTC()
	if err := repo.SetStatus(dbc, "PREM-9", domainuser.OrderStatusPaid, &paidAt); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, err := repo.GetByOrderID(dbc, "PREM-9")
	if err != nil || got == nil {
		t.Fatalf("by order: got=%v err=%v", got, err)
	}
	if got.Status != domainuser.OrderStatusPaid || got.PaidAt == nil || got.UserID != order.UserID {
		t.Fatalf("order: got=%+v", got)
	}
	if missing, err := repo.GetByOrderID(dbc, "PREM-404"); err != nil || missing != nil {
		t.Fatalf("missing: want nil,nil got=%v,%v", missing, err)
	}
}

func TestUserPreferenceMissingIsNil(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: db}
	repo := NewUserPreferenceRepo(db, testutil.Logger(t))

	got, err := repo.GetByUserID(dbc, uuid.New())
	if err != nil || got != nil {
		t.Fatalf("missing: want nil,nil got=%v,%v", got, err)
	}
	userID := uuid.New()
	if err := repo.Upsert(dbc, &types.UserPreference{UserID: userID, Language: "es", Theme: domainuser.ThemeDark}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(dbc, &types.UserPreference{UserID: userID, Language: "fr", Theme: domainuser.ThemeDark}); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	got, err = repo.GetByUserID(dbc, userID)
	if err != nil || got == nil || got.Language != "fr" {
		t.Fatalf("preference: got=%+v err=%v", got, err)
	}
}
