package user

import (
	"testing"
	"time"
)

func TestEffectivePlan(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Hour)
	cases := []struct {
		name string
		plan *UserPlan
		want string
	}{
		{"no row", nil, PlanFree},
		{"pending checkout", &UserPlan{Plan: PlanPremium, Status: PlanStatusPending}, PlanFree},
		{"active", &UserPlan{Plan: PlanPremium, Status: PlanStatusActive, CurrentPeriodEnd: &future}, PlanPremium},
		{"lapsed", &UserPlan{Plan: PlanPremium, Status: PlanStatusActive, CurrentPeriodEnd: &past}, PlanFree},
	}
	for _, tc := range cases {
		if got := tc.plan.EffectivePlan(now); got != tc.want {
			t.Fatalf("%s: want=%s got=%s", tc.name, tc.want, got)
		}
	}
}
