package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	"github.com/yungbote/studyhub-backend/internal/domain/user"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type PlanView struct {
	Plan             string     `json:"plan"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	Limits           PlanLimits `json:"limits"`
}

type PlanService interface {
	Current(dbc dbctx.Context, userID uuid.UUID) (*PlanView, error)
	Limits(dbc dbctx.Context, userID uuid.UUID) (PlanLimits, error)
}

type planService struct {
	log     *logger.Logger
	catalog *PlanCatalog
	plans   repos.UserPlanRepo
	now     func() time.Time
}

func NewPlanService(baseLog *logger.Logger, catalog *PlanCatalog, plans repos.UserPlanRepo) PlanService {
	return &planService{
		log:     baseLog.With("service", "PlanService"),
		catalog: catalog,
		plans:   plans,
		now:     time.Now,
	}
}

func (s *planService) Current(dbc dbctx.Context, userID uuid.UUID) (*PlanView, error) {
	row, err := s.plans.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	effective := row.EffectivePlan(s.now())
	view := &PlanView{Plan: effective, Status: user.PlanStatusActive, Limits: s.catalog.Get(effective)}
	if row != nil {
		view.Status = row.Status
		if effective == user.PlanPremium {
			view.CurrentPeriodEnd = row.CurrentPeriodEnd
		}
	}
	return view, nil
}

func (s *planService) Limits(dbc dbctx.Context, userID uuid.UUID) (PlanLimits, error) {
	view, err := s.Current(dbc, userID)
	if err != nil {
		return PlanLimits{}, err
	}
	return view.Limits, nil
}
