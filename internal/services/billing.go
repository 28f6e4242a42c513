package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/domain/user"
	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
	"github.com/yungbote/studyhub-backend/internal/platform/billing"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/realtime"
)

const (
	premiumOrderPrefix = "PREM-"
	checkoutExpiry     = 24 * time.Hour
)

type CheckoutInput struct {
	Email     string `json:"email" validate:"omitempty,email"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	FinishURL string `json:"finish_url" validate:"omitempty,url"`
}

type BillingService interface {
	// Checkout starts a premium purchase and leaves the plan pending until the
	// gateway confirms it.
	Checkout(dbc dbctx.Context, userID uuid.UUID, in CheckoutInput) (*billing.CheckoutResult, error)
	// HandleNotification applies a signed gateway notification. Replays are no-ops.
	HandleNotification(dbc dbctx.Context, n billing.Notification) error
}

type billingService struct {
	log      *logger.Logger
	gateway  billing.Gateway
	catalog  *PlanCatalog
	plans    repos.UserPlanRepo
	orders   repos.PlanOrderRepo
	notifier *realtime.Notifier
	now      func() time.Time
}

// NewBillingService accepts a nil gateway; every call then fails with 503.
func NewBillingService(
	baseLog *logger.Logger,
	gateway billing.Gateway,
	catalog *PlanCatalog,
	plans repos.UserPlanRepo,
	orders repos.PlanOrderRepo,
	notifier *realtime.Notifier,
) BillingService {
	return &billingService{
		log:      baseLog.With("service", "BillingService"),
		gateway:  gateway,
		catalog:  catalog,
		plans:    plans,
		orders:   orders,
		notifier: notifier,
		now:      time.Now,
	}
}

var errBillingDisabled = apierr.New(http.StatusServiceUnavailable, "billing_unavailable", billing.ErrNotConfigured)

func (s *billingService) Checkout(dbc dbctx.Context, userID uuid.UUID, in CheckoutInput) (*billing.CheckoutResult, error) {
	if s.gateway == nil {
		return nil, errBillingDisabled
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	current, err := s.plans.GetByUserID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if current.EffectivePlan(s.now()) == user.PlanPremium {
		return nil, apierr.Conflict("already_premium", errors.New("premium plan is already active"))
	}

	premium := s.catalog.Get(user.PlanPremium)
	orderID := premiumOrderPrefix + uuid.NewString()
	res, err := s.gateway.CreateCheckout(dbc.Ctx, billing.CheckoutRequest{
		OrderID:   orderID,
		AmountIDR: premium.PriceIDR,
		ItemID:    user.PlanPremium,
		ItemName:  fmt.Sprintf("Premium (%d days)", premium.PeriodDays),
		Customer: billing.Customer{
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			Email:     strings.TrimSpace(in.Email),
		},
		FinishURL:   in.FinishURL,
		ExpiryHours: int(checkoutExpiry / time.Hour),
	})
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, "checkout_failed", err)
	}

	order := &types.PlanOrder{
		OrderID:   orderID,
		UserID:    userID,
		Plan:      user.PlanPremium,
		AmountIDR: premium.PriceIDR,
		Status:    user.OrderStatusPending,
		ExpiresAt: s.now().UTC().Add(checkoutExpiry),
	}
	if err := s.orders.Create(dbc, order); err != nil {
		return nil, fmt.Errorf("record order: %w", err)
	}
	if err := s.plans.MarkPending(dbc, userID, user.PlanPremium, orderID); err != nil {
		return nil, fmt.Errorf("record pending plan: %w", err)
	}
	s.log.Info("checkout created", "user_id", userID, "order_id", orderID)
	return res, nil
}

func (s *billingService) HandleNotification(dbc dbctx.Context, n billing.Notification) error {
	if s.gateway == nil {
		return errBillingDisabled
	}
	if !billing.VerifySignature(n, s.gateway.ServerKey()) {
		return apierr.Forbidden("invalid_signature", errors.New("notification signature mismatch"))
	}
	if !strings.HasPrefix(n.OrderID, premiumOrderPrefix) {
		s.log.Info("ignoring notification for unknown order kind", "order_id", n.OrderID)
		return nil
	}
	order, err := s.orders.GetByOrderID(dbc, n.OrderID)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	if order == nil {
		return apierr.NotFound("not_found", fmt.Errorf("order %s not found", n.OrderID))
	}
	if order.Status == user.OrderStatusPaid {
		return nil
	}
	row, err := s.plans.GetByUserID(dbc, order.UserID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if row == nil {
		row = &types.UserPlan{UserID: order.UserID, Plan: user.PlanFree, Status: user.PlanStatusActive}
	}
	// the plan row follows only the user's latest checkout unless an order is paid
	latest := row.OrderID == order.OrderID

	now := s.now().UTC()
	outcome := billing.Classify(n)
	orderStatus := order.Status
	var paidAt *time.Time
	switch outcome {
	case billing.OutcomePaid:
		start := now
		if row.EffectivePlan(now) == user.PlanPremium && row.CurrentPeriodEnd != nil {
			start = *row.CurrentPeriodEnd
		}
		end := start.AddDate(0, 0, s.catalog.Get(order.Plan).PeriodDays)
		row.Plan = order.Plan
		row.Status = user.PlanStatusActive
		row.OrderID = order.OrderID
		row.CurrentPeriodEnd = &end
		orderStatus = user.OrderStatusPaid
		paidAt = &now
	case billing.OutcomePending:
		orderStatus = user.OrderStatusPending
		if !latest || row.Status == user.PlanStatusActive {
			row = nil
		}
	case billing.OutcomeFailed:
		orderStatus = user.OrderStatusFailed
		if !latest || row.Status == user.PlanStatusActive {
			row = nil
		} else {
			row.Status = user.PlanStatusFailed
		}
	default:
		s.log.Debug("ignoring notification", "order_id", n.OrderID, "status", n.TransactionStatus)
		return nil
	}

	if row != nil {
		if err := s.plans.Upsert(dbc, row); err != nil {
			return fmt.Errorf("update plan: %w", err)
		}
	}
	if err := s.orders.SetStatus(dbc, order.OrderID, orderStatus, paidAt); err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if row == nil {
		s.log.Info("order updated", "user_id", order.UserID, "order_id", n.OrderID, "outcome", string(outcome))
		return nil
	}
	s.log.Info("plan updated from notification", "user_id", row.UserID, "order_id", n.OrderID, "outcome", string(outcome))
	s.notifier.Notify(realtime.SSEMessage{
		Channel: realtime.UserChannel(row.UserID.String()),
		Event:   realtime.SSEEventPlanChanged,
		Data:    map[string]any{"plan": row.EffectivePlan(s.now()), "status": row.Status},
	})
	return nil
}
