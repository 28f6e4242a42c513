package billing

import (
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

var ErrNotConfigured = errors.New("payment gateway not configured")

type Customer struct {
	FirstName string
	LastName  string
	Email     string
}

type CheckoutRequest struct {
	OrderID     string
	AmountIDR   int64
	ItemID      string
	ItemName    string
	Customer    Customer
	FinishURL   string
	ExpiryHours int
}

type CheckoutResult struct {
	OrderID     string `json:"order_id"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// Gateway creates hosted checkout sessions.
type Gateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
	ServerKey() string
}

type midtransGateway struct {
	log       *logger.Logger
	serverKey string
	snap      snap.Client
}

// NewMidtransGateway returns a Snap-backed gateway. env is "production" or anything
// else for sandbox.
func NewMidtransGateway(log *logger.Logger, serverKey, env string) (Gateway, error) {
	serverKey = strings.TrimSpace(serverKey)
	if serverKey == "" {
		return nil, ErrNotConfigured
	}
	g := &midtransGateway{log: log.With("service", "MidtransGateway"), serverKey: serverKey}
	if strings.EqualFold(strings.TrimSpace(env), "production") {
		g.snap.New(serverKey, midtrans.Production)
	} else {
		g.snap.New(serverKey, midtrans.Sandbox)
	}
	return g, nil
}

func (g *midtransGateway) ServerKey() string { return g.serverKey }

func (g *midtransGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("order id required")
	}
	if req.AmountIDR <= 0 {
		return nil, fmt.Errorf("invalid amount %d", req.AmountIDR)
	}
	sr := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.AmountIDR,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.Customer.FirstName,
			LName: req.Customer.LastName,
			Email: req.Customer.Email,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:    req.ItemID,
			Price: req.AmountIDR,
			Qty:   1,
			Name:  req.ItemName,
		}},
		CreditCard: &snap.CreditCardDetails{Secure: true},
	}
	if req.FinishURL != "" {
		sr.Callbacks = &snap.Callbacks{Finish: req.FinishURL}
	}
	if req.ExpiryHours > 0 {
		sr.Expiry = &snap.ExpiryDetails{Unit: "hour", Duration: int64(req.ExpiryHours)}
	}

	type result struct {
		resp *snap.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, mErr := g.snap.CreateTransaction(sr)
		if mErr != nil {
			done <- result{err: mErr}
			return
		}
		done <- result{resp: resp}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			g.log.Warn("snap transaction failed", "order_id", req.OrderID, "error", r.err)
			return nil, fmt.Errorf("create snap transaction: %w", r.err)
		}
		return &CheckoutResult{OrderID: req.OrderID, Token: r.resp.Token, RedirectURL: r.resp.RedirectURL}, nil
	}
}

// Notification is the subset of the Midtrans HTTP notification we act on.
type Notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	TransactionID     string `json:"transaction_id"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
}

// Signature is SHA512(order_id + status_code + gross_amount + server_key), hex encoded.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func VerifySignature(n Notification, serverKey string) bool {
	want := strings.ToLower(strings.TrimSpace(n.SignatureKey))
	if want == "" || serverKey == "" {
		return false
	}
	got := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

type Outcome string

const (
	OutcomePaid    Outcome = "paid"
	OutcomePending Outcome = "pending"
	OutcomeFailed  Outcome = "failed"
	OutcomeIgnored Outcome = "ignored"
)

// Classify maps a transaction status to what the plan should do.
func Classify(n Notification) Outcome {
	switch strings.ToLower(n.TransactionStatus) {
	case "settlement":
		return OutcomePaid
	case "capture":
		if strings.EqualFold(n.FraudStatus, "challenge") {
			return OutcomePending
		}
		return OutcomePaid
	case "pending":
		return OutcomePending
	case "deny", "cancel", "expire", "failure":
		return OutcomeFailed
	default:
		return OutcomeIgnored
	}
}
