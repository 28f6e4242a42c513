package billing

import (
	"testing"

	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

func TestVerifySignature(t *testing.T) {
	n := Notification{OrderID: "PREM-1", StatusCode: "200", GrossAmount: "49000.00"}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, "server-key")

	if !VerifySignature(n, "server-key") {
		t.Fatalf("valid signature rejected")
	}
	if VerifySignature(n, "other-key") {
		t.Fatalf("signature accepted with wrong server key")
	}
	n.GrossAmount = "1.00"
	if VerifySignature(n, "server-key") {
		t.Fatalf("tampered amount accepted")
	}
	if VerifySignature(Notification{OrderID: "x"}, "server-key") {
		t.Fatalf("empty signature accepted")
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]Outcome{
		"settlement": OutcomePaid,
		"capture":    OutcomePaid,
		"pending":    OutcomePending,
		"expire":     OutcomeFailed,
		"refund":     OutcomeIgnored,
	}
	for status, want := range cases {
		if got := Classify(Notification{TransactionStatus: status}); got != want {
			t.Fatalf("%s: want=%s got=%s", status, want, got)
		}
	}
	if got := Classify(Notification{TransactionStatus: "capture", FraudStatus: "challenge"}); got != OutcomePending {
		t.Fatalf("challenged capture: want=%s got=%s", OutcomePending, got)
	}
}

func TestNewMidtransGatewayRequiresKey(t *testing.T) {
	if _, err := NewMidtransGateway(logger.NewNop(), " ", "sandbox"); err != ErrNotConfigured {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}
