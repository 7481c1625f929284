package providers

import (
	"context"
	"time"
)

// Charge statuses reported by a gateway
const (
	ChargeStatusSuccess   = "success"
	ChargeStatusFailed    = "failed"
	ChargeStatusAbandoned = "abandoned"
	ChargeStatusPending   = "pending"
)

// ChargeRequest describes a charge to open on the gateway
type ChargeRequest struct {
	Reference   string
	Email       string
	AmountMinor int64
	Currency    string
	CallbackURL string
	Metadata    map[string]string
}

// ChargeSession is what the gateway returns for a newly opened charge
type ChargeSession struct {
	Reference        string
	AuthorizationURL string
	AccessCode       string
}

// ChargeResult is the gateway's view of a charge
type ChargeResult struct {
	Reference        string
	GatewayReference string
	Status           string
	AmountMinor      int64
	Currency         string
	Channel          string
	PaidAt           *time.Time
}

// PaymentGateway defines the interface for external payment processors
// (Paystack, or a mock in development).
type PaymentGateway interface {
	// Name returns the provider identifier
	Name() string

	// PublicKey returns the key the browser widget is opened with
	PublicKey() string

	// Initialize opens a charge
	Initialize(ctx context.Context, req ChargeRequest) (*ChargeSession, error)

	// Verify asks the gateway for the current state of a charge
	Verify(ctx context.Context, reference string) (*ChargeResult, error)

	// VerifySignature checks a webhook body against its signature header
	VerifySignature(body []byte, signature string) bool
}
