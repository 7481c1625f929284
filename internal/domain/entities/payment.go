package entities

import "time"

// PaymentStatus represents the state of a checkout attempt
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Final reports whether no further transition is possible. A cancelled
// payment is not final: the visitor may have completed the charge before
// closing the widget, and the gateway outcome still settles it.
func (s PaymentStatus) Final() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// Payment is one checkout attempt through the payment gateway
type Payment struct {
	ID               string        `json:"id" db:"id"`
	UserID           string        `json:"user_id" db:"user_id"`
	QuoteID          *string       `json:"quote_id,omitempty" db:"quote_id"`
	Reference        string        `json:"reference" db:"reference"`
	Email            string        `json:"email" db:"email"`
	Amount           float64       `json:"amount" db:"amount"`
	AmountMinor      int64         `json:"amount_minor" db:"amount_minor"`
	Currency         string        `json:"currency" db:"currency"`
	Status           PaymentStatus `json:"status" db:"status"`
	GatewayReference string        `json:"gateway_reference,omitempty" db:"gateway_reference"`
	Channel          string        `json:"channel,omitempty" db:"channel"`
	PaidAt           *time.Time    `json:"paid_at,omitempty" db:"paid_at"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// Checkout is what the payment widget needs to open a charge
type Checkout struct {
	Payment          *Payment `json:"payment"`
	PublicKey        string   `json:"public_key"`
	Reference        string   `json:"reference"`
	AmountMinor      int64    `json:"amount_minor"`
	Currency         string   `json:"currency"`
	Email            string   `json:"email"`
	AuthorizationURL string   `json:"authorization_url,omitempty"`
	AccessCode       string   `json:"access_code,omitempty"`
}
