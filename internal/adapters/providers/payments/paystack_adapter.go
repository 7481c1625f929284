package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/pkg/config"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
	"github.com/zatekoja/agencysite/backend/pkg/retry"
)

// ProviderPaystack is the identifier of the Paystack gateway
const ProviderPaystack = "paystack"

// PaystackAdapter implements PaymentGateway against the Paystack REST API
type PaystackAdapter struct {
	client    *resty.Client
	publicKey string
	secretKey string
	retryCfg  retry.Config
}

var _ providers.PaymentGateway = (*PaystackAdapter)(nil)

// NewPaystackAdapter creates a new Paystack adapter
func NewPaystackAdapter(cfg config.PaymentsConfig) *PaystackAdapter {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.SecretKey).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	return &PaystackAdapter{
		client:    client,
		publicKey: cfg.PublicKey,
		secretKey: cfg.SecretKey,
		retryCfg:  retry.GatewayConfig(),
	}
}

type paystackError struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

type initializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency,omitempty"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID        int64      `json:"id"`
		Status    string     `json:"status"`
		Reference string     `json:"reference"`
		Amount    int64      `json:"amount"`
		Currency  string     `json:"currency"`
		Channel   string     `json:"channel"`
		PaidAt    *time.Time `json:"paid_at"`
	} `json:"data"`
}

// Name returns the provider identifier
func (a *PaystackAdapter) Name() string {
	return ProviderPaystack
}

// PublicKey returns the key the inline widget is opened with
func (a *PaystackAdapter) PublicKey() string {
	return a.publicKey
}

// Initialize opens a transaction
func (a *PaystackAdapter) Initialize(ctx context.Context, req providers.ChargeRequest) (*providers.ChargeSession, error) {
	var out initializeResponse
	var failure paystackError

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(initializeRequest{
			Email:       req.Email,
			Amount:      req.AmountMinor,
			Currency:    req.Currency,
			Reference:   req.Reference,
			CallbackURL: req.CallbackURL,
			Metadata:    req.Metadata,
		}).
		SetResult(&out).
		SetError(&failure).
		Post("/transaction/initialize")
	if err != nil {
		return nil, apperrors.NewExternalError("payment gateway unreachable", err)
	}
	if resp.IsError() {
		return nil, apperrors.NewExternalError("payment gateway rejected the charge",
			fmt.Errorf("paystack initialize: status %d: %s", resp.StatusCode(), failure.Message))
	}
	if !out.Status {
		return nil, apperrors.NewExternalError("payment gateway rejected the charge",
			fmt.Errorf("paystack initialize: %s", out.Message))
	}

	return &providers.ChargeSession{
		Reference:        out.Data.Reference,
		AuthorizationURL: out.Data.AuthorizationURL,
		AccessCode:       out.Data.AccessCode,
	}, nil
}

// Verify fetches the transaction state. 5xx answers and transport errors
// are retried; 4xx answers are returned at once.
func (a *PaystackAdapter) Verify(ctx context.Context, reference string) (*providers.ChargeResult, error) {
	var out verifyResponse

	err := retry.DoWithLog(ctx, a.retryCfg, "Paystack", func() error {
		var failure paystackError
		resp, err := a.client.R().
			SetContext(ctx).
			SetResult(&out).
			SetError(&failure).
			Get("/transaction/verify/" + url.PathEscape(reference))
		if err != nil {
			return err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return fmt.Errorf("paystack verify: status %d", resp.StatusCode())
		}
		if resp.IsError() {
			return retry.Permanent(fmt.Errorf("paystack verify: status %d: %s", resp.StatusCode(), failure.Message))
		}
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Str("reference", reference).Dur("retry_in", nextDelay).Msg("payment verification failed, retrying")
	})
	if err != nil {
		return nil, apperrors.NewExternalError("payment verification failed", err)
	}
	if !out.Status {
		return nil, apperrors.NewExternalError("payment verification failed", fmt.Errorf("paystack verify: %s", out.Message))
	}

	return &providers.ChargeResult{
		Reference:        out.Data.Reference,
		GatewayReference: fmt.Sprintf("%d", out.Data.ID),
		Status:           mapPaystackStatus(out.Data.Status),
		AmountMinor:      out.Data.Amount,
		Currency:         out.Data.Currency,
		Channel:          out.Data.Channel,
		PaidAt:           out.Data.PaidAt,
	}, nil
}

// VerifySignature checks the X-Paystack-Signature header, an HMAC-SHA512 of
// the raw body keyed with the secret key.
func (a *PaystackAdapter) VerifySignature(body []byte, signature string) bool {
	return verifyHMAC(a.secretKey, body, signature)
}

func mapPaystackStatus(status string) string {
	switch status {
	case "success":
		return providers.ChargeStatusSuccess
	case "failed", "reversed":
		return providers.ChargeStatusFailed
	case "abandoned":
		return providers.ChargeStatusAbandoned
	default:
		return providers.ChargeStatusPending
	}
}

// Sign returns the hex HMAC-SHA512 of body keyed with secret
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func verifyHMAC(secret string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(Sign(secret, body)))
}
