package payments

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	apperrors "github.com/zatekoja/agencysite/backend/pkg/errors"
)

// ProviderMock is the identifier of the development gateway
const ProviderMock = "mock"

// MockAdapter approves every charge it opened. It is used in development
// and tests.
type MockAdapter struct {
	mu        sync.Mutex
	charges   map[string]providers.ChargeRequest
	publicKey string
	secretKey string
}

var _ providers.PaymentGateway = (*MockAdapter)(nil)

// NewMockAdapter creates a mock payment gateway
func NewMockAdapter(publicKey, secretKey string) *MockAdapter {
	if publicKey == "" {
		publicKey = "pk_test_mock"
	}
	if secretKey == "" {
		secretKey = "sk_test_mock"
	}
	return &MockAdapter{
		charges:   make(map[string]providers.ChargeRequest),
		publicKey: publicKey,
		secretKey: secretKey,
	}
}

// Name returns the provider identifier
func (m *MockAdapter) Name() string {
	return ProviderMock
}

// PublicKey returns the mock public key
func (m *MockAdapter) PublicKey() string {
	return m.publicKey
}

// Initialize records the charge
func (m *MockAdapter) Initialize(ctx context.Context, req providers.ChargeRequest) (*providers.ChargeSession, error) {
	m.mu.Lock()
	m.charges[req.Reference] = req
	m.mu.Unlock()

	return &providers.ChargeSession{
		Reference:        req.Reference,
		AuthorizationURL: fmt.Sprintf("https://checkout.mock.local/%s", req.Reference),
		AccessCode:       "mock_" + req.Reference,
	}, nil
}

// Verify reports every known charge as paid in full
func (m *MockAdapter) Verify(ctx context.Context, reference string) (*providers.ChargeResult, error) {
	m.mu.Lock()
	req, ok := m.charges[reference]
	m.mu.Unlock()
	if !ok {
		return nil, apperrors.NewExternalError("payment verification failed", fmt.Errorf("mock gateway: unknown reference %s", reference))
	}

	paidAt := time.Now().UTC()
	return &providers.ChargeResult{
		Reference:        reference,
		GatewayReference: "mock-" + reference,
		Status:           providers.ChargeStatusSuccess,
		AmountMinor:      req.AmountMinor,
		Currency:         req.Currency,
		Channel:          "card",
		PaidAt:           &paidAt,
	}, nil
}

// VerifySignature checks body against the mock secret
func (m *MockAdapter) VerifySignature(body []byte, signature string) bool {
	return verifyHMAC(m.secretKey, body, signature)
}
