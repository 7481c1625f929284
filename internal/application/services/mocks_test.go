package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
)

// Mocks

type MockQuoteRepository struct {
	mock.Mock
	drawn int64
}

// NextReferenceNumber counts up from 100 unless the test set an expectation
func (m *MockQuoteRepository) NextReferenceNumber(ctx context.Context) (int64, error) {
	for _, call := range m.ExpectedCalls {
		if call.Method == "NextReferenceNumber" {
			args := m.Called(ctx)
			return args.Get(0).(int64), args.Error(1)
		}
	}
	m.drawn++
	return 99 + m.drawn, nil
}

func (m *MockQuoteRepository) Create(ctx context.Context, quote *entities.QuoteRequest) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) GetByID(ctx context.Context, id string) (*entities.QuoteRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.QuoteRequest), args.Error(1)
}

func (m *MockQuoteRepository) GetByReference(ctx context.Context, reference string) (*entities.QuoteRequest, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.QuoteRequest), args.Error(1)
}

func (m *MockQuoteRepository) ListByUser(ctx context.Context, userID string) ([]*entities.QuoteRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.QuoteRequest), args.Error(1)
}

func (m *MockQuoteRepository) List(ctx context.Context, filter repositories.QuoteFilter) ([]*entities.QuoteRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.QuoteRequest), args.Error(1)
}

func (m *MockQuoteRepository) Update(ctx context.Context, quote *entities.QuoteRequest) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) CountByStatus(ctx context.Context) (map[entities.QuoteStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entities.QuoteStatus]int), args.Error(1)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *entities.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id string) (*entities.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Project), args.Error(1)
}

func (m *MockProjectRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Project), args.Error(1)
}

func (m *MockProjectRepository) Update(ctx context.Context, project *entities.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) CountByStatus(ctx context.Context) (map[entities.ProjectStatus]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entities.ProjectStatus]int), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *entities.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByReference(ctx context.Context, reference string) (*entities.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetOpenByQuote(ctx context.Context, quoteID string) (*entities.Payment, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Payment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateStatus(ctx context.Context, payment *entities.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Settle(ctx context.Context, payment *entities.Payment) (bool, error) {
	args := m.Called(ctx, payment)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) Totals(ctx context.Context) (entities.PaymentTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.PaymentTotals), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) Create(ctx context.Context, message *entities.ContactMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) Record(ctx context.Context, provider, eventID, eventType string, payload []byte) (bool, error) {
	args := m.Called(ctx, provider, eventID, eventType, payload)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, provider, eventID string) error {
	args := m.Called(ctx, provider, eventID)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) MarkFailed(ctx context.Context, provider, eventID string, cause error) error {
	args := m.Called(ctx, provider, eventID, cause)
	return args.Error(0)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Name() string { return "mock" }

func (m *MockPaymentGateway) PublicKey() string { return "pk_test_mock" }

func (m *MockPaymentGateway) Initialize(ctx context.Context, req providers.ChargeRequest) (*providers.ChargeSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.ChargeSession), args.Error(1)
}

func (m *MockPaymentGateway) Verify(ctx context.Context, reference string) (*providers.ChargeResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*providers.ChargeResult), args.Error(1)
}

func (m *MockPaymentGateway) VerifySignature(body []byte, signature string) bool {
	args := m.Called(body, signature)
	return args.Bool(0)
}
