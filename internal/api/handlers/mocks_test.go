package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/agencysite/backend/internal/application/services"
	"github.com/zatekoja/agencysite/backend/internal/domain/entities"
	"github.com/zatekoja/agencysite/backend/internal/domain/repositories"
)

type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) Create(ctx context.Context, q *entities.QuoteRequest) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuoteService) ListByUser(ctx context.Context, userID string) ([]*entities.QuoteRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.QuoteRequest), args.Error(1)
}

func (m *MockQuoteService) List(ctx context.Context, filter repositories.QuoteFilter) ([]*entities.QuoteRequest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.QuoteRequest), args.Error(1)
}

func (m *MockQuoteService) Get(ctx context.Context, id string) (*entities.QuoteRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.QuoteRequest), args.Error(1)
}

func (m *MockQuoteService) GetByReference(ctx context.Context, reference string) (*entities.QuoteRequest, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.QuoteRequest), args.Error(1)
}

func (m *MockQuoteService) Update(ctx context.Context, id string, patch entities.QuotePatch) (*entities.QuoteRequest, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.QuoteRequest), args.Error(1)
}

func (m *MockQuoteService) UpdateStatus(ctx context.Context, id string, status entities.QuoteStatus) (*entities.QuoteRequest, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.QuoteRequest), args.Error(1)
}

type MockQuoteWizard struct {
	mock.Mock
}

func (m *MockQuoteWizard) draft(args mock.Arguments) (*entities.QuoteDraft, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.QuoteDraft), args.Error(1)
}

func (m *MockQuoteWizard) Start(ctx context.Context, prefill services.WizardPrefill) (*entities.QuoteDraft, error) {
	return m.draft(m.Called(ctx, prefill))
}

func (m *MockQuoteWizard) Get(ctx context.Context, id string) (*entities.QuoteDraft, error) {
	return m.draft(m.Called(ctx, id))
}

func (m *MockQuoteWizard) Update(ctx context.Context, id string, step entities.WizardStep, fields entities.DraftFields) (*entities.QuoteDraft, error) {
	return m.draft(m.Called(ctx, id, step, fields))
}

func (m *MockQuoteWizard) Next(ctx context.Context, id string) (*entities.QuoteDraft, error) {
	return m.draft(m.Called(ctx, id))
}

func (m *MockQuoteWizard) Back(ctx context.Context, id string) (*entities.QuoteDraft, error) {
	return m.draft(m.Called(ctx, id))
}

func (m *MockQuoteWizard) Submit(ctx context.Context, id string) (*entities.QuoteDraft, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.QuoteDraft), args.Bool(1), args.Error(2)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) payment(args mock.Arguments) (*entities.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *MockPaymentService) Checkout(ctx context.Context, req services.CheckoutRequest) (*entities.Checkout, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Checkout), args.Error(1)
}

func (m *MockPaymentService) Verify(ctx context.Context, reference string) (*entities.Payment, error) {
	return m.payment(m.Called(ctx, reference))
}

func (m *MockPaymentService) Cancel(ctx context.Context, reference string) (*entities.Payment, error) {
	return m.payment(m.Called(ctx, reference))
}

func (m *MockPaymentService) Get(ctx context.Context, reference string) (*entities.Payment, error) {
	return m.payment(m.Called(ctx, reference))
}

func (m *MockPaymentService) ListByUser(ctx context.Context, userID string) ([]*entities.Payment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Payment), args.Error(1)
}

func (m *MockPaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	args := m.Called(ctx, body, signature)
	return args.Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, email, password, name string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) SignIn(ctx context.Context, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) SignOut(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) CurrentUser(ctx context.Context) (*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Submit(ctx context.Context, msg *entities.ContactMessage) (bool, error) {
	args := m.Called(ctx, msg)
	return args.Bool(0), args.Error(1)
}

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) project(args mock.Arguments) (*entities.Project, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Project), args.Error(1)
}

func (m *MockProjectService) ListByUser(ctx context.Context, userID string) ([]*entities.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, id string) (*entities.Project, error) {
	return m.project(m.Called(ctx, id))
}

func (m *MockProjectService) Create(ctx context.Context, p *entities.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectService) Update(ctx context.Context, id string, patch entities.ProjectPatch) (*entities.Project, error) {
	return m.project(m.Called(ctx, id, patch))
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context) (*entities.DashboardSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DashboardSummary), args.Error(1)
}
