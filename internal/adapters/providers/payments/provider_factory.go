package payments

import (
	"fmt"

	"github.com/zatekoja/agencysite/backend/internal/domain/providers"
	"github.com/zatekoja/agencysite/backend/pkg/config"
)

// NewPaymentGateway returns the gateway selected by PAYMENT_PROVIDER
func NewPaymentGateway(cfg config.PaymentsConfig) (providers.PaymentGateway, error) {
	switch cfg.Provider {
	case ProviderPaystack:
		return NewPaystackAdapter(cfg), nil
	case ProviderMock, "":
		return NewMockAdapter(cfg.PublicKey, cfg.SecretKey), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
	}
}
