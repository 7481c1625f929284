package routes

import (
	"net/http"

	"github.com/zatekoja/agencysite/backend/internal/api/handlers"
	"github.com/zatekoja/agencysite/backend/internal/api/middleware"
	"github.com/zatekoja/agencysite/backend/internal/infrastructure/observability"
	"github.com/zatekoja/agencysite/backend/pkg/config"
)

// Handlers groups every route handler of the API
type Handlers struct {
	Health      *handlers.HealthHandler
	Catalog     *handlers.CatalogHandler
	Pricing     *handlers.PricingHandler
	QuoteDrafts *handlers.QuoteDraftHandler
	Quotes      *handlers.QuoteHandler
	Projects    *handlers.ProjectHandler
	Payments    *handlers.PaymentHandler
	Auth        *handlers.AuthHandler
	Preferences *handlers.PreferenceHandler
	Dashboard   *handlers.DashboardHandler
	Contact     *handlers.ContactHandler
}

// Router holds all route handlers
type Router struct {
	mux      *http.ServeMux
	handlers Handlers
	auth     *middleware.Auth
	cors     config.CORSConfig
	metrics  *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(h Handlers, auth *middleware.Auth, cors config.CORSConfig, metrics *observability.Metrics) *Router {
	return &Router{
		mux:      http.NewServeMux(),
		handlers: h,
		auth:     auth,
		cors:     cors,
		metrics:  metrics,
	}
}

func (r *Router) public(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, h)
}

func (r *Router) optional(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, r.auth.OptionalAuth(h))
}

func (r *Router) private(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, r.auth.RequireAuth(h))
}

func (r *Router) admin(pattern string, h http.HandlerFunc) {
	r.mux.Handle(pattern, r.auth.RequireAdmin(h))
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	h := r.handlers

	r.public("GET /health", h.Health.Health)

	// Catalog and pricing
	r.public("GET /api/services", h.Catalog.ListServices)
	r.public("GET /api/services/lookup", h.Catalog.LookupService)
	r.public("GET /api/services/{id}", h.Catalog.GetService)
	r.public("GET /api/pricing", h.Pricing.GetPricing)
	r.public("GET /api/pricing/range", h.Pricing.GetRange)

	// Quote wizard
	r.optional("POST /api/quote-drafts", h.QuoteDrafts.StartDraft)
	r.optional("GET /api/quote-drafts/{id}", h.QuoteDrafts.GetDraft)
	r.optional("PATCH /api/quote-drafts/{id}", h.QuoteDrafts.UpdateDraft)
	r.optional("POST /api/quote-drafts/{id}/next", h.QuoteDrafts.NextStep)
	r.optional("POST /api/quote-drafts/{id}/back", h.QuoteDrafts.PreviousStep)
	r.optional("POST /api/quote-drafts/{id}/submit", h.QuoteDrafts.SubmitDraft)

	// Quotes
	r.optional("POST /api/quotes", h.Quotes.SubmitQuote)
	r.private("GET /api/quotes", h.Quotes.ListQuotes)
	r.private("GET /api/quotes/{id}", h.Quotes.GetQuote)
	r.private("PATCH /api/quotes/{id}", h.Quotes.UpdateQuote)
	r.admin("PATCH /api/admin/quotes/{id}/status", h.Quotes.UpdateQuoteStatus)
	r.admin("GET /api/admin/quotes/reference/{reference}", h.Quotes.GetQuoteByReference)

	// Projects
	r.private("GET /api/projects", h.Projects.ListProjects)
	r.private("POST /api/projects", h.Projects.CreateProject)
	r.private("GET /api/projects/{id}", h.Projects.GetProject)
	r.private("PATCH /api/projects/{id}", h.Projects.UpdateProject)

	// Payments
	r.private("POST /api/payments/checkout", h.Payments.Checkout)
	r.private("GET /api/payments", h.Payments.ListPayments)
	r.private("GET /api/payments/{reference}", h.Payments.GetPayment)
	r.private("POST /api/payments/{reference}/verify", h.Payments.VerifyPayment)
	r.private("POST /api/payments/{reference}/cancel", h.Payments.CancelPayment)
	r.public("POST /webhooks/payments", h.Payments.HandleWebhook)

	// Auth
	r.public("POST /api/auth/signup", h.Auth.SignUp)
	r.public("POST /api/auth/signin", h.Auth.SignIn)
	r.private("POST /api/auth/signout", h.Auth.SignOut)
	r.private("GET /api/auth/me", h.Auth.Me)

	// Preferences
	r.optional("GET /api/preferences", h.Preferences.GetPreferences)
	r.optional("PUT /api/preferences", h.Preferences.UpdatePreferences)
	r.optional("POST /api/preferences/theme/toggle", h.Preferences.ToggleTheme)

	r.admin("GET /api/admin/dashboard", h.Dashboard.GetDashboard)
	r.public("POST /api/contact", h.Contact.SubmitContact)

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so preflights never reach the mux.
	var handler http.Handler = r.mux
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(r.cors)(handler)

	return handler
}
