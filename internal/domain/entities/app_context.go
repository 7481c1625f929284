package entities

import "context"

// AppContext is the per-request caller identity. It replaces process-wide
// auth state and travels in the request context.
type AppContext struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
	TokenID string `json:"-"`
}

// Authenticated reports whether the caller presented a valid token
func (a AppContext) Authenticated() bool {
	return a.UserID != ""
}

type appContextKey struct{}

// WithAppContext returns a copy of ctx carrying app
func WithAppContext(ctx context.Context, app AppContext) context.Context {
	return context.WithValue(ctx, appContextKey{}, app)
}

// AppContextFrom returns the caller identity stored in ctx. The zero value
// means an anonymous caller.
func AppContextFrom(ctx context.Context) AppContext {
	app, _ := ctx.Value(appContextKey{}).(AppContext)
	return app
}
