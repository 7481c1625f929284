package entities

// DashboardSummary is the admin overview of the pipeline
type DashboardSummary struct {
	QuotesByStatus   map[QuoteStatus]int   `json:"quotes_by_status"`
	RecentQuotes     []*QuoteRequest       `json:"recent_quotes"`
	ProjectsByStatus map[ProjectStatus]int `json:"projects_by_status"`
	Payments         PaymentTotals         `json:"payments"`
}

// PaymentTotals aggregates settled payments per currency
type PaymentTotals struct {
	SettledCount  int                `json:"settled_count"`
	SettledAmount map[string]float64 `json:"settled_amount"`
	PendingCount  int                `json:"pending_count"`
}
