package entities

import "time"

// WizardStep names one screen of the quote wizard
type WizardStep string

const (
	StepServiceSelection WizardStep = "service-selection"
	StepBudgetSelection  WizardStep = "budget-selection"
	StepProjectDetails   WizardStep = "project-details"
	StepConfirmation     WizardStep = "confirmation"
)

// WizardSteps is the fixed step order
var WizardSteps = []WizardStep{
	StepServiceSelection,
	StepBudgetSelection,
	StepProjectDetails,
	StepConfirmation,
}

// Index returns the position of s in WizardSteps, or -1
func (s WizardStep) Index() int {
	for i, step := range WizardSteps {
		if step == s {
			return i
		}
	}
	return -1
}

// QuoteDraft is the in-progress state of a quote wizard session
type QuoteDraft struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"user_id,omitempty"`
	StepIndex          int            `json:"step_index"`
	Step               WizardStep     `json:"step"`
	ServiceCategory    string         `json:"service_category,omitempty"`
	ServiceType        string         `json:"service_type,omitempty"`
	Budget             string         `json:"budget,omitempty"`
	BudgetCustom       bool           `json:"budget_custom"`
	Name               string         `json:"name,omitempty"`
	Email              string         `json:"email,omitempty"`
	Phone              string         `json:"phone,omitempty"`
	Company            string         `json:"company,omitempty"`
	Timeline           string         `json:"timeline,omitempty"`
	ProjectDescription string         `json:"project_description,omitempty"`
	Goals              string         `json:"goals,omitempty"`
	TargetAudience     string         `json:"target_audience,omitempty"`
	Features           []string       `json:"features,omitempty"`
	Ratings            map[string]int `json:"ratings,omitempty"`
	Terms              bool           `json:"terms"`
	QuoteID            string         `json:"quote_id,omitempty"`
	QuoteReference     string         `json:"quote_reference,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// Submitted reports whether the draft already produced a quote
func (d *QuoteDraft) Submitted() bool {
	return d.QuoteID != ""
}

// SetStepIndex moves the draft to step i
func (d *QuoteDraft) SetStepIndex(i int) {
	d.StepIndex = i
	d.Step = WizardSteps[i]
}

// ToQuoteRequest copies the collected answers into a new quote request
func (d *QuoteDraft) ToQuoteRequest() *QuoteRequest {
	q := &QuoteRequest{
		UserID:             d.UserID,
		Name:               d.Name,
		Email:              d.Email,
		Phone:              d.Phone,
		Company:            d.Company,
		ServiceCategory:    d.ServiceCategory,
		ServiceType:        d.ServiceType,
		Budget:             d.Budget,
		BudgetCustom:       d.BudgetCustom,
		Timeline:           d.Timeline,
		ProjectDescription: d.ProjectDescription,
		Goals:              d.Goals,
		TargetAudience:     d.TargetAudience,
		Features:           append([]string(nil), d.Features...),
		Terms:              d.Terms,
	}
	if d.Ratings != nil {
		q.Ratings = make(map[string]int, len(d.Ratings))
		for k, v := range d.Ratings {
			q.Ratings[k] = v
		}
	}
	return q
}

// DraftFields is a partial update of one wizard step. Nil fields are left alone.
type DraftFields struct {
	ServiceCategory    *string        `json:"service_category,omitempty"`
	ServiceType        *string        `json:"service_type,omitempty"`
	Budget             *string        `json:"budget,omitempty"`
	Name               *string        `json:"name,omitempty"`
	Email              *string        `json:"email,omitempty"`
	Phone              *string        `json:"phone,omitempty"`
	Company            *string        `json:"company,omitempty"`
	Timeline           *string        `json:"timeline,omitempty"`
	ProjectDescription *string        `json:"project_description,omitempty"`
	Goals              *string        `json:"goals,omitempty"`
	TargetAudience     *string        `json:"target_audience,omitempty"`
	Features           []string       `json:"features,omitempty"`
	Ratings            map[string]int `json:"ratings,omitempty"`
	Terms              *bool          `json:"terms,omitempty"`
}
