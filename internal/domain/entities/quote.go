package entities

import (
	"strings"
	"time"
)

// QuoteStatus represents the lifecycle state of a quote request
type QuoteStatus string

const (
	QuoteStatusPending   QuoteStatus = "pending"
	QuoteStatusInReview  QuoteStatus = "in_review"
	QuoteStatusApproved  QuoteStatus = "approved"
	QuoteStatusRejected  QuoteStatus = "rejected"
	QuoteStatusPaid      QuoteStatus = "paid"
	QuoteStatusCancelled QuoteStatus = "cancelled"
)

var quoteTransitions = map[QuoteStatus][]QuoteStatus{
	QuoteStatusPending:  {QuoteStatusInReview, QuoteStatusRejected, QuoteStatusCancelled},
	QuoteStatusInReview: {QuoteStatusApproved, QuoteStatusRejected},
	QuoteStatusApproved: {QuoteStatusPaid, QuoteStatusCancelled},
}

// Valid reports whether s is a known status
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusInReview, QuoteStatusApproved,
		QuoteStatusRejected, QuoteStatusPaid, QuoteStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a quote in status s may move to next
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	for _, allowed := range quoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Rating criteria collected on the project details step
const (
	RatingDesign  = "design"
	RatingSpeed   = "speed"
	RatingSEO     = "seo"
	RatingSupport = "support"
	RatingPrice   = "price"
)

// RatingCriteria lists the importance ratings the wizard asks for
var RatingCriteria = []string{RatingDesign, RatingSpeed, RatingSEO, RatingSupport, RatingPrice}

// QuoteRequest is a submitted request for a quote
type QuoteRequest struct {
	ID                 string         `json:"id" db:"id"`
	Reference          string         `json:"reference" db:"reference"`
	UserID             string         `json:"user_id" db:"user_id"`
	Name               string         `json:"name" db:"name"`
	Email              string         `json:"email" db:"email"`
	Phone              string         `json:"phone" db:"phone"`
	Company            string         `json:"company,omitempty" db:"company"`
	ServiceCategory    string         `json:"service_category" db:"service_category"`
	ServiceType        string         `json:"service_type,omitempty" db:"service_type"`
	Budget             string         `json:"budget" db:"budget"`
	BudgetCustom       bool           `json:"budget_custom" db:"budget_custom"`
	Timeline           string         `json:"timeline,omitempty" db:"timeline"`
	ProjectDescription string         `json:"project_description" db:"project_description"`
	Goals              string         `json:"goals,omitempty" db:"goals"`
	TargetAudience     string         `json:"target_audience,omitempty" db:"target_audience"`
	Features           []string       `json:"features,omitempty" db:"features"`
	Ratings            map[string]int `json:"ratings,omitempty" db:"ratings"`
	Terms              bool           `json:"terms" db:"terms"`
	Status             QuoteStatus    `json:"status" db:"status"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"`
}

// IsAnonymous reports whether the quote was submitted without signing in
func (q *QuoteRequest) IsAnonymous() bool {
	return strings.HasPrefix(q.UserID, AnonymousUserPrefix)
}

// QuotePatch carries the fields a client may change after submission
type QuotePatch struct {
	Name               *string        `json:"name,omitempty"`
	Phone              *string        `json:"phone,omitempty"`
	Company            *string        `json:"company,omitempty"`
	Timeline           *string        `json:"timeline,omitempty"`
	ProjectDescription *string        `json:"project_description,omitempty"`
	Goals              *string        `json:"goals,omitempty"`
	TargetAudience     *string        `json:"target_audience,omitempty"`
	Features           []string       `json:"features,omitempty"`
	Ratings            map[string]int `json:"ratings,omitempty"`
}

// Apply copies the set fields of p onto q
func (p QuotePatch) Apply(q *QuoteRequest) {
	if p.Name != nil {
		q.Name = *p.Name
	}
	if p.Phone != nil {
		q.Phone = *p.Phone
	}
	if p.Company != nil {
		q.Company = *p.Company
	}
	if p.Timeline != nil {
		q.Timeline = *p.Timeline
	}
	if p.ProjectDescription != nil {
		q.ProjectDescription = *p.ProjectDescription
	}
	if p.Goals != nil {
		q.Goals = *p.Goals
	}
	if p.TargetAudience != nil {
		q.TargetAudience = *p.TargetAudience
	}
	if p.Features != nil {
		q.Features = append([]string(nil), p.Features...)
	}
	if p.Ratings != nil {
		q.Ratings = make(map[string]int, len(p.Ratings))
		for k, v := range p.Ratings {
			q.Ratings[k] = v
		}
	}
}
