package entities

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to QuoteStatus
		allowed  bool
	}{
		{QuoteStatusPending, QuoteStatusInReview, true},
		{QuoteStatusPending, QuoteStatusCancelled, true},
		{QuoteStatusPending, QuoteStatusPaid, false},
		{QuoteStatusInReview, QuoteStatusApproved, true},
		{QuoteStatusInReview, QuoteStatusPending, false},
		{QuoteStatusApproved, QuoteStatusPaid, true},
		{QuoteStatusPaid, QuoteStatusCancelled, false},
		{QuoteStatusRejected, QuoteStatusInReview, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.True(t, QuoteStatusPaid.Valid())
	assert.False(t, QuoteStatus("archived").Valid())
}

func TestQuotePatch_ApplyCopiesOnlySetFields(t *testing.T) {
	q := &QuoteRequest{Name: "Jane", Phone: "5551234567", Ratings: map[string]int{"seo": 2}}
	name := "Jane Doe"
	ratings := map[string]int{"seo": 5}

	QuotePatch{Name: &name, Ratings: ratings}.Apply(q)
	ratings["seo"] = 1

	assert.Equal(t, "Jane Doe", q.Name)
	assert.Equal(t, "5551234567", q.Phone)
	assert.Equal(t, 5, q.Ratings["seo"])
}

func TestWizardStep_Order(t *testing.T) {
	assert.Equal(t, 0, StepServiceSelection.Index())
	assert.Equal(t, 3, StepConfirmation.Index())
	assert.Equal(t, -1, WizardStep("payment").Index())

	d := &QuoteDraft{}
	d.SetStepIndex(2)
	assert.Equal(t, StepProjectDetails, d.Step)
}

func TestQuoteDraft_ToQuoteRequestDoesNotShareState(t *testing.T) {
	d := &QuoteDraft{
		UserID:          "user-1",
		ServiceCategory: "Digital Marketing",
		Budget:          "1000-5000",
		Features:        []string{"audit"},
		Ratings:         map[string]int{"speed": 4},
		Terms:           true,
	}
	q := d.ToQuoteRequest()
	d.Features[0] = "changed"
	d.Ratings["speed"] = 1

	assert.Equal(t, "user-1", q.UserID)
	assert.Equal(t, []string{"audit"}, q.Features)
	assert.Equal(t, 4, q.Ratings["speed"])
	assert.Empty(t, q.Status)
	assert.False(t, d.Submitted())
}

func TestProject_Normalize(t *testing.T) {
	p := &Project{Status: ProjectStatusInProgress, Progress: 140}
	p.Normalize()
	assert.Equal(t, 100, p.Progress)

	p = &Project{Status: ProjectStatusReview, Progress: -3}
	p.Normalize()
	assert.Equal(t, 0, p.Progress)

	p = &Project{Status: ProjectStatusCompleted, Progress: 40}
	p.Normalize()
	assert.Equal(t, 100, p.Progress)
}

func TestTheme_ToggleTwiceRestores(t *testing.T) {
	for _, theme := range []Theme{ThemeLight, ThemeDark} {
		assert.Equal(t, theme, theme.Toggled().Toggled())
		assert.NotEqual(t, theme, theme.Toggled())
	}
}

func TestAppContext_RoundTripsThroughContext(t *testing.T) {
	assert.False(t, AppContextFrom(context.Background()).Authenticated())

	ctx := WithAppContext(context.Background(), AppContext{UserID: "user-1", IsAdmin: true})
	app := AppContextFrom(ctx)
	require.True(t, app.Authenticated())
	assert.True(t, app.IsAdmin)
}

func TestNewAnonymousUserID(t *testing.T) {
	id := NewAnonymousUserID()
	assert.True(t, strings.HasPrefix(id, AnonymousUserPrefix))
	assert.NotEqual(t, id, NewAnonymousUserID())
	assert.True(t, (&QuoteRequest{UserID: id}).IsAnonymous())
}

func TestNewQuoteEvent(t *testing.T) {
	q := &QuoteRequest{ID: "q-1", Reference: "CQ-123", Email: "jane@example.com", ServiceCategory: "Digital Marketing"}
	event := NewQuoteEvent(EventTypeQuoteSubmitted, q)
	assert.Equal(t, "q-1", event.AggregateID)
	assert.Equal(t, EventTypeQuoteSubmitted, event.Type)
	assert.Equal(t, "CQ-123", event.Data["reference"])
}

func TestPaymentStatus_Final(t *testing.T) {
	assert.True(t, PaymentStatusSuccess.Final())
	assert.True(t, PaymentStatusFailed.Final())
	assert.False(t, PaymentStatusPending.Final())
	assert.False(t, PaymentStatusCancelled.Final())
}
