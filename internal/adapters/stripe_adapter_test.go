package adapters

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v72"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/model"
)

func TestMapIntentStatus(t *testing.T) {
	tests := []struct {
		in   stripe.PaymentIntentStatus
		want model.IntentStatus
	}{
		{stripe.PaymentIntentStatusRequiresAction, model.IntentStatusRequiresAction},
		{stripe.PaymentIntentStatusRequiresCapture, model.IntentStatusRequiresCapture},
		{stripe.PaymentIntentStatusSucceeded, model.IntentStatusSucceeded},
		{stripe.PaymentIntentStatusCanceled, model.IntentStatusCanceled},
		{stripe.PaymentIntentStatusRequiresPaymentMethod, model.IntentStatusCreated},
		{stripe.PaymentIntentStatusProcessing, model.IntentStatusCreated},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapIntentStatus(tt.in), "status %s", tt.in)
	}
}

func TestFromStripeIntent(t *testing.T) {
	pi := &stripe.PaymentIntent{
		ID:           "pi_1",
		Status:       stripe.PaymentIntentStatusRequiresAction,
		Amount:       5000,
		Currency:     "usd",
		Description:  model.IntentDescription("alice.testnet"),
		ClientSecret: "pi_1_secret",
		NextAction: &stripe.PaymentIntentNextAction{
			RedirectToURL: &stripe.PaymentIntentNextActionRedirectToURL{
				URL: "https://hooks.stripe.com/redirect/pi_1",
			},
		},
	}

	intent := fromStripeIntent(pi)
	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, model.IntentStatusRequiresAction, intent.Status)
	assert.Equal(t, int64(5000), intent.Amount)
	assert.Equal(t, "Mint tokens for alice.testnet", intent.Description)
	assert.Equal(t, "https://hooks.stripe.com/redirect/pi_1", intent.NextActionURL)
}

func TestFromStripeIntentWithoutNextAction(t *testing.T) {
	intent := fromStripeIntent(&stripe.PaymentIntent{
		ID:     "pi_2",
		Status: stripe.PaymentIntentStatusRequiresCapture,
	})
	assert.Empty(t, intent.NextActionURL)
}

func TestIsStateConflict(t *testing.T) {
	conflict := &stripe.Error{Code: stripe.ErrorCodePaymentIntentUnexpectedState}
	assert.True(t, isStateConflict(conflict))
	assert.True(t, isStateConflict(errors.Wrap(conflict, "capture")))

	assert.False(t, isStateConflict(&stripe.Error{Code: stripe.ErrorCodeCardDeclined}))
	assert.False(t, isStateConflict(errors.New("network error")))
}
