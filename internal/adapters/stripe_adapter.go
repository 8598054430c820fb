package adapters

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
	"go.uber.org/zap"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/model"
	"github.com/mehtaphysical/stripe-pay-sandbox/internal/ports"
)

// StripeAdapter implements ports.PaymentGateway on the Stripe
// PaymentIntents API. Intents are created with capture_method=manual so
// authorization holds funds without moving them.
type StripeAdapter struct {
	apiKey string
	l      *zap.Logger
}

func NewStripeAdapter(apiKey string) *StripeAdapter {
	stripe.Key = apiKey
	return &StripeAdapter{
		apiKey: apiKey,
		l:      zap.L().Named("stripe_gateway"),
	}
}

func (s *StripeAdapter) CreateIntent(ctx context.Context, p ports.CreateIntentParams) (*model.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(p.Amount),
		Currency:    stripe.String(string(stripe.CurrencyUSD)),
		Description: stripe.String(p.Description),
		PaymentMethodTypes: []*string{
			stripe.String("card"),
		},
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		PaymentMethod: stripe.String(p.MethodToken),
		Confirm:       stripe.Bool(true),
		ReturnURL:     stripe.String(p.ReturnURL),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		s.l.Warn("Failed create payment intent",
			zap.String("payment_method", p.MethodToken),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "Failed create payment intent")
	}
	return fromStripeIntent(pi), nil
}

func (s *StripeAdapter) Retrieve(ctx context.Context, id string) (*model.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		s.l.Warn("Failed get payment intent",
			zap.String("payment_intent_id", id),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "Failed get payment intent")
	}
	return fromStripeIntent(pi), nil
}

func (s *StripeAdapter) Capture(ctx context.Context, id string) error {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx

	if _, err := paymentintent.Capture(id, params); err != nil {
		if isStateConflict(err) {
			return ports.ErrIntentStateConflict
		}
		s.l.Warn("Failed capture payment intent",
			zap.String("payment_intent_id", id),
			zap.Error(err),
		)
		return errors.Wrap(err, "Failed capture payment intent")
	}
	return nil
}

func (s *StripeAdapter) Cancel(ctx context.Context, id string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx

	if _, err := paymentintent.Cancel(id, params); err != nil {
		if isStateConflict(err) {
			return ports.ErrIntentStateConflict
		}
		s.l.Warn("Failed cancel payment intent",
			zap.String("payment_intent_id", id),
			zap.Error(err),
		)
		return errors.Wrap(err, "Failed cancel payment intent")
	}
	return nil
}

// isStateConflict matches Stripe's error for capturing or cancelling an
// intent that already reached a terminal state.
func isStateConflict(err error) bool {
	var sErr *stripe.Error
	if errors.As(err, &sErr) {
		return sErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState
	}
	return false
}

func fromStripeIntent(pi *stripe.PaymentIntent) *model.PaymentIntent {
	intent := &model.PaymentIntent{
		ID:           pi.ID,
		Status:       mapIntentStatus(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Description:  pi.Description,
		ClientSecret: pi.ClientSecret,
	}
	if pi.NextAction != nil && pi.NextAction.RedirectToURL != nil {
		intent.NextActionURL = pi.NextAction.RedirectToURL.URL
	}
	return intent
}

func mapIntentStatus(status stripe.PaymentIntentStatus) model.IntentStatus {
	switch status {
	case stripe.PaymentIntentStatusRequiresAction:
		return model.IntentStatusRequiresAction
	case stripe.PaymentIntentStatusRequiresCapture:
		return model.IntentStatusRequiresCapture
	case stripe.PaymentIntentStatusSucceeded:
		return model.IntentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return model.IntentStatusCanceled
	default:
		return model.IntentStatusCreated
	}
}
