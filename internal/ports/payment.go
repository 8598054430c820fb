package ports

import (
	"context"
	"errors"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/model"
)

// ErrIntentStateConflict reports a capture or cancel against an intent that
// is already in a terminal state on the processor side. Compensation logic
// treats it as a no-op.
var ErrIntentStateConflict = errors.New("payment intent already in a terminal state")

type CreateIntentParams struct {
	Amount      int64
	MethodToken string
	Description string
	ReturnURL   string
}

// PaymentGateway is the payment processor contract consumed by the
// settlement saga. Intents are created in manual-capture mode: the hold is
// placed at creation, funds move only on Capture.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, p CreateIntentParams) (*model.PaymentIntent, error)
	Retrieve(ctx context.Context, id string) (*model.PaymentIntent, error)
	Capture(ctx context.Context, id string) error
	Cancel(ctx context.Context, id string) error
}
