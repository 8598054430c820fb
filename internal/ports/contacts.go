package ports

import (
	"context"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/model"
)

// ContactStore keeps marketing contact info. Upsert is best effort: a
// failure is logged by the caller and never affects a settlement outcome.
type ContactStore interface {
	Upsert(ctx context.Context, accountID string, contact model.Contact) error
}
