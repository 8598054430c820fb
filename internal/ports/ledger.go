package ports

import (
	"context"
	"errors"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/model"
)

// ErrAlreadyMinted reports that the ledger has already settled this intent
// id. The saga treats it as success and must never cancel the charge.
var ErrAlreadyMinted = errors.New("mint already occurred for this intent")

// LedgerGateway is the token ledger contract. Mint is idempotent keyed by
// intent id; a replay surfaces as ErrAlreadyMinted, never as a double
// credit. AvailableBalance and Refill are denominated in ledger-native
// units, Mint amounts in minor-currency units — conversion is the
// adapter's concern.
type LedgerGateway interface {
	AccountExists(ctx context.Context, accountID string) (bool, error)
	AvailableBalance(ctx context.Context, accountID string) (int64, error)
	CreateAccount(ctx context.Context, accountID, publicKey string) error
	Refill(ctx context.Context, accountID string, amount int64) error
	Mint(ctx context.Context, accountID, intentID string, amount int64) (*model.MintReceipt, error)
}
