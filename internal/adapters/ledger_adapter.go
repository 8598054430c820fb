package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/model"
	"github.com/mehtaphysical/stripe-pay-sandbox/internal/ports"
)

// Machine codes returned in the ledger bridge error envelope.
const (
	ledgerCodeAlreadyMinted   = "ALREADY_MINTED"
	ledgerCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
)

// LedgerAdapter implements ports.LedgerGateway against the token ledger's
// HTTP bridge. The bridge signs on-ledger transactions with the service's
// single operating credential; the adapter only carries that credential,
// there is no keystore abstraction.
type LedgerAdapter struct {
	httpClient *http.Client
	baseURL    string
	contractID string
	signingKey string
	l          *zap.Logger
}

func NewLedgerAdapter(baseURL, contractID, signingKey string) *LedgerAdapter {
	return &LedgerAdapter{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		contractID: contractID,
		signingKey: signingKey,
		l:          zap.L().Named("ledger_gateway"),
	}
}

type ledgerError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type accountResponse struct {
	AccountID string `json:"account_id"`
	PublicKey string `json:"public_key"`
}

type balanceResponse struct {
	Available int64 `json:"available"`
}

type mintRequest struct {
	AccountID string `json:"account_id"`
	IntentID  string `json:"intent_id"`
	Amount    int64  `json:"amount"`
}

type mintResponse struct {
	TxHash string `json:"tx_hash"`
}

type createAccountRequest struct {
	AccountID string `json:"account_id"`
	PublicKey string `json:"public_key"`
}

type transferRequest struct {
	ReceiverID string `json:"receiver_id"`
	Amount     int64  `json:"amount"`
}

func (a *LedgerAdapter) AccountExists(ctx context.Context, accountID string) (bool, error) {
	var out accountResponse
	err := a.getJSON(ctx, a.accountURL(accountID), &out)
	if err != nil {
		var lErr *ledgerError
		if errors.As(err, &lErr) && lErr.Code == ledgerCodeAccountNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "Failed get ledger account")
	}
	return true, nil
}

func (a *LedgerAdapter) AvailableBalance(ctx context.Context, accountID string) (int64, error) {
	var out balanceResponse
	if err := a.getJSON(ctx, a.accountURL(accountID)+"/balance", &out); err != nil {
		return 0, errors.Wrap(err, "Failed get ledger balance")
	}
	return out.Available, nil
}

func (a *LedgerAdapter) CreateAccount(ctx context.Context, accountID, publicKey string) error {
	in := createAccountRequest{AccountID: accountID, PublicKey: publicKey}
	var out accountResponse
	if err := a.postJSON(ctx, a.contractURL()+"/accounts", in, &out); err != nil {
		a.l.Warn("Failed create ledger account",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
		return errors.Wrap(err, "Failed create ledger account")
	}
	return nil
}

func (a *LedgerAdapter) Refill(ctx context.Context, accountID string, amount int64) error {
	in := transferRequest{ReceiverID: accountID, Amount: amount}
	var out struct {
		TxHash string `json:"tx_hash"`
	}
	if err := a.postJSON(ctx, a.contractURL()+"/transfers", in, &out); err != nil {
		a.l.Warn("Failed refill ledger account",
			zap.String("account_id", accountID),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		return errors.Wrap(err, "Failed refill ledger account")
	}
	return nil
}

func (a *LedgerAdapter) Mint(ctx context.Context, accountID, intentID string, amount int64) (*model.MintReceipt, error) {
	in := mintRequest{AccountID: accountID, IntentID: intentID, Amount: amount}
	var out mintResponse
	if err := a.postJSON(ctx, a.contractURL()+"/mint", in, &out); err != nil {
		var lErr *ledgerError
		if errors.As(err, &lErr) && lErr.Code == ledgerCodeAlreadyMinted {
			return nil, ports.ErrAlreadyMinted
		}
		a.l.Warn("Failed mint",
			zap.String("account_id", accountID),
			zap.String("intent_id", intentID),
			zap.Error(err),
		)
		return nil, errors.Wrap(err, "Failed mint")
	}
	return &model.MintReceipt{
		IntentID:     intentID,
		AccountID:    accountID,
		Amount:       amount,
		LedgerTxHash: out.TxHash,
	}, nil
}

func (a *LedgerAdapter) contractURL() string {
	return fmt.Sprintf("%s/v1/contracts/%s", a.baseURL, a.contractID)
}

func (a *LedgerAdapter) accountURL(accountID string) string {
	return fmt.Sprintf("%s/accounts/%s", a.contractURL(), accountID)
}

func (e *ledgerError) Error() string {
	return fmt.Sprintf("ledger error %s: %s", e.Code, e.Message)
}

func (a *LedgerAdapter) getJSON(ctx context.Context, link string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return errors.Wrap(err, "Failed new request")
	}
	return a.do(req, out)
}

func (a *LedgerAdapter) postJSON(ctx context.Context, link string, in, out interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "Failed marshal")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, link, bytes.NewReader(b))
	if err != nil {
		return errors.Wrap(err, "Failed new request")
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func (a *LedgerAdapter) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Signing-Key", a.signingKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "Failed do request")
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "Failed read all body")
	}

	if resp.StatusCode >= 400 {
		lErr := &ledgerError{}
		if err := json.Unmarshal(b, lErr); err != nil || lErr.Code == "" {
			return errors.Errorf("ledger bridge returned status %d", resp.StatusCode)
		}
		return lErr
	}

	if out != nil {
		if err := json.Unmarshal(b, out); err != nil {
			return errors.Wrap(err, "Failed unmarshal")
		}
	}
	return nil
}
