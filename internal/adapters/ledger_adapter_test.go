package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/ports"
)

func newTestBridge(t *testing.T, handler http.HandlerFunc) *LedgerAdapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewLedgerAdapter(srv.URL, "tokens.testnet", "ed25519:signing")
}

func TestAccountExists(t *testing.T) {
	adapter := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ed25519:signing", r.Header.Get("X-Signing-Key"))
		switch r.URL.Path {
		case "/v1/contracts/tokens.testnet/accounts/alice.testnet":
			json.NewEncoder(w).Encode(accountResponse{AccountID: "alice.testnet"})
		case "/v1/contracts/tokens.testnet/accounts/ghost.testnet":
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(ledgerError{Code: "ACCOUNT_NOT_FOUND", Message: "no such account"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	exists, err := adapter.AccountExists(context.Background(), "alice.testnet")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = adapter.AccountExists(context.Background(), "ghost.testnet")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAccountExistsServerError(t *testing.T) {
	adapter := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := adapter.AccountExists(context.Background(), "alice.testnet")
	require.Error(t, err)
}

func TestAvailableBalance(t *testing.T) {
	adapter := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/contracts/tokens.testnet/accounts/alice.testnet/balance", r.URL.Path)
		json.NewEncoder(w).Encode(balanceResponse{Available: 250})
	})

	balance, err := adapter.AvailableBalance(context.Background(), "alice.testnet")
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)
}

func TestCreateAccount(t *testing.T) {
	adapter := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/contracts/tokens.testnet/accounts", r.URL.Path)
		var in createAccountRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "alice.testnet", in.AccountID)
		assert.Equal(t, "ed25519:newkey", in.PublicKey)
		json.NewEncoder(w).Encode(accountResponse{AccountID: in.AccountID, PublicKey: in.PublicKey})
	})

	err := adapter.CreateAccount(context.Background(), "alice.testnet", "ed25519:newkey")
	require.NoError(t, err)
}

func TestRefill(t *testing.T) {
	adapter := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/contracts/tokens.testnet/transfers", r.URL.Path)
		var in transferRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, int64(1000), in.Amount)
		json.NewEncoder(w).Encode(map[string]string{"tx_hash": "abc"})
	})

	err := adapter.Refill(context.Background(), "alice.testnet", 1000)
	require.NoError(t, err)
}

func TestMint(t *testing.T) {
	adapter := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/contracts/tokens.testnet/mint", r.URL.Path)
		var in mintRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "pi_1", in.IntentID)
		json.NewEncoder(w).Encode(mintResponse{TxHash: "9xYz"})
	})

	receipt, err := adapter.Mint(context.Background(), "alice.testnet", "pi_1", 5000)
	require.NoError(t, err)
	assert.Equal(t, "9xYz", receipt.LedgerTxHash)
	assert.Equal(t, "pi_1", receipt.IntentID)
	assert.Equal(t, "alice.testnet", receipt.AccountID)
	assert.Equal(t, int64(5000), receipt.Amount)
}

func TestMintAlreadyMintedIsTyped(t *testing.T) {
	adapter := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(ledgerError{
			Code:    "ALREADY_MINTED",
			Message: "Mint already occurred with that intent",
		})
	})

	receipt, err := adapter.Mint(context.Background(), "alice.testnet", "pi_1", 5000)
	assert.Nil(t, receipt)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrAlreadyMinted))
}

func TestMintOtherFailureIsNotAlreadyMinted(t *testing.T) {
	adapter := newTestBridge(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(ledgerError{Code: "EXECUTION_ERROR", Message: "contract panic"})
	})

	_, err := adapter.Mint(context.Background(), "alice.testnet", "pi_1", 5000)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrAlreadyMinted))
}
