package model

type IntentStatus string

const (
	IntentStatusCreated         IntentStatus = "created"
	IntentStatusRequiresAction  IntentStatus = "requires_action"
	IntentStatusRequiresCapture IntentStatus = "requires_capture"
	IntentStatusSucceeded       IntentStatus = "succeeded"
	IntentStatusCanceled        IntentStatus = "canceled"
)

// IntentDescription binds a payment intent to the account it mints for.
// The binding is verified again at completion time before any ledger call.
func IntentDescription(accountID string) string {
	return "Mint tokens for " + accountID
}

// PaymentIntent is the processor-side record of an authorized hold.
// Amounts are integer minor-currency units (cents).
type PaymentIntent struct {
	ID            string       `json:"id"`
	Status        IntentStatus `json:"status"`
	Amount        int64        `json:"amount"`
	Currency      string       `json:"currency"`
	Description   string       `json:"description"`
	ClientSecret  string       `json:"client_secret"`
	NextActionURL string       `json:"next_action_url,omitempty"`
}

// MintReceipt is produced at most once per intent id. The ledger keeps the
// authoritative record; this is only a reference to it.
type MintReceipt struct {
	IntentID     string `json:"intent_id"`
	AccountID    string `json:"account_id"`
	Amount       int64  `json:"amount"`
	LedgerTxHash string `json:"ledger_tx_hash"`
}

type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type SettlementRequest struct {
	AccountID          string   `json:"account_id"`
	Amount             int64    `json:"amount"`
	PaymentMethodToken string   `json:"payment_method_token"`
	PublicKey          string   `json:"public_key,omitempty"`
	Contact            *Contact `json:"contact,omitempty"`
}

// ResumeRequest continues a settlement whose intent required an external
// card challenge. The secret proves the caller owns the original checkout.
type ResumeRequest struct {
	AccountID    string `json:"account_id"`
	IntentID     string `json:"payment_intent_id"`
	ClientSecret string `json:"payment_intent_secret"`
	PublicKey    string `json:"public_key,omitempty"`
}

type SettlementOutcome struct {
	Intent      *PaymentIntent   `json:"intent"`
	MintReceipt *MintReceipt     `json:"mint_receipt"`
	Error       *SettlementError `json:"error,omitempty"`
}
