package model

// Settlement error types. The set is closed: callers branch on Type for
// retry decisions, so new values are an API change.
const (
	ErrTypePaymentAuthorizationFailed   = "PaymentAuthorizationFailed"
	ErrTypePaymentNotCapturable         = "PaymentNotCapturable"
	ErrTypeIntentAccountMismatch        = "IntentAccountMismatchError"
	ErrTypeAmountBelowCreationThreshold = "AmountBelowCreationThreshold"
	ErrTypeAccountProvisioningFailed    = "AccountProvisioningFailed"
	ErrTypeRefillFailed                 = "RefillFailed"
	ErrTypeMintFailed                   = "MintFailed"
	ErrTypeCaptureFailed                = "CaptureFailed"
)

type SettlementError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewSettlementError(errType, message string) *SettlementError {
	return &SettlementError{Type: errType, Message: message}
}

func (e *SettlementError) Error() string {
	return e.Type + ": " + e.Message
}
