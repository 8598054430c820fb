package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/model"
	"github.com/mehtaphysical/stripe-pay-sandbox/internal/ports"
)

// Thresholds are ledger-native integer amounts, fixed at construction.
type Thresholds struct {
	// MinAccountCreationAmount is the smallest charge that covers the fixed
	// on-ledger cost of provisioning a new account.
	MinAccountCreationAmount int64
	// MinOperatingBalance is the native balance below which the target
	// account cannot pay mint transaction fees.
	MinOperatingBalance int64
	// FillAmount is transferred from the service funding account on refill.
	FillAmount int64
}

// SettlementService drives the payment/ledger saga: hold a card payment,
// credit tokens on the ledger, then capture the hold — cancelling the hold
// whenever crediting cannot be completed. There is no shared transaction
// boundary between the two systems; the ledger's per-intent idempotency is
// the only cross-process correctness guarantee, so the service keeps no
// state of its own and every step is an external call.
type SettlementService struct {
	payments ports.PaymentGateway
	ledger   ports.LedgerGateway
	contacts ports.ContactStore
	th       Thresholds
	hostName string
	l        *zap.Logger
}

func NewSettlementService(
	payments ports.PaymentGateway,
	ledger ports.LedgerGateway,
	contacts ports.ContactStore,
	th Thresholds,
	hostName string,
	l *zap.Logger,
) *SettlementService {
	if l == nil {
		l = zap.L().Named("settlement_service")
	}
	return &SettlementService{
		payments: payments,
		ledger:   ledger,
		contacts: contacts,
		th:       th,
		hostName: hostName,
		l:        l,
	}
}

// Settle runs the saga from intent creation. When the processor demands an
// external card challenge the outcome is returned pending, with no mint and
// no error; the caller finishes the challenge and comes back through Resume
// with the same intent id.
func (s *SettlementService) Settle(ctx context.Context, req model.SettlementRequest) model.SettlementOutcome {
	if req.Contact != nil {
		s.storeContact(ctx, req.AccountID, *req.Contact)
	}

	intent, err := s.payments.CreateIntent(ctx, ports.CreateIntentParams{
		Amount:      req.Amount,
		MethodToken: req.PaymentMethodToken,
		Description: model.IntentDescription(req.AccountID),
		ReturnURL:   fmt.Sprintf("%s/%s/success/process", s.hostName, req.AccountID),
	})
	if err != nil {
		s.l.Warn("Payment authorization failed",
			zap.String("account_id", req.AccountID),
			zap.Error(err),
		)
		return s.fail(model.SettlementOutcome{}, model.ErrTypePaymentAuthorizationFailed, err.Error())
	}

	switch intent.Status {
	case model.IntentStatusRequiresAction:
		return s.finish(model.SettlementOutcome{Intent: intent})
	case model.IntentStatusRequiresCapture, model.IntentStatusSucceeded:
		return s.complete(ctx, completion{
			accountID: req.AccountID,
			publicKey: req.PublicKey,
		}, intent)
	default:
		s.compensate(ctx, intent)
		return s.fail(model.SettlementOutcome{Intent: intent},
			model.ErrTypePaymentNotCapturable,
			fmt.Sprintf("payment intent %s is not capturable (status %s)", intent.ID, intent.Status))
	}
}

// Resume continues a settlement suspended on a card challenge. It
// re-retrieves the intent by id and proceeds from the integrity checks; the
// client secret proves the caller owns the original checkout session.
func (s *SettlementService) Resume(ctx context.Context, req model.ResumeRequest) model.SettlementOutcome {
	intent, err := s.payments.Retrieve(ctx, req.IntentID)
	if err != nil {
		s.l.Warn("Failed to retrieve intent for resume",
			zap.String("payment_intent_id", req.IntentID),
			zap.Error(err),
		)
		return s.fail(model.SettlementOutcome{}, model.ErrTypePaymentNotCapturable, err.Error())
	}

	switch intent.Status {
	case model.IntentStatusRequiresCapture, model.IntentStatusSucceeded:
		return s.complete(ctx, completion{
			accountID:    req.AccountID,
			publicKey:    req.PublicKey,
			clientSecret: req.ClientSecret,
		}, intent)
	default:
		s.compensate(ctx, intent)
		return s.fail(model.SettlementOutcome{Intent: intent},
			model.ErrTypePaymentNotCapturable,
			fmt.Sprintf("payment intent %s is not capturable (status %s)", intent.ID, intent.Status))
	}
}

type completion struct {
	accountID    string
	publicKey    string
	clientSecret string
}

// complete runs the ledger half of the saga against a capturable intent.
// The intent amount, not any caller-supplied value, is what gets minted.
func (s *SettlementService) complete(ctx context.Context, c completion, intent *model.PaymentIntent) model.SettlementOutcome {
	// Integrity checks come before any ledger work. The description binding
	// rejects an intent created for a different account; the secret rejects
	// a resume by anyone other than the original payer.
	if intent.Description != model.IntentDescription(c.accountID) {
		s.compensate(ctx, intent)
		return s.fail(model.SettlementOutcome{Intent: intent},
			model.ErrTypeIntentAccountMismatch,
			fmt.Sprintf("payment intent %s is not bound to account %s", intent.ID, c.accountID))
	}
	if c.clientSecret != "" && c.clientSecret != intent.ClientSecret {
		s.compensate(ctx, intent)
		return s.fail(model.SettlementOutcome{Intent: intent},
			model.ErrTypeIntentAccountMismatch, "client secret does not match")
	}

	// Provision the account when the caller supplied a key for it. Without
	// a key there is no provisioning branch: a mint against a nonexistent
	// account surfaces as MintFailed below.
	if c.publicKey != "" {
		exists, err := s.ledger.AccountExists(ctx, c.accountID)
		if err != nil {
			s.compensate(ctx, intent)
			return s.fail(model.SettlementOutcome{Intent: intent},
				model.ErrTypeAccountProvisioningFailed, err.Error())
		}
		if !exists {
			if intent.Amount < s.th.MinAccountCreationAmount {
				s.compensate(ctx, intent)
				return s.fail(model.SettlementOutcome{Intent: intent},
					model.ErrTypeAmountBelowCreationThreshold,
					fmt.Sprintf("amount %d is below the account creation minimum %d",
						intent.Amount, s.th.MinAccountCreationAmount))
			}
			if err := s.ledger.CreateAccount(ctx, c.accountID, c.publicKey); err != nil {
				s.compensate(ctx, intent)
				return s.fail(model.SettlementOutcome{Intent: intent},
					model.ErrTypeAccountProvisioningFailed, err.Error())
			}
		}
	}

	// The target account pays the mint transaction fee itself; top it up
	// from the funding account when it runs low. Orthogonal to the fiat
	// amount being credited.
	balance, err := s.ledger.AvailableBalance(ctx, c.accountID)
	if err != nil {
		s.compensate(ctx, intent)
		return s.fail(model.SettlementOutcome{Intent: intent},
			model.ErrTypeRefillFailed, err.Error())
	}
	if balance < s.th.MinOperatingBalance {
		if err := s.ledger.Refill(ctx, c.accountID, s.th.FillAmount); err != nil {
			s.compensate(ctx, intent)
			return s.fail(model.SettlementOutcome{Intent: intent},
				model.ErrTypeRefillFailed, err.Error())
		}
	}

	receipt, err := s.ledger.Mint(ctx, c.accountID, intent.ID, intent.Amount)
	if err != nil {
		if !errors.Is(err, ports.ErrAlreadyMinted) {
			s.compensate(ctx, intent)
			return s.fail(model.SettlementOutcome{Intent: intent},
				model.ErrTypeMintFailed, err.Error())
		}
		// Tokens for this intent were already delivered on a previous
		// attempt. The charge stays; never cancel here.
		s.l.Info("Mint already settled for intent",
			zap.String("account_id", c.accountID),
			zap.String("intent_id", intent.ID),
		)
		receipt = nil
	}

	// Move the held funds. Auto-captured intents arrive here as succeeded
	// and skip the call. A capture failure after a successful mint is a
	// reconciliation case, not a rollback: the mint stands.
	if intent.Status == model.IntentStatusRequiresCapture {
		if err := s.payments.Capture(ctx, intent.ID); err != nil && !errors.Is(err, ports.ErrIntentStateConflict) {
			s.l.Error("Capture failed after mint",
				zap.String("account_id", c.accountID),
				zap.String("intent_id", intent.ID),
				zap.Error(err),
			)
			return s.fail(model.SettlementOutcome{Intent: intent, MintReceipt: receipt},
				model.ErrTypeCaptureFailed, err.Error())
		}
		intent.Status = model.IntentStatusSucceeded
	}

	return s.finish(model.SettlementOutcome{Intent: intent, MintReceipt: receipt})
}

// compensate cancels an intent that can no longer be completed. Runs even
// when the caller's context is gone: once an intent exists the saga must
// reach a terminal outcome. A cancel failure is logged and counted, never
// allowed to mask the error that triggered it.
func (s *SettlementService) compensate(ctx context.Context, intent *model.PaymentIntent) {
	err := s.payments.Cancel(context.WithoutCancel(ctx), intent.ID)
	switch {
	case err == nil:
		intent.Status = model.IntentStatusCanceled
	case errors.Is(err, ports.ErrIntentStateConflict):
		// Already terminal on the processor side; nothing left to undo.
	default:
		s.l.Error("Compensating cancel failed",
			zap.String("intent_id", intent.ID),
			zap.Error(err),
		)
		compensationFailures.Inc()
	}
}

func (s *SettlementService) storeContact(ctx context.Context, accountID string, contact model.Contact) {
	if s.contacts == nil {
		return
	}
	// Best effort: contact capture never gates the settlement outcome.
	if err := s.contacts.Upsert(ctx, accountID, contact); err != nil {
		s.l.Warn("Failed to store contact",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
	}
}

func (s *SettlementService) fail(o model.SettlementOutcome, errType, message string) model.SettlementOutcome {
	o.Error = model.NewSettlementError(errType, message)
	settlementsTotal.WithLabelValues(errType).Inc()
	return o
}

func (s *SettlementService) finish(o model.SettlementOutcome) model.SettlementOutcome {
	if o.Intent != nil && o.Intent.Status == model.IntentStatusRequiresAction {
		settlementsTotal.WithLabelValues("pending_action").Inc()
	} else {
		settlementsTotal.WithLabelValues("success").Inc()
	}
	return o
}
