package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/model"
	"github.com/mehtaphysical/stripe-pay-sandbox/internal/ports"
	"github.com/mehtaphysical/stripe-pay-sandbox/pkg/utils"
)

// Settler is the orchestrator surface the controller needs.
type Settler interface {
	Settle(ctx context.Context, req model.SettlementRequest) model.SettlementOutcome
	Resume(ctx context.Context, req model.ResumeRequest) model.SettlementOutcome
}

type SettlementController struct {
	service  Settler
	contacts ports.ContactStore
	l        *zap.Logger
}

func NewSettlementController(service Settler, contacts ports.ContactStore) *SettlementController {
	return &SettlementController{
		service:  service,
		contacts: contacts,
		l:        zap.L().Named("settlement_controller"),
	}
}

type payRequest struct {
	Amount             int64          `json:"amount"`
	PaymentMethodToken string         `json:"payment_method_token"`
	PublicKey          string         `json:"public_key"`
	Contact            *model.Contact `json:"contact"`
}

type completeRequest struct {
	PaymentIntentID     string `json:"payment_intent_id"`
	PaymentIntentSecret string `json:"payment_intent_secret"`
	PublicKey           string `json:"public_key"`
}

func (c *SettlementController) Pay(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	// Create base context from the HTTP request
	ctx := r.Context()

	// The saga is a chain of external calls; give it room
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if accountID == "" || req.Amount <= 0 || req.PaymentMethodToken == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "account id, positive amount and payment method token are required")
		return
	}

	outcome := c.service.Settle(ctx, model.SettlementRequest{
		AccountID:          accountID,
		Amount:             req.Amount,
		PaymentMethodToken: req.PaymentMethodToken,
		PublicKey:          req.PublicKey,
		Contact:            req.Contact,
	})

	utils.RespondWithJSON(w, statusForOutcome(outcome), outcome)
}

func (c *SettlementController) Complete(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	// Create base context from the HTTP request
	ctx := r.Context()

	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if accountID == "" || req.PaymentIntentID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "account id and payment intent id are required")
		return
	}

	outcome := c.service.Resume(ctx, model.ResumeRequest{
		AccountID:    accountID,
		IntentID:     req.PaymentIntentID,
		ClientSecret: req.PaymentIntentSecret,
		PublicKey:    req.PublicKey,
	})

	utils.RespondWithJSON(w, statusForOutcome(outcome), outcome)
}

func (c *SettlementController) UpsertContact(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var contact model.Contact
	if err := json.NewDecoder(r.Body).Decode(&contact); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	// Best effort by contract; the caller always gets accepted.
	if err := c.contacts.Upsert(ctx, accountID, contact); err != nil {
		c.l.Warn("Failed to upsert contact",
			zap.String("account_id", accountID),
			zap.Error(err),
		)
	}

	utils.RespondWithJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (c *SettlementController) GetHealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status": "OK",
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

func statusForOutcome(o model.SettlementOutcome) int {
	if o.Error == nil {
		return http.StatusOK
	}
	switch o.Error.Type {
	case model.ErrTypePaymentAuthorizationFailed, model.ErrTypePaymentNotCapturable:
		return http.StatusPaymentRequired
	case model.ErrTypeIntentAccountMismatch:
		return http.StatusConflict
	case model.ErrTypeAmountBelowCreationThreshold:
		return http.StatusBadRequest
	default:
		// Ledger or capture side failed after a valid payment request.
		return http.StatusBadGateway
	}
}
