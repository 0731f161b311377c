package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/shohag/hookbridge/internal/models"
	"github.com/shohag/hookbridge/internal/storage"
)

type WebhookHandler struct {
	store storage.Storage
	log   zerolog.Logger
}

func NewWebhookHandler(store storage.Storage, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{store: store, log: log}
}

// eventPayload is the billing provider's delivery shape as forwarded by the
// gateway.
type eventPayload struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Content   json.RawMessage `json:"content"`
}

type receiptResponse struct {
	Received  bool   `json:"received"`
	Duplicate bool   `json:"duplicate,omitempty"`
	EventID   string `json:"event_id"`
}

func (h *WebhookHandler) Customer(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, models.RoleCustomer)
}

func (h *WebhookHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, models.RoleSubscription)
}

func (h *WebhookHandler) Payment(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, models.RolePayment)
}

func (h *WebhookHandler) handle(w http.ResponseWriter, r *http.Request, role models.Role) {
	var payload eventPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.ID == "" || payload.EventType == "" {
		writeError(w, http.StatusBadRequest, "id and event_type are required")
		return
	}

	ev := &models.Event{
		ID:         models.NewID("evt"),
		EventID:    payload.ID,
		EventType:  payload.EventType,
		Role:       role,
		Payload:    payload.Content,
		ReceivedAt: time.Now().UTC(),
	}
	if ev.Payload == nil {
		ev.Payload = json.RawMessage(`{}`)
	}

	inserted, err := h.store.RecordEvent(r.Context(), ev)
	if err != nil {
		h.log.Error().Err(err).Str("event_id", payload.ID).Msg("failed to record event")
		writeError(w, http.StatusInternalServerError, "failed to record event")
		return
	}

	log := h.log.Info().
		Str("event_id", payload.ID).
		Str("event_type", payload.EventType).
		Str("role", string(role))
	if !inserted {
		// The gateway retries on our failures, so replays are expected.
		// Answer 200 either way; the receipt log keeps one row per event.
		log.Bool("duplicate", true)
	}
	h.logContent(log, role, payload.Content)
	log.Msg("event received")

	writeJSON(w, http.StatusOK, receiptResponse{
		Received:  true,
		Duplicate: !inserted,
		EventID:   payload.ID,
	})
}

// logContent pulls the role-relevant identifiers out of the event content.
// Everything here is best-effort destructuring; missing fields are simply not
// logged.
func (h *WebhookHandler) logContent(log *zerolog.Event, role models.Role, content json.RawMessage) {
	if len(content) == 0 {
		return
	}
	var parsed struct {
		Customer struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"customer"`
		Subscription struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			PlanID string `json:"plan_id"`
		} `json:"subscription"`
		Transaction struct {
			ID           string `json:"id"`
			Amount       int64  `json:"amount"`
			CurrencyCode string `json:"currency_code"`
		} `json:"transaction"`
	}
	if err := json.Unmarshal(content, &parsed); err != nil {
		return
	}

	switch role {
	case models.RoleCustomer:
		if parsed.Customer.ID != "" {
			log.Str("customer_id", parsed.Customer.ID)
		}
		if parsed.Customer.Email != "" {
			log.Str("customer_email", parsed.Customer.Email)
		}
	case models.RoleSubscription:
		if parsed.Subscription.ID != "" {
			log.Str("subscription_id", parsed.Subscription.ID)
		}
		if parsed.Subscription.Status != "" {
			log.Str("subscription_status", parsed.Subscription.Status)
		}
		if parsed.Subscription.PlanID != "" {
			log.Str("plan_id", parsed.Subscription.PlanID)
		}
	case models.RolePayment:
		if parsed.Transaction.ID != "" {
			log.Str("transaction_id", parsed.Transaction.ID)
		}
		if parsed.Transaction.Amount != 0 {
			log.Int64("amount", parsed.Transaction.Amount).
				Str("currency", parsed.Transaction.CurrencyCode)
		}
	}
}
