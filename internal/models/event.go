package models

import (
	"encoding/json"
	"time"
)

// Role is the routing role an event was delivered under, matching the
// webhook path it arrived on.
type Role string

const (
	RoleCustomer     Role = "customer"
	RoleSubscription Role = "subscription"
	RolePayment      Role = "payment"
)

// Event is one received billing event. EventID is the provider-assigned id
// and is the dedup key; ID is our own receipt id.
type Event struct {
	ID         string          `json:"id"`
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	Role       Role            `json:"role"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"received_at"`
}
