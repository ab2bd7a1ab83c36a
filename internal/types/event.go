package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topics for the asynchronous side-effect bus. Everything published
// here is fire-and-forget relative to the request that produced it:
// access decisions and ledger writes never wait on consumers.
const (
	TopicGrantRecorded = "grant.recorded"
	TopicGrantAccessed = "grant.accessed"
	TopicGrantRefunded = "grant.refunded"
)

// GrantEvent is the payload for grant.recorded and grant.refunded.
// It carries everything the customer lifecycle tracker and the
// enrollment shadow writer need, so consumers do not have to read the
// ledger back.
type GrantEvent struct {
	EventID      string          `json:"event_id"`
	GrantID      string          `json:"grant_id"`
	UserID       string          `json:"user_id"`
	UserEmail    string          `json:"user_email"`
	StorefrontID string          `json:"storefront_id"`
	Content      ContentRef      `json:"content"`
	Route        GrantRoute      `json:"route"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// GrantAccessedEvent is the payload for grant.accessed; it drives the
// best-effort access-count telemetry.
type GrantAccessedEvent struct {
	EventID    string    `json:"event_id"`
	GrantID    string    `json:"grant_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
