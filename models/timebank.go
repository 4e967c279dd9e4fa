package models

import "time"

// TimeBankEntry is one ledger movement. Positive amounts are earned hours,
// negative amounts are spent hours. Entries are immutable once written.
type TimeBankEntry struct {
	ID          string    `bson:"id" json:"id"`
	UserID      string    `bson:"user_id" json:"user_id"`
	Amount      float64   `bson:"amount" json:"amount"`
	Description string    `bson:"description" json:"description"`
	ServiceID   string    `bson:"service_id,omitempty" json:"service_id,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// FailureReason classifies why a ledger mutation was rejected.
type FailureReason string

const (
	FailureProviderBalanceLimit FailureReason = "provider_balance_limit"
	FailureInsufficientBalance  FailureReason = "insufficient_balance"
	FailureUserNotFound         FailureReason = "user_not_found"
	FailureUnknown              FailureReason = "unknown_error"
)

// FailedTimeBankEntry is the audit record of a rejected ledger mutation.
// It is diagnostic only: it never rolls back or compensates anything.
type FailedTimeBankEntry struct {
	ID                   string        `bson:"id" json:"id"`
	UserID               string        `bson:"user_id" json:"user_id"`
	Amount               float64       `bson:"amount" json:"amount"`
	Description          string        `bson:"description" json:"description"`
	ServiceID            string        `bson:"service_id,omitempty" json:"service_id,omitempty"`
	Reason               FailureReason `bson:"reason" json:"reason"`
	UserBalanceAtFailure *float64      `bson:"user_balance_at_failure,omitempty" json:"user_balance_at_failure,omitempty"`
	ErrorMessage         string        `bson:"error_message,omitempty" json:"error_message,omitempty"`
	CreatedAt            time.Time     `bson:"created_at" json:"created_at"`
}

// TimeBankStatement is the balance view returned to a user.
type TimeBankStatement struct {
	Balance    float64         `json:"balance"`
	MaxBalance float64         `json:"max_balance"`
	CanEarn    bool            `json:"can_earn"`
	Entries    []TimeBankEntry `json:"transactions"`
}
