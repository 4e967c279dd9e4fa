package models

import "time"

// TransactionStatus is the lifecycle state of a bilateral exchange.
// Completed and cancelled are terminal.
type TransactionStatus string

const (
	TransactionPending    TransactionStatus = "pending"
	TransactionInProgress TransactionStatus = "in_progress"
	TransactionCompleted  TransactionStatus = "completed"
	TransactionCancelled  TransactionStatus = "cancelled"
	TransactionDisputed   TransactionStatus = "disputed"
)

// Transaction is a 1:1 exchange spawned from an approved join request.
// Settlement moves TimebankHours from the requester to the provider once
// both sides confirm.
type Transaction struct {
	ID            string            `bson:"id" json:"id"`
	ServiceID     string            `bson:"service_id" json:"service_id"`
	ProviderID    string            `bson:"provider_id" json:"provider_id"`
	RequesterID   string            `bson:"requester_id" json:"requester_id"`
	TimebankHours float64           `bson:"timebank_hours" json:"timebank_hours"`
	Description   string            `bson:"description,omitempty" json:"description,omitempty"`
	Status        TransactionStatus `bson:"status" json:"status"`

	ProviderConfirmed  bool `bson:"provider_confirmed" json:"provider_confirmed"`
	RequesterConfirmed bool `bson:"requester_confirmed" json:"requester_confirmed"`

	CompletionNotes string     `bson:"completion_notes,omitempty" json:"completion_notes,omitempty"`
	DisputeReason   string     `bson:"dispute_reason,omitempty" json:"dispute_reason,omitempty"`
	CompletedAt     *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt       time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at" json:"updated_at"`

	// Populated views, not persisted.
	Service   *ServiceSummary `bson:"-" json:"service,omitempty"`
	Provider  *UserSummary    `bson:"-" json:"provider,omitempty"`
	Requester *UserSummary    `bson:"-" json:"requester,omitempty"`
}

// TransactionCreate is the creation payload.
type TransactionCreate struct {
	ServiceID     string  `json:"service_id" binding:"required"`
	ProviderID    string  `json:"provider_id" binding:"required"`
	RequesterID   string  `json:"requester_id" binding:"required"`
	TimebankHours float64 `json:"timebank_hours" binding:"required,gt=0"`
	Description   string  `json:"description"`
}

// TransactionUpdate carries a requested status change with optional notes.
type TransactionUpdate struct {
	Status          *TransactionStatus `json:"status,omitempty"`
	CompletionNotes *string            `json:"completion_notes,omitempty"`
	DisputeReason   *string            `json:"dispute_reason,omitempty"`
}
