package models

import "time"

// JoinRequestStatus is the lifecycle state of a join request.
type JoinRequestStatus string

const (
	JoinRequestPending   JoinRequestStatus = "pending"
	JoinRequestApproved  JoinRequestStatus = "approved"
	JoinRequestRejected  JoinRequestStatus = "rejected"
	JoinRequestCancelled JoinRequestStatus = "cancelled"
)

// JoinRequest is a user's application to participate in a service.
type JoinRequest struct {
	ID           string            `bson:"id" json:"id"`
	ServiceID    string            `bson:"service_id" json:"service_id"`
	UserID       string            `bson:"user_id" json:"user_id"`
	Message      string            `bson:"message,omitempty" json:"message,omitempty"`
	Status       JoinRequestStatus `bson:"status" json:"status"`
	AdminMessage string            `bson:"admin_message,omitempty" json:"admin_message,omitempty"`
	CreatedAt    time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `bson:"updated_at" json:"updated_at"`

	// Populated views, not persisted.
	User    *UserSummary    `bson:"-" json:"user,omitempty"`
	Service *ServiceSummary `bson:"-" json:"service,omitempty"`
}

// JoinRequestCreate is the creation payload.
type JoinRequestCreate struct {
	ServiceID string `json:"service_id" binding:"required"`
	Message   string `json:"message"`
}

// JoinRequestUpdate is the owner's approve/reject decision.
type JoinRequestUpdate struct {
	Status       JoinRequestStatus `json:"status" binding:"required,oneof=approved rejected"`
	AdminMessage string            `json:"admin_message"`
}
