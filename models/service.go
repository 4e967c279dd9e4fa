package models

import "time"

// ServiceType distinguishes offers of help from requests for help.
type ServiceType string

const (
	ServiceOffer ServiceType = "offer"
	ServiceNeed  ServiceType = "need"
)

// ServiceStatus is the lifecycle state of a service listing.
// Completed, cancelled and expired are terminal.
type ServiceStatus string

const (
	ServiceActive     ServiceStatus = "active"
	ServiceInProgress ServiceStatus = "in_progress"
	ServiceCompleted  ServiceStatus = "completed"
	ServiceCancelled  ServiceStatus = "cancelled"
	ServiceExpired    ServiceStatus = "expired"
)

// RecurringPattern describes a weekly schedule.
type RecurringPattern struct {
	Days []string `bson:"days" json:"days"`
	Time string   `bson:"time" json:"time"`
}

// Service is a listing on the exchange. MatchedUserIDs and the confirmation
// fields drive the dual-confirmation completion protocol:
// ReceiverConfirmedIDs is always a subset of MatchedUserIDs, and completion
// requires ProviderConfirmed plus a confirmation from every matched user.
type Service struct {
	ID                string        `bson:"id" json:"id"`
	UserID            string        `bson:"user_id" json:"user_id"`
	Title             string        `bson:"title" json:"title"`
	Description       string        `bson:"description" json:"description"`
	Category          string        `bson:"category,omitempty" json:"category,omitempty"`
	Tags              []TagEntity   `bson:"tags,omitempty" json:"tags,omitempty"`
	ServiceType       ServiceType   `bson:"service_type" json:"service_type"`
	EstimatedDuration float64       `bson:"estimated_duration" json:"estimated_duration"`
	Location          *Location     `bson:"location,omitempty" json:"location,omitempty"`
	IsRemote          bool          `bson:"is_remote" json:"is_remote"`
	Deadline          *time.Time    `bson:"deadline,omitempty" json:"deadline,omitempty"`
	MaxParticipants   int           `bson:"max_participants" json:"max_participants"`
	Status            ServiceStatus `bson:"status" json:"status"`

	MatchedUserIDs       []string `bson:"matched_user_ids" json:"matched_user_ids"`
	ProviderConfirmed    bool     `bson:"provider_confirmed" json:"provider_confirmed"`
	ReceiverConfirmedIDs []string `bson:"receiver_confirmed_ids" json:"receiver_confirmed_ids"`

	// Scheduling preferences. SchedulingType is "specific", "recurring" or "open".
	SchedulingType   string            `bson:"scheduling_type,omitempty" json:"scheduling_type,omitempty"`
	SpecificDate     string            `bson:"specific_date,omitempty" json:"specific_date,omitempty"`
	SpecificTime     string            `bson:"specific_time,omitempty" json:"specific_time,omitempty"`
	RecurringPattern *RecurringPattern `bson:"recurring_pattern,omitempty" json:"recurring_pattern,omitempty"`
	OpenAvailability string            `bson:"open_availability,omitempty" json:"open_availability,omitempty"`

	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// ServiceCreate is the creation payload.
type ServiceCreate struct {
	Title             string            `json:"title" binding:"required,min=5,max=100"`
	Description       string            `json:"description" binding:"required,min=10,max=5000"`
	Category          string            `json:"category"`
	Tags              []TagEntity       `json:"tags"`
	ServiceType       ServiceType       `json:"service_type" binding:"required,oneof=offer need"`
	EstimatedDuration float64           `json:"estimated_duration" binding:"required,gt=0,lte=24"`
	Location          *Location         `json:"location"`
	IsRemote          bool              `json:"is_remote"`
	Deadline          *time.Time        `json:"deadline"`
	MaxParticipants   int               `json:"max_participants"`
	SchedulingType    string            `json:"scheduling_type"`
	SpecificDate      string            `json:"specific_date"`
	SpecificTime      string            `json:"specific_time"`
	RecurringPattern  *RecurringPattern `json:"recurring_pattern"`
	OpenAvailability  string            `json:"open_availability"`
}

// ServiceUpdate carries partial edits; nil fields are left untouched.
// Status changes are validated against the transition table.
type ServiceUpdate struct {
	Title             *string        `json:"title,omitempty"`
	Description       *string        `json:"description,omitempty"`
	Category          *string        `json:"category,omitempty"`
	Tags              []TagEntity    `json:"tags,omitempty"`
	EstimatedDuration *float64       `json:"estimated_duration,omitempty"`
	Location          *Location      `json:"location,omitempty"`
	IsRemote          *bool          `json:"is_remote,omitempty"`
	Deadline          *time.Time     `json:"deadline,omitempty"`
	Status            *ServiceStatus `json:"status,omitempty"`
	SchedulingType    *string        `json:"scheduling_type,omitempty"`
	OpenAvailability  *string        `json:"open_availability,omitempty"`
}

// ServiceFilters narrows service listings.
type ServiceFilters struct {
	ServiceType ServiceType   `form:"service_type"`
	Category    string        `form:"category"`
	Tags        []string      `form:"tags"`
	Status      ServiceStatus `form:"status"`
	UserID      string        `form:"user_id"`
	IsRemote    *bool         `form:"is_remote"`
}

// Participant is one member of a service exchange with their role.
type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"` // "provider" or "participant"
}
