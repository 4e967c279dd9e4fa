package serviceRepo

import (
	"time"

	"hive/models"

	"go.mongodb.org/mongo-driver/bson"
)

// ServiceRepository defines data access for service listings. Mutating
// methods that guard a lifecycle precondition take the conditional-update
// form and return false when the precondition no longer holds, so callers
// can distinguish a lost race from a hard error.
type ServiceRepository interface {
	// Create inserts a new service document.
	Create(service *models.Service) error
	// GetByID retrieves a service by ID, or (nil, nil) when absent.
	GetByID(id string) (*models.Service, error)
	// List returns services matching the filters, newest first, with a total count.
	List(filters models.ServiceFilters, page, limit int64) ([]models.Service, int64, error)
	// UpdateSetDocument applies a partial $set update.
	UpdateSetDocument(id string, updateDoc bson.M) error
	// Delete removes a service document.
	Delete(id string) error

	// MatchUser adds a user to matched_user_ids and moves an ACTIVE service
	// to IN_PROGRESS; the filter enforces remaining capacity.
	MatchUser(serviceID, userID string) (bool, error)
	// ApproveParticipant adds a user to matched_user_ids on an ACTIVE or
	// IN_PROGRESS service; the filter enforces remaining capacity unless the
	// user is already matched.
	ApproveParticipant(serviceID, userID string) (bool, error)
	// SetProviderConfirmed records the provider's completion confirmation
	// while the service is IN_PROGRESS.
	SetProviderConfirmed(serviceID string) (bool, error)
	// AddReceiverConfirmation records a matched participant's completion
	// confirmation while the service is IN_PROGRESS.
	AddReceiverConfirmation(serviceID, userID string) (bool, error)
	// CompleteIfInProgress moves IN_PROGRESS to COMPLETED. Exactly one
	// concurrent caller observes true.
	CompleteIfInProgress(serviceID string, at time.Time) (bool, error)
	// SetStatusIf moves the service to the target status only while its
	// current status is one of from.
	SetStatusIf(serviceID string, from []models.ServiceStatus, to models.ServiceStatus) (bool, error)
	// FindExpiring returns ACTIVE/IN_PROGRESS services whose deadline has passed.
	FindExpiring(now time.Time) ([]models.Service, error)
}
