package joinRequestRepo

import "hive/models"

// JoinRequestRepository defines data access for join requests.
type JoinRequestRepository interface {
	// Create inserts a new join request document.
	Create(request *models.JoinRequest) error
	// GetByID retrieves a join request by ID, or (nil, nil) when absent.
	GetByID(id string) (*models.JoinRequest, error)
	// ListByService returns requests against one service, newest first.
	ListByService(serviceID string, page, limit int64) ([]models.JoinRequest, int64, error)
	// ListByUser returns requests made by one user, optionally status-filtered.
	ListByUser(userID string, status models.JoinRequestStatus, page, limit int64) ([]models.JoinRequest, int64, error)
	// FindByStatus returns the user's request against a service in the given
	// status, or (nil, nil).
	FindByStatus(serviceID, userID string, status models.JoinRequestStatus) (*models.JoinRequest, error)
	// TransitionStatus moves a request from one status to another in a single
	// conditional update. Returns false when the request is absent or no
	// longer in the source status.
	TransitionStatus(id string, from, to models.JoinRequestStatus, adminMessage string) (bool, error)
	// RejectPending bulk-rejects all PENDING requests for a service with a
	// reason. Safe to call redundantly; already-decided requests are untouched.
	RejectPending(serviceID, reason string) (int64, error)
}
