package service

import (
	"errors"
	"fmt"

	"hive/models"
)

var (
	// ErrNotFound is returned when the target service does not exist.
	ErrNotFound = errors.New("service not found")
	// ErrUnauthorized is returned when the caller has no standing on the service.
	ErrUnauthorized = errors.New("not authorized for this service")
	// ErrOwnService is returned when a provider tries to join their own listing.
	ErrOwnService = errors.New("cannot join your own service")
	// ErrCapacityExceeded is returned when matched_user_ids is already full.
	ErrCapacityExceeded = errors.New("service has reached its maximum participants")
	// ErrPastDeadline is returned when a service is created or updated with a
	// deadline in the past.
	ErrPastDeadline = errors.New("deadline must be in the future")
	// ErrNotDeletable is returned when deleting a service that already has
	// matched participants or reached a terminal state.
	ErrNotDeletable = errors.New("only active services can be deleted")
)

// InvalidTransitionError reports a status change the lifecycle table forbids.
type InvalidTransitionError struct {
	From models.ServiceStatus
	To   models.ServiceStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid service transition from %s to %s", e.From, e.To)
}
