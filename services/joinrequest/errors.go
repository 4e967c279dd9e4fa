package joinrequest

import "errors"

var (
	// ErrNotFound is returned when the target join request does not exist.
	ErrNotFound = errors.New("join request not found")
	// ErrUnauthorized is returned when the caller may not act on the request.
	ErrUnauthorized = errors.New("not authorized for this join request")
	// ErrServiceNotFound is returned when the referenced service does not exist.
	ErrServiceNotFound = errors.New("service not found")
	// ErrServiceClosed is returned when the service is in a terminal state.
	ErrServiceClosed = errors.New("service is no longer accepting participants")
	// ErrOwnService is returned when a provider requests to join their own listing.
	ErrOwnService = errors.New("cannot request to join your own service")
	// ErrAlreadyMatched is returned when the user already participates.
	ErrAlreadyMatched = errors.New("user is already a participant of this service")
	// ErrDuplicatePending is returned when an undecided request already exists.
	ErrDuplicatePending = errors.New("a pending join request already exists for this service")
	// ErrNotPending is returned when acting on an already-decided request.
	ErrNotPending = errors.New("join request has already been decided")
	// ErrCapacityExceeded is returned when approval would oversubscribe the service.
	ErrCapacityExceeded = errors.New("service has reached its maximum participants")
)
