package transaction

import (
	"errors"
	"fmt"

	"hive/models"
)

var (
	// ErrNotFound is returned when the target transaction does not exist.
	ErrNotFound = errors.New("transaction not found")
	// ErrUnauthorized is returned when the caller is neither party.
	ErrUnauthorized = errors.New("not a party to this transaction")
	// ErrServiceNotFound is returned when the referenced service does not exist.
	ErrServiceNotFound = errors.New("service not found")
	// ErrUserNotFound is returned when a referenced party does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoApprovedRequest is returned when creating a transaction without an
	// approved join request between the parties.
	ErrNoApprovedRequest = errors.New("no approved join request between the parties")
)

// InvalidTransitionError reports a status change the lifecycle forbids.
type InvalidTransitionError struct {
	From models.TransactionStatus
	To   models.TransactionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transaction transition from %s to %s", e.From, e.To)
}
