package timebank

import (
	"fmt"

	"hive/models"
)

// LedgerError reports a rejected ledger mutation. The failure has already
// been written to the audit log by the time the caller sees this error.
type LedgerError struct {
	UserID  string
	Amount  float64
	Reason  models.FailureReason
	Balance *float64
}

func (e *LedgerError) Error() string {
	if e.Balance != nil {
		return fmt.Sprintf("ledger mutation rejected for user %s (amount %.2f, balance %.2f): %s",
			e.UserID, e.Amount, *e.Balance, e.Reason)
	}
	return fmt.Sprintf("ledger mutation rejected for user %s (amount %.2f): %s", e.UserID, e.Amount, e.Reason)
}
