package ledgerRepo

import "hive/models"

// LedgerRepository persists the append-only TimeBank history plus the
// failed-transaction audit log. Entries are never updated or deleted.
type LedgerRepository interface {
	// InsertEntry appends a successful ledger movement.
	InsertEntry(entry *models.TimeBankEntry) error
	// InsertFailure appends a rejected-mutation audit record.
	InsertFailure(failure *models.FailedTimeBankEntry) error
	// EntriesByUser returns the most recent entries for one user.
	EntriesByUser(userID string, limit int64) ([]models.TimeBankEntry, error)
	// AllEntries returns entries across all users, newest first, with a total count.
	AllEntries(page, limit int64) ([]models.TimeBankEntry, int64, error)
	// AllFailures returns failure records, newest first, with a total count.
	AllFailures(page, limit int64) ([]models.FailedTimeBankEntry, int64, error)
}
