package transactionRepo

import (
	"time"

	"hive/models"

	"go.mongodb.org/mongo-driver/bson"
)

// TransactionRepository defines data access for bilateral transactions.
type TransactionRepository interface {
	// Create inserts a new transaction document.
	Create(tx *models.Transaction) error
	// GetByID retrieves a transaction by ID, or (nil, nil) when absent.
	GetByID(id string) (*models.Transaction, error)
	// ListByUser returns transactions where the user is provider or requester.
	ListByUser(userID string, page, limit int64) ([]models.Transaction, int64, error)
	// ListByService returns transactions for one service.
	ListByService(serviceID string, page, limit int64) ([]models.Transaction, int64, error)
	// ListAll returns all transactions, newest first.
	ListAll(page, limit int64) ([]models.Transaction, int64, error)
	// UpdateSetDocument applies a partial $set update.
	UpdateSetDocument(id string, updateDoc bson.M) error
	// SetConfirmed records one side's completion confirmation. Terminal
	// transactions never match the filter, so repeated calls are no-ops.
	SetConfirmed(id string, provider bool) (bool, error)
	// CompleteIfOpen moves a non-terminal transaction to COMPLETED. Exactly
	// one concurrent caller observes true.
	CompleteIfOpen(id string, at time.Time) (bool, error)
}
