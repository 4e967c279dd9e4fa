package userRepo

import (
	"hive/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository defines methods for user data access.
// Lookup methods return (nil, nil) when no matching user exists.
type UserRepository interface {
	// Create inserts a new user record.
	Create(user *models.User) error
	// Update replaces an existing user record.
	Update(user *models.User) error
	// UpdateSetDocument applies a partial $set update to a user record.
	UpdateSetDocument(id string, updateDoc bson.M) error
	// GetByID retrieves a user by its unique ID.
	GetByID(id string) (*models.User, error)
	// GetByEmail retrieves a user by its email address.
	GetByEmail(email string) (*models.User, error)
	// GetByUsername retrieves a user by its username.
	GetByUsername(username string) (*models.User, error)
	// GetAll retrieves all users.
	GetAll() ([]models.User, error)
	// AdjustBalance atomically applies a signed delta to the user's TimeBank
	// balance. The update filter re-validates the balance precondition
	// (below maxBalance for earns, sufficient funds for spends) so concurrent
	// requests cannot double-spend. Returns false when the precondition no
	// longer holds or the user is missing.
	AdjustBalance(id string, delta float64, maxBalance float64) (bool, error)
}
