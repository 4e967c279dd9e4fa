package transactionRepo

import (
	"context"
	"fmt"
	"time"

	"hive/database"
	"hive/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// terminal statuses; no field mutation is allowed past these.
var terminalStatuses = []models.TransactionStatus{
	models.TransactionCompleted,
	models.TransactionCancelled,
}

// MongoTransactionRepo implements TransactionRepository using MongoDB.
type MongoTransactionRepo struct {
	coll *mongo.Collection
}

// NewMongoTransactionRepo creates a new instance of TransactionRepository using MongoDB.
func NewMongoTransactionRepo() TransactionRepository {
	repo := &MongoTransactionRepo{coll: database.Collection("transactions")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoTransactionRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "service_id", Value: 1}}},
		{Keys: bson.D{{Key: "provider_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "requester_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new transaction document.
func (r *MongoTransactionRepo) Create(tx *models.Transaction) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by its unique ID.
func (r *MongoTransactionRepo) GetByID(id string) (*models.Transaction, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var tx models.Transaction
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&tx); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch transaction with id %s: %w", id, err)
	}
	return &tx, nil
}

// ListByUser returns transactions where the user is provider or requester.
func (r *MongoTransactionRepo) ListByUser(userID string, page, limit int64) ([]models.Transaction, int64, error) {
	query := bson.M{"$or": bson.A{
		bson.M{"provider_id": userID},
		bson.M{"requester_id": userID},
	}}
	return r.list(query, page, limit)
}

// ListByService returns transactions for one service.
func (r *MongoTransactionRepo) ListByService(serviceID string, page, limit int64) ([]models.Transaction, int64, error) {
	return r.list(bson.M{"service_id": serviceID}, page, limit)
}

// ListAll returns all transactions, newest first.
func (r *MongoTransactionRepo) ListAll(page, limit int64) ([]models.Transaction, int64, error) {
	return r.list(bson.M{}, page, limit)
}

func (r *MongoTransactionRepo) list(query bson.M, page, limit int64) ([]models.Transaction, int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Transaction
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode transactions: %w", err)
	}
	return out, total, nil
}

// UpdateSetDocument applies a partial update to a transaction document.
func (r *MongoTransactionRepo) UpdateSetDocument(id string, updateDoc bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	updateDoc["updated_at"] = time.Now()
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": updateDoc})
	if err != nil {
		return fmt.Errorf("failed to update transaction with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("transaction with id %s not found", id)
	}
	return nil
}

// SetConfirmed records one side's completion confirmation on a non-terminal
// transaction.
func (r *MongoTransactionRepo) SetConfirmed(id string, provider bool) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	field := "requester_confirmed"
	if provider {
		field = "provider_confirmed"
	}
	filter := bson.M{
		"id":     id,
		"status": bson.M{"$nin": terminalStatuses},
	}
	update := bson.M{"$set": bson.M{field: true, "updated_at": time.Now()}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to confirm transaction %s: %w", id, err)
	}
	return result.MatchedCount > 0, nil
}

// CompleteIfOpen moves a non-terminal transaction to COMPLETED.
func (r *MongoTransactionRepo) CompleteIfOpen(id string, at time.Time) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": bson.M{"$nin": terminalStatuses},
	}
	update := bson.M{"$set": bson.M{
		"status":       models.TransactionCompleted,
		"completed_at": at,
		"updated_at":   time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to complete transaction %s: %w", id, err)
	}
	return result.MatchedCount > 0, nil
}
