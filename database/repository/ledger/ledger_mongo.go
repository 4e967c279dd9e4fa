package ledgerRepo

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

// MongoLedgerRepo implements LedgerRepository using MongoDB.
type MongoLedgerRepo struct {
	entries  *mongo.Collection
	failures *mongo.Collection
}

// NewMongoLedgerRepo creates a new instance of LedgerRepository using MongoDB.
func NewMongoLedgerRepo() LedgerRepository {
	repo := &MongoLedgerRepo{
		entries:  database.Collection("timebank_transactions"),
		failures: database.Collection("failed_timebank_transactions"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoLedgerRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	entryIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := r.entries.Indexes().CreateMany(ctx, entryIndexes); err != nil {
		return fmt.Errorf("failed to create ledger indexes: %w", err)
	}

	failureIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "reason", Value: 1}}},
	}
	if _, err := r.failures.Indexes().CreateMany(ctx, failureIndexes); err != nil {
		return fmt.Errorf("failed to create failure-log indexes: %w", err)
	}
	return nil
}

// InsertEntry appends a ledger movement.
func (r *MongoLedgerRepo) InsertEntry(entry *models.TimeBankEntry) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.entries.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	return nil
}

// InsertFailure appends a failed-mutation audit record.
func (r *MongoLedgerRepo) InsertFailure(failure *models.FailedTimeBankEntry) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.failures.InsertOne(ctx, failure); err != nil {
		return fmt.Errorf("failed to insert failed ledger entry: %w", err)
	}
	return nil
}

// EntriesByUser returns the most recent entries for one user.
func (r *MongoLedgerRepo) EntriesByUser(userID string, limit int64) ([]models.TimeBankEntry, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.entries.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch ledger entries for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var out []models.TimeBankEntry
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}
	return out, nil
}

// AllEntries returns entries across all users, newest first.
func (r *MongoLedgerRepo) AllEntries(page, limit int64) ([]models.TimeBankEntry, int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	total, err := r.entries.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.entries.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.TimeBankEntry
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode ledger entries: %w", err)
	}
	return out, total, nil
}

// AllFailures returns failure records, newest first.
func (r *MongoLedgerRepo) AllFailures(page, limit int64) ([]models.FailedTimeBankEntry, int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	total, err := r.failures.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count failure records: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.failures.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch failure records: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.FailedTimeBankEntry
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode failure records: %w", err)
	}
	return out, total, nil
}
