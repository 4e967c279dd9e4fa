package joinRequestRepo

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

// MongoJoinRequestRepo implements JoinRequestRepository using MongoDB.
type MongoJoinRequestRepo struct {
	coll *mongo.Collection
}

// NewMongoJoinRequestRepo creates a new instance of JoinRequestRepository using MongoDB.
func NewMongoJoinRequestRepo() JoinRequestRepository {
	repo := &MongoJoinRequestRepo{coll: database.Collection("join_requests")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoJoinRequestRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "service_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new join request document.
func (r *MongoJoinRequestRepo) Create(request *models.JoinRequest) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	request.CreatedAt = now
	request.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, request); err != nil {
		return fmt.Errorf("failed to create join request: %w", err)
	}
	return nil
}

// GetByID retrieves a join request by its unique ID.
func (r *MongoJoinRequestRepo) GetByID(id string) (*models.JoinRequest, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var request models.JoinRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&request); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch join request with id %s: %w", id, err)
	}
	return &request, nil
}

// ListByService returns requests against one service, newest first.
func (r *MongoJoinRequestRepo) ListByService(serviceID string, page, limit int64) ([]models.JoinRequest, int64, error) {
	return r.list(bson.M{"service_id": serviceID}, page, limit)
}

// ListByUser returns requests made by one user, optionally status-filtered.
func (r *MongoJoinRequestRepo) ListByUser(userID string, status models.JoinRequestStatus, page, limit int64) ([]models.JoinRequest, int64, error) {
	query := bson.M{"user_id": userID}
	if status != "" {
		query["status"] = status
	}
	return r.list(query, page, limit)
}

func (r *MongoJoinRequestRepo) list(query bson.M, page, limit int64) ([]models.JoinRequest, int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count join requests: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch join requests: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.JoinRequest
	if err := cursor.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("failed to decode join requests: %w", err)
	}
	return out, total, nil
}

// FindByStatus returns the user's request against a service in the given status.
func (r *MongoJoinRequestRepo) FindByStatus(serviceID, userID string, status models.JoinRequestStatus) (*models.JoinRequest, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	query := bson.M{"service_id": serviceID, "user_id": userID, "status": status}
	var request models.JoinRequest
	if err := r.coll.FindOne(ctx, query).Decode(&request); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch join request: %w", err)
	}
	return &request, nil
}

// TransitionStatus moves a request between statuses in one conditional update.
func (r *MongoJoinRequestRepo) TransitionStatus(id string, from, to models.JoinRequestStatus, adminMessage string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	setDoc := bson.M{"status": to, "updated_at": time.Now()}
	if adminMessage != "" {
		setDoc["admin_message"] = adminMessage
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "status": from}, bson.M{"$set": setDoc})
	if err != nil {
		return false, fmt.Errorf("failed to transition join request %s: %w", id, err)
	}
	return result.MatchedCount > 0, nil
}

// RejectPending bulk-rejects all PENDING requests for a service.
func (r *MongoJoinRequestRepo) RejectPending(serviceID, reason string) (int64, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	filter := bson.M{"service_id": serviceID, "status": models.JoinRequestPending}
	update := bson.M{"$set": bson.M{
		"status":        models.JoinRequestRejected,
		"admin_message": reason,
		"updated_at":    time.Now(),
	}}

	result, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to reject pending requests for service %s: %w", serviceID, err)
	}
	return result.ModifiedCount, nil
}
