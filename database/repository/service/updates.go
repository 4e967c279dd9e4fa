package serviceRepo

import (
	"fmt"
	"time"

	"hive/models"

	"go.mongodb.org/mongo-driver/bson"
)

// Conditional lifecycle updates. Each filter re-validates the precondition it
// guards, so concurrent requests converge instead of double-applying.

// MatchUser adds a user to matched_user_ids and moves the service to
// IN_PROGRESS; only ACTIVE services with free capacity match the filter.
func (r *MongoServiceRepo) MatchUser(serviceID, userID string) (bool, error) {
	filter := bson.M{
		"id":     serviceID,
		"status": models.ServiceActive,
		"$expr":  bson.M{"$lt": bson.A{bson.M{"$size": "$matched_user_ids"}, "$max_participants"}},
	}
	update := bson.M{
		"$addToSet": bson.M{"matched_user_ids": userID},
		"$set": bson.M{
			"status":     models.ServiceInProgress,
			"updated_at": time.Now(),
		},
	}
	return r.conditionalUpdate(serviceID, filter, update)
}

// ApproveParticipant adds an approved join requester to matched_user_ids and
// ensures the service is IN_PROGRESS. A user who is already matched passes
// the filter regardless of capacity, keeping the operation idempotent.
func (r *MongoServiceRepo) ApproveParticipant(serviceID, userID string) (bool, error) {
	filter := bson.M{
		"id":     serviceID,
		"status": bson.M{"$in": []models.ServiceStatus{models.ServiceActive, models.ServiceInProgress}},
		"$or": bson.A{
			bson.M{"matched_user_ids": userID},
			bson.M{"$expr": bson.M{"$lt": bson.A{bson.M{"$size": "$matched_user_ids"}, "$max_participants"}}},
		},
	}
	update := bson.M{
		"$addToSet": bson.M{"matched_user_ids": userID},
		"$set": bson.M{
			"status":     models.ServiceInProgress,
			"updated_at": time.Now(),
		},
	}
	return r.conditionalUpdate(serviceID, filter, update)
}

// SetProviderConfirmed records the provider's completion confirmation.
func (r *MongoServiceRepo) SetProviderConfirmed(serviceID string) (bool, error) {
	filter := bson.M{"id": serviceID, "status": models.ServiceInProgress}
	update := bson.M{
		"$set": bson.M{
			"provider_confirmed": true,
			"updated_at":         time.Now(),
		},
	}
	return r.conditionalUpdate(serviceID, filter, update)
}

// AddReceiverConfirmation records a matched participant's confirmation.
// The filter requires membership in matched_user_ids, preserving the
// invariant receiver_confirmed_ids ⊆ matched_user_ids.
func (r *MongoServiceRepo) AddReceiverConfirmation(serviceID, userID string) (bool, error) {
	filter := bson.M{
		"id":               serviceID,
		"status":           models.ServiceInProgress,
		"matched_user_ids": userID,
	}
	update := bson.M{
		"$addToSet": bson.M{"receiver_confirmed_ids": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	return r.conditionalUpdate(serviceID, filter, update)
}

// CompleteIfInProgress moves IN_PROGRESS to COMPLETED. Under concurrent
// confirmations exactly one caller observes true and runs settlement.
func (r *MongoServiceRepo) CompleteIfInProgress(serviceID string, at time.Time) (bool, error) {
	filter := bson.M{"id": serviceID, "status": models.ServiceInProgress}
	update := bson.M{
		"$set": bson.M{
			"status":       models.ServiceCompleted,
			"completed_at": at,
			"updated_at":   time.Now(),
		},
	}
	return r.conditionalUpdate(serviceID, filter, update)
}

// SetStatusIf moves the service to the target status only from one of the
// given source statuses.
func (r *MongoServiceRepo) SetStatusIf(serviceID string, from []models.ServiceStatus, to models.ServiceStatus) (bool, error) {
	filter := bson.M{"id": serviceID, "status": bson.M{"$in": from}}
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": time.Now(),
		},
	}
	return r.conditionalUpdate(serviceID, filter, update)
}

func (r *MongoServiceRepo) conditionalUpdate(serviceID string, filter, update bson.M) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update service %s: %w", serviceID, err)
	}
	return result.MatchedCount > 0, nil
}
