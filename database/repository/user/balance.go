package userRepo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// AdjustBalance applies a signed delta to the user's TimeBank balance with a
// filter that re-validates the precondition, so check-then-write races cannot
// overdraw or overfill an account:
//   - earns (delta > 0) require the balance to still be below maxBalance;
//   - spends (delta < 0) require the balance to still cover the full amount.
func (r *MongoUserRepo) AdjustBalance(id string, delta float64, maxBalance float64) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	switch {
	case delta > 0:
		filter["timebank_balance"] = bson.M{"$lt": maxBalance}
	case delta < 0:
		filter["timebank_balance"] = bson.M{"$gte": -delta}
	}

	update := bson.M{
		"$inc": bson.M{"timebank_balance": delta},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to adjust balance for user %s: %w", id, err)
	}
	return result.MatchedCount > 0, nil
}
