package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the booking indexes. The per-offering range indexes are
// sparse because each booking carries exactly one offering reference.
func (r *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "paymentId", Value: 1}},
			Options: options.Index().SetName("payment_idx"),
		},
	}
	for _, field := range []string{"musicianId", "vocalistId", "instrumentId"} {
		indexModels = append(indexModels, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}, {Key: "startTime", Value: 1}, {Key: "endTime", Value: 1}},
			Options: options.Index().SetSparse(true).SetName(field + "_range_idx"),
		})
	}

	if _, err := r.bookingColl.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
