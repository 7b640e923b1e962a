package refundRepo

import (
	"context"
	"fmt"
	"time"

	"gigbook/database/repository"
	"gigbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRefundRepo implements RefundRepository using MongoDB.
type MongoRefundRepo struct {
	coll *mongo.Collection
}

func NewMongoRefundRepo(db *mongo.Database) *MongoRefundRepo {
	return &MongoRefundRepo{coll: db.Collection("refund_requests")}
}

func (r *MongoRefundRepo) Create(ctx context.Context, req *models.RefundRequest) error {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("error creating refund request: %w", err)
	}
	return nil
}

func (r *MongoRefundRepo) GetByID(ctx context.Context, id string) (*models.RefundRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var req models.RefundRequest
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&req); err != nil {
		return nil, repository.NotFoundOr(err, "error fetching refund request %s", id)
	}
	return &req, nil
}

func (r *MongoRefundRepo) FindPendingByPayment(ctx context.Context, paymentID string) (*models.RefundRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var req models.RefundRequest
	err := r.coll.FindOne(ctx, bson.M{"paymentId": paymentID, "status": models.RefundPending}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching pending refund for payment %s: %w", paymentID, err)
	}
	return &req, nil
}

func (r *MongoRefundRepo) UpdateStatus(ctx context.Context, id string, from, to models.RefundStatus) error {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "status": from}, update)
	if err != nil {
		return fmt.Errorf("error updating refund request %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("refund request %s is no longer %s: %w", id, from, repository.ErrStaleState)
	}
	return nil
}

func (r *MongoRefundRepo) ListByStatus(ctx context.Context, status models.RefundStatus) ([]models.RefundRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing refund requests: %w", err)
	}
	defer cursor.Close(ctx)

	reqs := []models.RefundRequest{}
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, fmt.Errorf("error decoding refund requests: %w", err)
	}
	return reqs, nil
}

func (r *MongoRefundRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "paymentId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create refund indexes: %w", err)
	}
	return nil
}
