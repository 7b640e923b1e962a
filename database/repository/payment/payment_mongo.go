package paymentRepo

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

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	coll *mongo.Collection
}

func NewMongoPaymentRepo(db *mongo.Database) *MongoPaymentRepo {
	return &MongoPaymentRepo{coll: db.Collection("payments")}
}

func (r *MongoPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, payment); err != nil {
		return fmt.Errorf("error creating payment: %w", err)
	}
	return nil
}

func (r *MongoPaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var payment models.Payment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&payment); err != nil {
		return nil, repository.NotFoundOr(err, "error fetching payment %s", id)
	}
	return &payment, nil
}

func (r *MongoPaymentRepo) SetBookingIDs(ctx context.Context, id string, bookingIDs []string) error {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"bookingIds": bookingIDs, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("error setting booking ids on payment %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("payment %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// UpdateStatus moves the payment from one status to another. The filter on the
// current status makes concurrent transitions of the same payment mutually exclusive.
func (r *MongoPaymentRepo) UpdateStatus(ctx context.Context, id string, from, to models.PaymentStatus, update models.PaymentUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	set := bson.M{"status": to, "updatedAt": time.Now()}
	if update.ProviderTransferID != nil {
		set["providerTransferId"] = *update.ProviderTransferID
	}
	if update.ProviderTransferReversedID != nil {
		set["providerTransferReversedId"] = *update.ProviderTransferReversedID
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("error updating payment %s to %s: %w", id, to, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("payment %s is no longer %s: %w", id, from, repository.ErrStaleState)
	}
	return nil
}

func (r *MongoPaymentRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Payment, error) {
	return r.list(ctx, bson.M{"customerId": customerID})
}

func (r *MongoPaymentRepo) ListByProvider(ctx context.Context, providerID string) ([]models.Payment, error) {
	return r.list(ctx, bson.M{"providerId": providerID})
}

func (r *MongoPaymentRepo) list(ctx context.Context, filter bson.M) ([]models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	defer cursor.Close(ctx)

	payments := []models.Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("error decoding payments: %w", err)
	}
	return payments, nil
}
