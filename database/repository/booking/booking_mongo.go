package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	bookingColl *mongo.Collection
	lockColl    *mongo.Collection
}

func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		lockColl:    db.Collection("offering_locks"),
	}
}

// offeringField is the reference field a booking uses for the offering kind.
func offeringField(kind models.OfferingKind) string {
	switch kind {
	case models.OfferingMusician:
		return "musicianId"
	case models.OfferingVocalist:
		return "vocalistId"
	default:
		return "instrumentId"
	}
}

func (r *MongoBookingRepo) CreateMany(ctx context.Context, bookings []*models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	docs := make([]interface{}, 0, len(bookings))
	for _, b := range bookings {
		docs = append(docs, b)
	}
	if _, err := r.bookingColl.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("error creating bookings: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) FindOverlapping(ctx context.Context, ref models.OfferingRef, start, end time.Time) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	filter := bson.M{
		offeringField(ref.Kind): ref.ID,
		"startTime":             bson.M{"$lt": end},
		"endTime":               bson.M{"$gt": start},
		"status":                bson.M{"$ne": models.BookingCancelled},
	}

	var booking models.Booking
	err := r.bookingColl.FindOne(ctx, filter).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding overlapping bookings for %s: %w", ref, err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) ListByPayment(ctx context.Context, paymentID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"paymentId": paymentID})
}

func (r *MongoBookingRepo) ListByPaymentIDs(ctx context.Context, paymentIDs []string) ([]models.Booking, error) {
	if len(paymentIDs) == 0 {
		return []models.Booking{}, nil
	}
	return r.list(ctx, bson.M{"paymentId": bson.M{"$in": paymentIDs}})
}

func (r *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.bookingColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) UpdateStatusByPayment(ctx context.Context, paymentID string, status models.BookingStatus) error {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	if _, err := r.bookingColl.UpdateMany(ctx, bson.M{"paymentId": paymentID}, update); err != nil {
		return fmt.Errorf("error updating bookings of payment %s: %w", paymentID, err)
	}
	return nil
}

func (r *MongoBookingRepo) ReserveOffering(ctx context.Context, ref models.OfferingRef) error {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"version": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := r.lockColl.UpdateOne(ctx, bson.M{"_id": ref.Key()}, update, opts); err != nil {
		return fmt.Errorf("error reserving %s: %w", ref, err)
	}
	return nil
}
