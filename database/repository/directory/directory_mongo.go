package directoryRepo

import (
	"context"
	"fmt"

	"gigbook/database/repository"
	"gigbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// offeringDoc covers the three offering collections. Musicians and vocalists are
// owned through userId and list workDays; instruments use creatorId and availability.
type offeringDoc struct {
	ID           string   `bson:"id"`
	UserID       string   `bson:"userId"`
	CreatorID    string   `bson:"creatorId"`
	RatePerHour  float64  `bson:"ratePerHour"`
	WorkDays     []string `bson:"workDays"`
	Availability []string `bson:"availability"`
}

// MongoDirectoryRepo reads the profile collections owned by the profile service.
type MongoDirectoryRepo struct {
	db       *mongo.Database
	userColl *mongo.Collection
}

func NewMongoDirectoryRepo(db *mongo.Database) *MongoDirectoryRepo {
	return &MongoDirectoryRepo{db: db, userColl: db.Collection("users")}
}

func collectionFor(kind models.OfferingKind) (string, error) {
	switch kind {
	case models.OfferingMusician:
		return "musicians", nil
	case models.OfferingVocalist:
		return "vocalists", nil
	case models.OfferingInstrument:
		return "instruments", nil
	}
	return "", fmt.Errorf("unknown offering kind %q", kind)
}

func (r *MongoDirectoryRepo) GetOffering(ctx context.Context, ref models.OfferingRef) (*models.Offering, error) {
	name, err := collectionFor(ref.Kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var doc offeringDoc
	if err := r.db.Collection(name).FindOne(ctx, bson.M{"id": ref.ID}).Decode(&doc); err != nil {
		return nil, repository.NotFoundOr(err, "error fetching %s", ref)
	}

	offering := &models.Offering{
		Ref:                ref,
		ProviderID:         doc.UserID,
		HourlyRate:         doc.RatePerHour,
		WeeklyAvailability: doc.WorkDays,
	}
	if ref.Kind == models.OfferingInstrument {
		offering.ProviderID = doc.CreatorID
		offering.WeeklyAvailability = doc.Availability
	}
	return offering, nil
}

func (r *MongoDirectoryRepo) GetPayoutDestination(ctx context.Context, providerID string) (string, error) {
	user, err := r.getUser(ctx, providerID, bson.M{"id": 1, "connectAccountId": 1})
	if err != nil {
		return "", err
	}
	return user.ConnectAccountID, nil
}

func (r *MongoDirectoryRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, id, nil)
}

func (r *MongoDirectoryRepo) getUser(ctx context.Context, id string, projection bson.M) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}
	var user models.User
	filter := bson.M{"id": id, "isDelete": bson.M{"$ne": true}}
	if err := r.userColl.FindOne(ctx, filter, opts).Decode(&user); err != nil {
		return nil, repository.NotFoundOr(err, "error fetching user %s", id)
	}
	return &user, nil
}

func (r *MongoDirectoryRepo) SetGatewayCustomerID(ctx context.Context, userID, customerID string) error {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	res, err := r.userColl.UpdateOne(ctx, bson.M{"id": userID}, bson.M{"$set": bson.M{"customerId": customerID}})
	if err != nil {
		return fmt.Errorf("error storing gateway customer for user %s: %w", userID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
	}
	return nil
}
