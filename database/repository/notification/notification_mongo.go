package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"gigbook/database/repository"
	"gigbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoNotificationRepo stores notifications waiting for (or done with) delivery.
type MongoNotificationRepo struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepo(db *mongo.Database) *MongoNotificationRepo {
	return &MongoNotificationRepo{coll: db.Collection("notifications")}
}

func (r *MongoNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

func (r *MongoNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	var n models.Notification
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&n); err != nil {
		return nil, repository.NotFoundOr(err, "error fetching notification %s", id)
	}
	return &n, nil
}

func (r *MongoNotificationRepo) MarkSent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, repository.DefaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"sent": true, "updatedAt": time.Now()}}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("error marking notification %s sent: %w", id, err)
	}
	return nil
}
