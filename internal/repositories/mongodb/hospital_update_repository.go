package mongodb

import (
	"context"
	"fmt"
	"time"

	"mediroute/internal/models"
	"mediroute/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type hospitalUpdateRepository struct {
	collection *mongo.Collection
}

func NewHospitalUpdateRepository(db *mongo.Database) interfaces.HospitalUpdateRepository {
	return &hospitalUpdateRepository{
		collection: db.Collection("hospital_updates"),
	}
}

func (r *hospitalUpdateRepository) Create(ctx context.Context, update *models.HospitalUpdate) error {
	update.ID = primitive.NewObjectID()
	update.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, update)
	if err != nil {
		return fmt.Errorf("failed to create hospital update: %w", err)
	}

	return nil
}

func (r *hospitalUpdateRepository) GetByHospital(ctx context.Context, hospitalID primitive.ObjectID, limit int) ([]*models.HospitalUpdate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"hospital_id": hospitalID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find hospital updates: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeHospitalUpdates(ctx, cursor)
}

func (r *hospitalUpdateRepository) GetSince(ctx context.Context, since time.Time) ([]*models.HospitalUpdate, error) {
	filter := bson.M{"created_at": bson.M{"$gte": since}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find hospital updates: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeHospitalUpdates(ctx, cursor)
}

func decodeHospitalUpdates(ctx context.Context, cursor *mongo.Cursor) ([]*models.HospitalUpdate, error) {
	var updates []*models.HospitalUpdate
	for cursor.Next(ctx) {
		var update models.HospitalUpdate
		if err := cursor.Decode(&update); err != nil {
			return nil, fmt.Errorf("failed to decode hospital update: %w", err)
		}
		updates = append(updates, &update)
	}
	return updates, nil
}
