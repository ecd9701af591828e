package mongodb

import (
	"context"
	"fmt"
	"time"

	"mediroute/internal/models"
	"mediroute/internal/repositories/interfaces"
	"mediroute/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type hospitalRepository struct {
	collection *mongo.Collection
}

func NewHospitalRepository(db *mongo.Database) interfaces.HospitalRepository {
	return &hospitalRepository{
		collection: db.Collection("hospitals"),
	}
}

func (r *hospitalRepository) Create(ctx context.Context, hospital *models.Hospital) error {
	hospital.ID = primitive.NewObjectID()
	now := time.Now()
	hospital.CreatedAt = now
	hospital.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, hospital)
	if err != nil {
		return fmt.Errorf("failed to create hospital: %w", err)
	}

	return nil
}

func (r *hospitalRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&hospital)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("hospital not found")
		}
		return nil, fmt.Errorf("failed to get hospital: %w", err)
	}

	return &hospital, nil
}

func (r *hospitalRepository) GetByName(ctx context.Context, name string) (*models.Hospital, error) {
	var hospital models.Hospital
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&hospital)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("hospital not found by name")
		}
		return nil, fmt.Errorf("failed to get hospital by name: %w", err)
	}

	return &hospital, nil
}

func (r *hospitalRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update hospital: %w", err)
	}

	return nil
}

func (r *hospitalRepository) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Hospital, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count hospitals: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find hospitals: %w", err)
	}
	defer cursor.Close(ctx)

	hospitals, err := decodeHospitals(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}

	return hospitals, total, nil
}

func (r *hospitalRepository) GetAllUnpaged(ctx context.Context) ([]*models.Hospital, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find hospitals: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeHospitals(ctx, cursor)
}

// GetNearby filters in memory; the hospital directory is small enough that a
// geospatial index would be overkill.
func (r *hospitalRepository) GetNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Hospital, error) {
	hospitals, err := r.GetAllUnpaged(ctx)
	if err != nil {
		return nil, err
	}

	var nearby []*models.Hospital
	for _, h := range hospitals {
		if utils.IsWithinRadiusMeters(lat, lng, h.Lat, h.Lng, radiusMeters) {
			nearby = append(nearby, h)
		}
	}

	return nearby, nil
}

func (r *hospitalRepository) UpdateSpecialties(ctx context.Context, id primitive.ObjectID, specialties []string) error {
	now := time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "specialties_edited": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{
			"specialties":           specialties,
			"last_specialty_update": now,
			"updated_at":            now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update hospital specialties: %w", err)
	}

	return nil
}

func decodeHospitals(ctx context.Context, cursor *mongo.Cursor) ([]*models.Hospital, error) {
	var hospitals []*models.Hospital
	for cursor.Next(ctx) {
		var hospital models.Hospital
		if err := cursor.Decode(&hospital); err != nil {
			return nil, fmt.Errorf("failed to decode hospital: %w", err)
		}
		hospitals = append(hospitals, &hospital)
	}
	return hospitals, nil
}
