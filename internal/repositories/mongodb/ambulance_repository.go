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

type ambulanceRepository struct {
	collection *mongo.Collection
}

func NewAmbulanceRepository(db *mongo.Database) interfaces.AmbulanceRepository {
	return &ambulanceRepository{
		collection: db.Collection("ambulances"),
	}
}

func (r *ambulanceRepository) Create(ctx context.Context, ambulance *models.Ambulance) error {
	ambulance.ID = primitive.NewObjectID()
	now := time.Now()
	ambulance.CreatedAt = now
	ambulance.UpdatedAt = now
	if ambulance.EmergencyStatus == "" {
		ambulance.EmergencyStatus = models.EmergencyStatusInactive
	}

	_, err := r.collection.InsertOne(ctx, ambulance)
	if err != nil {
		return fmt.Errorf("failed to create ambulance: %w", err)
	}

	return nil
}

func (r *ambulanceRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ambulance, error) {
	var ambulance models.Ambulance
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ambulance)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("ambulance not found")
		}
		return nil, fmt.Errorf("failed to get ambulance: %w", err)
	}

	return &ambulance, nil
}

func (r *ambulanceRepository) GetByCallSign(ctx context.Context, callSign string) (*models.Ambulance, error) {
	var ambulance models.Ambulance
	err := r.collection.FindOne(ctx, bson.M{"call_sign": callSign}).Decode(&ambulance)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("ambulance not found by call sign")
		}
		return nil, fmt.Errorf("failed to get ambulance by call sign: %w", err)
	}

	return &ambulance, nil
}

func (r *ambulanceRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update ambulance: %w", err)
	}

	return nil
}

func (r *ambulanceRepository) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Ambulance, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count ambulances: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find ambulances: %w", err)
	}
	defer cursor.Close(ctx)

	var ambulances []*models.Ambulance
	for cursor.Next(ctx) {
		var ambulance models.Ambulance
		if err := cursor.Decode(&ambulance); err != nil {
			return nil, 0, fmt.Errorf("failed to decode ambulance: %w", err)
		}
		ambulances = append(ambulances, &ambulance)
	}

	return ambulances, total, nil
}

func (r *ambulanceRepository) UpdateLocation(ctx context.Context, id primitive.ObjectID, update *models.LocationUpdate) error {
	now := time.Now()

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"lat":          update.Lat,
			"lng":          update.Lng,
			"heading":      update.Heading,
			"speed_kmh":    update.SpeedKmh,
			"last_seen_at": now,
			"updated_at":   now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update ambulance location: %w", err)
	}

	return nil
}

func (r *ambulanceRepository) LinkActiveToken(ctx context.Context, id primitive.ObjectID, tokenID primitive.ObjectID, status models.EmergencyStatus) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"active_token_id":  tokenID,
			"emergency_status": status,
			"updated_at":       time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to link active token: %w", err)
	}

	return nil
}

func (r *ambulanceRepository) ClearActiveToken(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"active_token_id":  nil,
			"emergency_status": models.EmergencyStatusInactive,
			"updated_at":       time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear active token: %w", err)
	}

	return nil
}
