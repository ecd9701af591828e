package mongodb

import (
	"context"
	"fmt"
	"time"

	"mediroute/internal/models"
	"mediroute/internal/repositories/interfaces"
	"mediroute/internal/services"
	"mediroute/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type tokenRepository struct {
	collection *mongo.Collection
	cache      services.CacheService
}

func NewTokenRepository(db *mongo.Database, cache services.CacheService) interfaces.TokenRepository {
	return &tokenRepository{
		collection: db.Collection("emergency_tokens"),
		cache:      cache,
	}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.EmergencyToken) error {
	token.ID = primitive.NewObjectID()
	now := time.Now()
	token.CreatedAt = now
	token.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	if token.IsActive() {
		r.cacheToken(ctx, token)
	}

	return nil
}

func (r *tokenRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EmergencyToken, error) {
	if token := r.getTokenFromCache(ctx, id.Hex()); token != nil {
		return token, nil
	}

	var token models.EmergencyToken
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&token)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("token not found")
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if token.IsActive() {
		r.cacheToken(ctx, &token)
	}

	return &token, nil
}

func (r *tokenRepository) GetByCode(ctx context.Context, code string) (*models.EmergencyToken, error) {
	var token models.EmergencyToken
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&token)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, utils.NewNotFoundError("token not found by code")
		}
		return nil, fmt.Errorf("failed to get token by code: %w", err)
	}

	return &token, nil
}

// UpdateIfStatus is the compare-and-swap the state machine builds every
// transition on: the filter pins the current status, so a concurrent
// transition (or a row the caller may not touch) surfaces as MatchedCount 0
// instead of a silently accepted write.
func (r *tokenRepository) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, allowedFrom []models.TokenStatus, updates map[string]interface{}) (bool, error) {
	updates["updated_at"] = time.Now()

	filter := bson.M{"_id": id}
	if len(allowedFrom) > 0 {
		filter["status"] = bson.M{"$in": allowedFrom}
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": updates})
	if err != nil {
		return false, fmt.Errorf("failed to update token: %w", err)
	}

	r.invalidateTokenCache(ctx, id.Hex())

	return result.MatchedCount > 0, nil
}

func (r *tokenRepository) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error) {
	return r.findPaged(ctx, bson.M{}, params)
}

func (r *tokenRepository) GetByStatus(ctx context.Context, status models.TokenStatus, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error) {
	return r.findPaged(ctx, bson.M{"status": status}, params)
}

func (r *tokenRepository) GetByHospital(ctx context.Context, hospitalID primitive.ObjectID, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error) {
	return r.findPaged(ctx, bson.M{"hospital_id": hospitalID}, params)
}

func (r *tokenRepository) GetByDateRange(ctx context.Context, startDate, endDate time.Time, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error) {
	filter := bson.M{
		"created_at": bson.M{
			"$gte": startDate,
			"$lte": endDate,
		},
	}
	return r.findPaged(ctx, filter, params)
}

func (r *tokenRepository) GetActiveByAmbulance(ctx context.Context, ambulanceID primitive.ObjectID) (*models.EmergencyToken, error) {
	filter := bson.M{
		"ambulance_id": ambulanceID,
		"status":       bson.M{"$in": models.ActiveTokenStatuses},
	}

	var token models.EmergencyToken
	err := r.collection.FindOne(ctx, filter).Decode(&token)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active token: %w", err)
	}

	return &token, nil
}

func (r *tokenRepository) findPaged(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count tokens: %w", err)
	}

	opts := params.GetSortOptions()
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find tokens: %w", err)
	}
	defer cursor.Close(ctx)

	var tokens []*models.EmergencyToken
	for cursor.Next(ctx) {
		var token models.EmergencyToken
		if err := cursor.Decode(&token); err != nil {
			return nil, 0, fmt.Errorf("failed to decode token: %w", err)
		}
		tokens = append(tokens, &token)
	}

	return tokens, total, nil
}

// Cache operations
func (r *tokenRepository) cacheToken(ctx context.Context, token *models.EmergencyToken) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("token:%s", token.ID.Hex())
		r.cache.Set(ctx, cacheKey, token, 15*time.Minute)
	}
}

func (r *tokenRepository) getTokenFromCache(ctx context.Context, tokenID string) *models.EmergencyToken {
	if r.cache == nil {
		return nil
	}

	cacheKey := fmt.Sprintf("token:%s", tokenID)
	var token models.EmergencyToken
	err := r.cache.Get(ctx, cacheKey, &token)
	if err != nil {
		return nil
	}

	return &token
}

func (r *tokenRepository) invalidateTokenCache(ctx context.Context, tokenID string) {
	if r.cache != nil {
		cacheKey := fmt.Sprintf("token:%s", tokenID)
		r.cache.Delete(ctx, cacheKey)
	}
}
