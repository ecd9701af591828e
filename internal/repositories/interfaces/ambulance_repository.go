package interfaces

import (
	"context"

	"mediroute/internal/models"
	"mediroute/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AmbulanceRepository interface {
	Create(ctx context.Context, ambulance *models.Ambulance) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ambulance, error)
	GetByCallSign(ctx context.Context, callSign string) (*models.Ambulance, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Ambulance, int64, error)

	// Location events from the vehicle app.
	UpdateLocation(ctx context.Context, id primitive.ObjectID, update *models.LocationUpdate) error

	// Active-token back-reference maintenance.
	LinkActiveToken(ctx context.Context, id primitive.ObjectID, tokenID primitive.ObjectID, status models.EmergencyStatus) error
	ClearActiveToken(ctx context.Context, id primitive.ObjectID) error
}
