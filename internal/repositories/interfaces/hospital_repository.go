package interfaces

import (
	"context"

	"mediroute/internal/models"
	"mediroute/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HospitalRepository interface {
	Create(ctx context.Context, hospital *models.Hospital) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error)
	GetByName(ctx context.Context, name string) (*models.Hospital, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error

	GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Hospital, int64, error)
	GetAllUnpaged(ctx context.Context) ([]*models.Hospital, error)
	GetNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Hospital, error)

	// UpdateSpecialties persists derived specialty tags; skipped when the
	// facility has edited its own list explicitly.
	UpdateSpecialties(ctx context.Context, id primitive.ObjectID, specialties []string) error
}
