package interfaces

import (
	"context"
	"time"

	"mediroute/internal/models"
	"mediroute/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TokenRepository interface {
	// Basic CRUD operations. Tokens are never deleted; they only reach a
	// terminal status.
	Create(ctx context.Context, token *models.EmergencyToken) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.EmergencyToken, error)
	GetByCode(ctx context.Context, code string) (*models.EmergencyToken, error)

	// UpdateIfStatus applies updates only when the token's current status is
	// one of allowedFrom. Returns false when no row matched, which callers
	// treat as a transition conflict. This is the conditional-update
	// primitive replacing write-then-read-back.
	UpdateIfStatus(ctx context.Context, id primitive.ObjectID, allowedFrom []models.TokenStatus, updates map[string]interface{}) (bool, error)

	// Search and filtering
	GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error)
	GetByStatus(ctx context.Context, status models.TokenStatus, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error)
	GetByHospital(ctx context.Context, hospitalID primitive.ObjectID, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error)
	GetByDateRange(ctx context.Context, startDate, endDate time.Time, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error)
	GetActiveByAmbulance(ctx context.Context, ambulanceID primitive.ObjectID) (*models.EmergencyToken, error)
}
