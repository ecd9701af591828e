package interfaces

import (
	"context"
	"time"

	"mediroute/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HospitalUpdateRepository is append-only: records are created and read,
// never mutated or removed.
type HospitalUpdateRepository interface {
	Create(ctx context.Context, update *models.HospitalUpdate) error
	GetByHospital(ctx context.Context, hospitalID primitive.ObjectID, limit int) ([]*models.HospitalUpdate, error)
	GetSince(ctx context.Context, since time.Time) ([]*models.HospitalUpdate, error)
}
