package services

import (
	"context"

	"mediroute/internal/models"
	"mediroute/internal/repositories/interfaces"
	"mediroute/internal/utils"
	"mediroute/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterAmbulanceRequest struct {
	CallSign   string             `json:"call_sign" validate:"required"`
	OperatorID primitive.ObjectID `json:"operator_id"`
	Lat        float64            `json:"lat"`
	Lng        float64            `json:"lng"`
	PushToken  string             `json:"push_token"`
}

// AmbulancePosition is the dashboard view of one vehicle: raw telemetry plus
// the coarse travel direction derived from its heading.
type AmbulancePosition struct {
	Ambulance *models.Ambulance     `json:"ambulance"`
	Direction utils.TravelDirection `json:"direction"`
}

type AmbulanceService interface {
	Register(ctx context.Context, req *RegisterAmbulanceRequest) (*models.Ambulance, error)
	GetAmbulance(ctx context.Context, id primitive.ObjectID) (*models.Ambulance, error)
	GetAmbulances(ctx context.Context, params *utils.PaginationParams) ([]*models.Ambulance, int64, error)

	// UpdateLocation ingests one telemetry event from the vehicle app.
	UpdateLocation(ctx context.Context, id primitive.ObjectID, update *models.LocationUpdate) (*AmbulancePosition, error)
}

type ambulanceService struct {
	ambulanceRepo interfaces.AmbulanceRepository
	notifier      NotificationService
	logger        *logger.Logger
}

func NewAmbulanceService(ambulanceRepo interfaces.AmbulanceRepository, notifier NotificationService, log *logger.Logger) AmbulanceService {
	return &ambulanceService{
		ambulanceRepo: ambulanceRepo,
		notifier:      notifier,
		logger:        log,
	}
}

func (s *ambulanceService) Register(ctx context.Context, req *RegisterAmbulanceRequest) (*models.Ambulance, error) {
	if existing, err := s.ambulanceRepo.GetByCallSign(ctx, req.CallSign); err == nil && existing != nil {
		return nil, utils.NewConflictError("ambulance with this call sign already exists")
	}

	ambulance := &models.Ambulance{
		CallSign:        req.CallSign,
		OperatorID:      req.OperatorID,
		Lat:             req.Lat,
		Lng:             req.Lng,
		EmergencyStatus: models.EmergencyStatusInactive,
		PushToken:       req.PushToken,
	}
	if err := s.ambulanceRepo.Create(ctx, ambulance); err != nil {
		return nil, err
	}

	s.notifier.PublishRowEvent(ctx, "ambulances", "insert", ambulance)
	return ambulance, nil
}

func (s *ambulanceService) GetAmbulance(ctx context.Context, id primitive.ObjectID) (*models.Ambulance, error) {
	return s.ambulanceRepo.GetByID(ctx, id)
}

func (s *ambulanceService) GetAmbulances(ctx context.Context, params *utils.PaginationParams) ([]*models.Ambulance, int64, error) {
	return s.ambulanceRepo.GetAll(ctx, params)
}

func (s *ambulanceService) UpdateLocation(ctx context.Context, id primitive.ObjectID, update *models.LocationUpdate) (*AmbulancePosition, error) {
	if err := s.ambulanceRepo.UpdateLocation(ctx, id, update); err != nil {
		return nil, err
	}

	ambulance, err := s.ambulanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	position := &AmbulancePosition{
		Ambulance: ambulance,
		Direction: utils.DirectionFromHeading(update.Heading),
	}

	s.notifier.PublishRowEvent(ctx, "ambulances", "update", position)
	return position, nil
}
