package services

import (
	"context"
	"time"

	"mediroute/internal/models"
	"mediroute/internal/repositories/interfaces"
	"mediroute/internal/utils"
	"mediroute/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateHospitalRequest struct {
	Name        string   `json:"name" validate:"required"`
	Lat         float64  `json:"lat" validate:"required,latitude"`
	Lng         float64  `json:"lng" validate:"required,longitude"`
	Address     string   `json:"address"`
	Specialties []string `json:"specialties"`
	PushToken   string   `json:"push_token"`
}

type UpdateHospitalRequest struct {
	Address     *string  `json:"address"`
	Specialties []string `json:"specialties"`
	PushToken   *string  `json:"push_token"`
}

type RecordUpdateRequest struct {
	Type    models.HospitalUpdateType `json:"type" validate:"required"`
	Payload map[string]interface{}    `json:"payload" validate:"required"`
}

type HospitalService interface {
	CreateHospital(ctx context.Context, req *CreateHospitalRequest) (*models.Hospital, error)
	UpdateHospital(ctx context.Context, id primitive.ObjectID, req *UpdateHospitalRequest) (*models.Hospital, error)
	GetHospital(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error)
	GetHospitals(ctx context.Context, params *utils.PaginationParams) ([]*models.Hospital, int64, error)
	GetNearbyHospitals(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Hospital, error)

	// RecordUpdate appends a capability record and recomputes the derived
	// specialty tags from the enlarged evidence set.
	RecordUpdate(ctx context.Context, hospitalID primitive.ObjectID, req *RecordUpdateRequest) (*models.HospitalUpdate, error)
	GetUpdates(ctx context.Context, hospitalID primitive.ObjectID, limit int) ([]*models.HospitalUpdate, error)

	// SeedDirectory inserts the built-in facility directory. Facilities that
	// already exist by name are left alone; live records always win.
	SeedDirectory(ctx context.Context) (int, error)
}

type hospitalService struct {
	hospitalRepo interfaces.HospitalRepository
	updateRepo   interfaces.HospitalUpdateRepository
	specialtySvc SpecialtyService
	notifier     NotificationService
	logger       *logger.Logger
}

func NewHospitalService(
	hospitalRepo interfaces.HospitalRepository,
	updateRepo interfaces.HospitalUpdateRepository,
	specialtySvc SpecialtyService,
	notifier NotificationService,
	log *logger.Logger,
) HospitalService {
	return &hospitalService{
		hospitalRepo: hospitalRepo,
		updateRepo:   updateRepo,
		specialtySvc: specialtySvc,
		notifier:     notifier,
		logger:       log,
	}
}

func (s *hospitalService) CreateHospital(ctx context.Context, req *CreateHospitalRequest) (*models.Hospital, error) {
	if existing, err := s.hospitalRepo.GetByName(ctx, req.Name); err == nil && existing != nil {
		return nil, utils.NewConflictError("hospital with this name already exists")
	}

	hospital := &models.Hospital{
		Name:        req.Name,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Address:     req.Address,
		Specialties: req.Specialties,
		PushToken:   req.PushToken,
	}
	// An explicit specialty list at creation is an operator statement, not
	// derived data; the reconciliation job must not overwrite it.
	if len(req.Specialties) > 0 {
		hospital.SpecialtiesEdited = true
	}

	if err := s.hospitalRepo.Create(ctx, hospital); err != nil {
		return nil, err
	}

	if !hospital.SpecialtiesEdited {
		if err := s.specialtySvc.ReconcileHospital(ctx, hospital); err != nil {
			s.logger.WithError(err).WithHospitalID(hospital.ID).Warn("Initial specialty inference failed")
		}
	}

	s.notifier.PublishRowEvent(ctx, "hospitals", "insert", hospital)
	return hospital, nil
}

func (s *hospitalService) UpdateHospital(ctx context.Context, id primitive.ObjectID, req *UpdateHospitalRequest) (*models.Hospital, error) {
	updates := map[string]interface{}{}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.PushToken != nil {
		updates["push_token"] = *req.PushToken
	}
	if req.Specialties != nil {
		updates["specialties"] = req.Specialties
		updates["specialties_edited"] = true
		now := time.Now()
		updates["last_specialty_update"] = now
	}

	if len(updates) == 0 {
		return s.hospitalRepo.GetByID(ctx, id)
	}

	if err := s.hospitalRepo.Update(ctx, id, updates); err != nil {
		return nil, err
	}

	hospital, err := s.hospitalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notifier.PublishRowEvent(ctx, "hospitals", "update", hospital)
	return hospital, nil
}

func (s *hospitalService) GetHospital(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error) {
	return s.hospitalRepo.GetByID(ctx, id)
}

func (s *hospitalService) GetHospitals(ctx context.Context, params *utils.PaginationParams) ([]*models.Hospital, int64, error) {
	return s.hospitalRepo.GetAll(ctx, params)
}

func (s *hospitalService) GetNearbyHospitals(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Hospital, error) {
	return s.hospitalRepo.GetNearby(ctx, lat, lng, radiusMeters)
}

func (s *hospitalService) RecordUpdate(ctx context.Context, hospitalID primitive.ObjectID, req *RecordUpdateRequest) (*models.HospitalUpdate, error) {
	hospital, err := s.hospitalRepo.GetByID(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	update := &models.HospitalUpdate{
		HospitalID: hospitalID,
		Type:       req.Type,
		Payload:    req.Payload,
	}
	if err := s.updateRepo.Create(ctx, update); err != nil {
		return nil, err
	}

	if err := s.specialtySvc.ReconcileHospital(ctx, hospital); err != nil {
		s.logger.WithError(err).WithHospitalID(hospitalID).Warn("Specialty reconciliation after update failed")
	}

	s.notifier.PublishRowEvent(ctx, "hospital_updates", "insert", update)
	return update, nil
}

func (s *hospitalService) GetUpdates(ctx context.Context, hospitalID primitive.ObjectID, limit int) ([]*models.HospitalUpdate, error) {
	return s.updateRepo.GetByHospital(ctx, hospitalID, limit)
}

func (s *hospitalService) SeedDirectory(ctx context.Context) (int, error) {
	inserted := 0
	for _, seed := range hospitalDirectorySeed {
		existing, err := s.hospitalRepo.GetByName(ctx, seed.Name)
		if err == nil && existing != nil {
			continue
		}
		if err != nil && !utils.IsKind(err, utils.KindNotFound) {
			return inserted, err
		}

		hospital := &models.Hospital{
			Name:    seed.Name,
			Lat:     seed.Lat,
			Lng:     seed.Lng,
			Address: seed.Address,
			Seeded:  true,
		}
		if err := s.hospitalRepo.Create(ctx, hospital); err != nil {
			return inserted, err
		}

		if err := s.specialtySvc.ReconcileHospital(ctx, hospital); err != nil {
			s.logger.WithError(err).WithHospitalID(hospital.ID).Warn("Specialty inference for seeded hospital failed")
		}
		inserted++
	}

	if inserted > 0 {
		s.logger.WithField("inserted", inserted).Info("Hospital directory seeded")
	}
	return inserted, nil
}
