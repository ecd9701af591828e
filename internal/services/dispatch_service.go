package services

import (
	"context"
	"fmt"
	"time"

	"mediroute/internal/config"
	"mediroute/internal/models"
	"mediroute/internal/repositories/interfaces"
	"mediroute/internal/utils"
	"mediroute/pkg/logger"
	"mediroute/pkg/maps"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateTokenRequest struct {
	AmbulanceID   primitive.ObjectID `json:"ambulance_id" validate:"required"`
	PickupLat     float64            `json:"pickup_lat" validate:"required,latitude"`
	PickupLng     float64            `json:"pickup_lng" validate:"required,longitude"`
	PickupAddress string             `json:"pickup_address"`
	EmergencyType string             `json:"emergency_type" validate:"required"`
	Keyword       string             `json:"keyword"`
}

type AssignHospitalRequest struct {
	HospitalID primitive.ObjectID     `json:"hospital_id" validate:"required"`
	Preference models.RoutePreference `json:"preference"`
}

type HospitalCreateTokenRequest struct {
	HospitalID    primitive.ObjectID `json:"hospital_id" validate:"required"`
	AmbulanceID   primitive.ObjectID `json:"ambulance_id" validate:"required"`
	PickupLat     float64            `json:"pickup_lat" validate:"required,latitude"`
	PickupLng     float64            `json:"pickup_lng" validate:"required,longitude"`
	PickupAddress string             `json:"pickup_address"`
	EmergencyType string             `json:"emergency_type" validate:"required"`
	Keyword       string             `json:"keyword"`
}

type TokenFilter struct {
	Status     models.TokenStatus
	HospitalID *primitive.ObjectID
	StartDate  *time.Time
	EndDate    *time.Time
}

// DispatchService runs the emergency-token lifecycle. Every transition is a
// conditional update pinned on the statuses it may leave from, so two
// operators racing on the same token produce exactly one winner.
type DispatchService interface {
	// Ambulance-side operations.
	CreateToken(ctx context.Context, actor models.Actor, req *CreateTokenRequest) (*models.EmergencyToken, error)
	AssignHospital(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID, req *AssignHospitalRequest) (*models.EmergencyToken, error)
	StartJourney(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID) (*models.EmergencyToken, error)
	ArriveAtPatient(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID) (*models.EmergencyToken, error)
	DepartForHospital(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID) (*models.EmergencyToken, error)
	CompleteToken(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID) (*models.EmergencyToken, error)

	// Hospital-side operations.
	CreateTokenByHospital(ctx context.Context, actor models.Actor, req *HospitalCreateTokenRequest) (*models.EmergencyToken, error)
	DeclineToken(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID, reason string) (*models.EmergencyToken, error)

	// Shared operations.
	CancelToken(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID) (*models.EmergencyToken, error)
	ReleaseAmbulance(ctx context.Context, actor models.Actor, ambulanceID primitive.ObjectID) (*models.EmergencyToken, error)

	// Reads.
	GetToken(ctx context.Context, tokenID primitive.ObjectID) (*models.EmergencyToken, error)
	GetTokenByCode(ctx context.Context, code string) (*models.EmergencyToken, error)
	GetActiveTokenForAmbulance(ctx context.Context, ambulanceID primitive.ObjectID) (*models.EmergencyToken, error)
	ListTokens(ctx context.Context, filter *TokenFilter, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error)

	RecommendHospitals(ctx context.Context, patientLat, patientLng float64, keyword string) (Recommendation, error)
}

type dispatchService struct {
	tokenRepo     interfaces.TokenRepository
	ambulanceRepo interfaces.AmbulanceRepository
	hospitalRepo  interfaces.HospitalRepository
	recommender   RecommendationService
	routing       maps.RoutingProvider
	notifier      NotificationService
	cfg           *config.DispatchConfig
	logger        *logger.Logger
}

func NewDispatchService(
	tokenRepo interfaces.TokenRepository,
	ambulanceRepo interfaces.AmbulanceRepository,
	hospitalRepo interfaces.HospitalRepository,
	recommender RecommendationService,
	routing maps.RoutingProvider,
	notifier NotificationService,
	cfg *config.DispatchConfig,
	log *logger.Logger,
) DispatchService {
	return &dispatchService{
		tokenRepo:     tokenRepo,
		ambulanceRepo: ambulanceRepo,
		hospitalRepo:  hospitalRepo,
		recommender:   recommender,
		routing:       routing,
		notifier:      notifier,
		cfg:           cfg,
		logger:        log,
	}
}

func (s *dispatchService) CreateToken(ctx context.Context, actor models.Actor, req *CreateTokenRequest) (*models.EmergencyToken, error) {
	if !actor.IsAmbulanceSide() {
		return nil, utils.NewAuthorizationError("only ambulance operators may open tokens")
	}

	ambulance, err := s.ambulanceRepo.GetByID(ctx, req.AmbulanceID)
	if err != nil {
		return nil, err
	}

	existing, err := s.tokenRepo.GetActiveByAmbulance(ctx, req.AmbulanceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewConflictError(fmt.Sprintf("ambulance %s already holds active token %s", ambulance.CallSign, existing.Code))
	}

	token := &models.EmergencyToken{
		Code:               utils.GenerateTokenCode(),
		AmbulanceID:        ambulance.ID,
		AmbulanceOriginLat: ambulance.Lat,
		AmbulanceOriginLng: ambulance.Lng,
		PickupLat:          req.PickupLat,
		PickupLng:          req.PickupLng,
		PickupAddress:      req.PickupAddress,
		EmergencyType:      req.EmergencyType,
		Keyword:            req.Keyword,
		Status:             models.TokenStatusPending,
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	if err := s.ambulanceRepo.LinkActiveToken(ctx, ambulance.ID, token.ID, models.EmergencyStatusActive); err != nil {
		s.logger.WithError(err).WithTokenID(token.ID).Error("Failed to link active token to ambulance")
	}

	s.logger.LogTokenEvent(token.ID, "created", map[string]interface{}{
		"ambulance_id": ambulance.ID.Hex(),
		"keyword":      token.Keyword,
	})
	s.notifier.PublishRowEvent(ctx, "emergency_tokens", "insert", token)

	return token, nil
}

// AssignHospital moves a pending token to route_selected: the destination is
// fixed and both route legs are computed and frozen onto the token. Routing
// failure aborts the assignment; a token never ends up with only one leg.
func (s *dispatchService) AssignHospital(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID, req *AssignHospitalRequest) (*models.EmergencyToken, error) {
	if !actor.IsHospitalSide() {
		return nil, utils.NewAuthorizationError("only hospital operators may accept transports")
	}

	token, err := s.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	hospital, err := s.hospitalRepo.GetByID(ctx, req.HospitalID)
	if err != nil {
		return nil, err
	}

	preference := req.Preference
	if preference == "" {
		preference = models.RoutePreferenceFastest
	}

	toPatient, err := s.computeLeg(ctx, token.AmbulanceOriginLat, token.AmbulanceOriginLng, token.PickupLat, token.PickupLng, models.RouteKindToPatient, preference)
	if err != nil {
		return nil, err
	}
	toHospital, err := s.computeLeg(ctx, token.PickupLat, token.PickupLng, hospital.Lat, hospital.Lng, models.RouteKindToHospital, preference)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":            models.TokenStatusRouteSelected,
		"hospital_id":       hospital.ID,
		"hospital_name":     hospital.Name,
		"hospital_lat":      hospital.Lat,
		"hospital_lng":      hospital.Lng,
		"route_to_patient":  toPatient,
		"route_to_hospital": toHospital,
		"selected_route":    toPatient,
		"assigned_at":       time.Now(),
	}

	ok, err := s.tokenRepo.UpdateIfStatus(ctx, tokenID, []models.TokenStatus{models.TokenStatusPending, models.TokenStatusAssigned}, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.NewConflictError(fmt.Sprintf("token %s is no longer awaiting assignment", token.Code))
	}

	updated, err := s.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	s.logger.LogTokenEvent(tokenID, "hospital_assigned", map[string]interface{}{
		"hospital_id": hospital.ID.Hex(),
		"preference":  string(preference),
	})
	s.notifier.PublishRowEvent(ctx, "emergency_tokens", "update", updated)
	s.notifier.NotifyTokenAssigned(ctx, updated, hospital)

	return updated, nil
}

// CreateTokenByHospital opens a transport on behalf of a facility requesting
// a pickup to itself. The token is born route_selected with both legs in
// place, skipping the pending phase entirely.
func (s *dispatchService) CreateTokenByHospital(ctx context.Context, actor models.Actor, req *HospitalCreateTokenRequest) (*models.EmergencyToken, error) {
	if !actor.IsHospitalSide() {
		return nil, utils.NewAuthorizationError("only hospital operators may request transports")
	}

	hospital, err := s.hospitalRepo.GetByID(ctx, req.HospitalID)
	if err != nil {
		return nil, err
	}
	ambulance, err := s.ambulanceRepo.GetByID(ctx, req.AmbulanceID)
	if err != nil {
		return nil, err
	}

	existing, err := s.tokenRepo.GetActiveByAmbulance(ctx, req.AmbulanceID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.NewConflictError(fmt.Sprintf("ambulance %s already holds active token %s", ambulance.CallSign, existing.Code))
	}

	// Both legs are computed before anything is persisted, so a routing
	// outage cannot strand a half-built token.
	toPatient, err := s.computeLeg(ctx, ambulance.Lat, ambulance.Lng, req.PickupLat, req.PickupLng, models.RouteKindToPatient, models.RoutePreferenceFastest)
	if err != nil {
		return nil, err
	}
	toHospital, err := s.computeLeg(ctx, req.PickupLat, req.PickupLng, hospital.Lat, hospital.Lng, models.RouteKindToHospital, models.RoutePreferenceFastest)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	token := &models.EmergencyToken{
		Code:               utils.GenerateTokenCode(),
		AmbulanceID:        ambulance.ID,
		AmbulanceOriginLat: ambulance.Lat,
		AmbulanceOriginLng: ambulance.Lng,
		PickupLat:          req.PickupLat,
		PickupLng:          req.PickupLng,
		PickupAddress:      req.PickupAddress,
		HospitalID:         &hospital.ID,
		HospitalName:       hospital.Name,
		HospitalLat:        &hospital.Lat,
		HospitalLng:        &hospital.Lng,
		EmergencyType:      req.EmergencyType,
		Keyword:            req.Keyword,
		RouteToPatient:     toPatient,
		RouteToHospital:    toHospital,
		SelectedRoute:      toPatient,
		Status:             models.TokenStatusRouteSelected,
		AssignedAt:         &now,
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	if err := s.ambulanceRepo.LinkActiveToken(ctx, ambulance.ID, token.ID, models.EmergencyStatusActive); err != nil {
		s.logger.WithError(err).WithTokenID(token.ID).Error("Failed to link active token to ambulance")
	}

	s.logger.LogTokenEvent(token.ID, "created_by_hospital", map[string]interface{}{
		"hospital_id":  hospital.ID.Hex(),
		"ambulance_id": ambulance.ID.Hex(),
	})
	s.notifier.PublishRowEvent(ctx, "emergency_tokens", "insert", token)
	s.notifier.NotifyTokenAssigned(ctx, token, hospital)

	return token, nil
}

func (s *dispatchService) StartJourney(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID) (*models.EmergencyToken, error) {
	token, err := s.transition(ctx, actor, tokenID, "journey_started",
		[]models.TokenStatus{models.TokenStatusRouteSelected, models.TokenStatusAssigned},
		map[string]interface{}{
			"status":     models.TokenStatusInProgress,
			"started_at": time.Now(),
		})
	if err != nil {
		return nil, err
	}

	if err := s.ambulanceRepo.LinkActiveToken(ctx, token.AmbulanceID, token.ID, models.EmergencyStatusResponding); err != nil {
		s.logger.WithError(err).WithTokenID(tokenID).Error("Failed to mark ambulance responding")
	}

	return token, nil
}

func (s *dispatchService) ArriveAtPatient(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID) (*models.EmergencyToken, error) {
	return s.transition(ctx, actor, tokenID, "arrived_at_patient",
		[]models.TokenStatus{models.TokenStatusInProgress},
		map[string]interface{}{
			"status":                models.TokenStatusAtPatient,
			"arrived_at_patient_at": time.Now(),
		})
}

func (s *dispatchService) DepartForHospital(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID) (*models.EmergencyToken, error) {
	token, err := s.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token.HospitalID == nil {
		return nil, utils.NewConflictError(fmt.Sprintf("token %s has no destination hospital", token.Code))
	}

	updates := map[string]interface{}{
		"status": models.TokenStatusToHospital,
	}
	// The active leg flips to the hospital leg once the patient is aboard.
	if token.RouteToHospital.IsValid() {
		updates["selected_route"] = token.RouteToHospital
	}

	return s.transition(ctx, actor, tokenID, "departed_for_hospital",
		[]models.TokenStatus{models.TokenStatusAtPatient}, updates)
}

func (s *dispatchService) CompleteToken(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID) (*models.EmergencyToken, error) {
	token, err := s.transition(ctx, actor, tokenID, "completed",
		[]models.TokenStatus{models.TokenStatusToHospital},
		map[string]interface{}{
			"status":       models.TokenStatusCompleted,
			"completed_at": time.Now(),
		})
	if err != nil {
		return nil, err
	}

	s.releaseVehicle(ctx, token.AmbulanceID, tokenID)
	return token, nil
}

// DeclineToken lets the destination facility refuse a transport while it is
// still inbound paperwork. A reason is mandatory; the vehicle crew sees it
// verbatim.
func (s *dispatchService) DeclineToken(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID, reason string) (*models.EmergencyToken, error) {
	if !actor.IsHospitalSide() {
		return nil, utils.NewAuthorizationError("only hospital operators may decline tokens")
	}
	if reason == "" {
		return nil, utils.NewValidationError("decline reason is required")
	}

	token, err := s.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	// Once a facility has accepted (routes attached) the proper exit is
	// cancellation, not decline.
	ok, err := s.tokenRepo.UpdateIfStatus(ctx, tokenID,
		[]models.TokenStatus{models.TokenStatusPending, models.TokenStatusAssigned},
		map[string]interface{}{
			"status":         models.TokenStatusDeclined,
			"decline_reason": reason,
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.NewConflictError(fmt.Sprintf("token %s can no longer be declined", token.Code))
	}

	updated, err := s.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	s.releaseVehicle(ctx, updated.AmbulanceID, tokenID)

	s.logger.LogTokenEvent(tokenID, "declined", map[string]interface{}{"reason": reason})
	s.notifier.PublishRowEvent(ctx, "emergency_tokens", "update", updated)
	s.notifier.NotifyTokenDeclined(ctx, updated)

	return updated, nil
}

func (s *dispatchService) CancelToken(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID) (*models.EmergencyToken, error) {
	token, err := s.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	ok, err := s.tokenRepo.UpdateIfStatus(ctx, tokenID, models.ActiveTokenStatuses,
		map[string]interface{}{
			"status":       models.TokenStatusCancelled,
			"cancelled_by": string(actor.Role),
			"cancelled_at": time.Now(),
		})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.NewConflictError(fmt.Sprintf("token %s is already terminal", token.Code))
	}

	updated, err := s.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	s.releaseVehicle(ctx, updated.AmbulanceID, tokenID)

	s.logger.LogTokenEvent(tokenID, "cancelled", map[string]interface{}{"cancelled_by": string(actor.Role)})
	s.notifier.PublishRowEvent(ctx, "emergency_tokens", "update", updated)
	s.notifier.NotifyTokenCancelled(ctx, updated)

	return updated, nil
}

// ReleaseAmbulance is the dispatcher's escape hatch for a vehicle stuck with
// a stale back-reference: it cancels the active token if one exists and
// clears the link unconditionally. Returns the cancelled token, or nil when
// there was nothing to cancel.
func (s *dispatchService) ReleaseAmbulance(ctx context.Context, actor models.Actor, ambulanceID primitive.ObjectID) (*models.EmergencyToken, error) {
	if !actor.IsHospitalSide() {
		return nil, utils.NewAuthorizationError("only hospital operators or administrators may force-release an ambulance")
	}

	token, err := s.tokenRepo.GetActiveByAmbulance(ctx, ambulanceID)
	if err != nil {
		return nil, err
	}

	var cancelled *models.EmergencyToken
	if token != nil {
		ok, err := s.tokenRepo.UpdateIfStatus(ctx, token.ID, models.ActiveTokenStatuses,
			map[string]interface{}{
				"status":       models.TokenStatusCancelled,
				"cancelled_by": string(actor.Role),
				"cancelled_at": time.Now(),
			})
		if err != nil {
			return nil, err
		}
		if ok {
			cancelled, err = s.tokenRepo.GetByID(ctx, token.ID)
			if err != nil {
				return nil, err
			}
			s.logger.LogTokenEvent(token.ID, "force_released", map[string]interface{}{"ambulance_id": ambulanceID.Hex()})
			s.notifier.PublishRowEvent(ctx, "emergency_tokens", "update", cancelled)
		}
	}

	// Cleared even when no token was found; that is the stuck case this
	// operation exists for.
	if err := s.ambulanceRepo.ClearActiveToken(ctx, ambulanceID); err != nil {
		return cancelled, err
	}

	return cancelled, nil
}

func (s *dispatchService) GetToken(ctx context.Context, tokenID primitive.ObjectID) (*models.EmergencyToken, error) {
	return s.tokenRepo.GetByID(ctx, tokenID)
}

func (s *dispatchService) GetTokenByCode(ctx context.Context, code string) (*models.EmergencyToken, error) {
	return s.tokenRepo.GetByCode(ctx, code)
}

func (s *dispatchService) GetActiveTokenForAmbulance(ctx context.Context, ambulanceID primitive.ObjectID) (*models.EmergencyToken, error) {
	return s.tokenRepo.GetActiveByAmbulance(ctx, ambulanceID)
}

func (s *dispatchService) ListTokens(ctx context.Context, filter *TokenFilter, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error) {
	if filter != nil {
		switch {
		case filter.Status != "":
			return s.tokenRepo.GetByStatus(ctx, filter.Status, params)
		case filter.HospitalID != nil:
			return s.tokenRepo.GetByHospital(ctx, *filter.HospitalID, params)
		case filter.StartDate != nil && filter.EndDate != nil:
			return s.tokenRepo.GetByDateRange(ctx, *filter.StartDate, *filter.EndDate, params)
		}
	}
	return s.tokenRepo.GetAll(ctx, params)
}

func (s *dispatchService) RecommendHospitals(ctx context.Context, patientLat, patientLng float64, keyword string) (Recommendation, error) {
	hospitals, err := s.hospitalRepo.GetAllUnpaged(ctx)
	if err != nil {
		return Recommendation{}, err
	}
	return s.recommender.Recommend(patientLat, patientLng, keyword, hospitals), nil
}

// transition runs an ambulance-side lifecycle step: role guard, conditional
// status update, re-read, row event.
func (s *dispatchService) transition(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID, event string, allowedFrom []models.TokenStatus, updates map[string]interface{}) (*models.EmergencyToken, error) {
	if !actor.IsAmbulanceSide() {
		return nil, utils.NewAuthorizationError("only ambulance operators may advance tokens")
	}

	ok, err := s.tokenRepo.UpdateIfStatus(ctx, tokenID, allowedFrom, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.NewConflictError(fmt.Sprintf("token %s is not in a state that allows %s", tokenID.Hex(), event))
	}

	token, err := s.tokenRepo.GetByID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	s.logger.LogTokenEvent(tokenID, event, map[string]interface{}{"status": string(token.Status)})
	s.notifier.PublishRowEvent(ctx, "emergency_tokens", "update", token)

	return token, nil
}

// releaseVehicle drops the ambulance's active-token back-reference after the
// token reaches a terminal status. Best-effort: a failure here leaves the
// vehicle releasable via ReleaseAmbulance.
func (s *dispatchService) releaseVehicle(ctx context.Context, ambulanceID, tokenID primitive.ObjectID) {
	if err := s.ambulanceRepo.ClearActiveToken(ctx, ambulanceID); err != nil {
		s.logger.WithError(err).WithTokenID(tokenID).WithAmbulanceID(ambulanceID).Error("Failed to clear active token from ambulance")
	}
}

func (s *dispatchService) computeLeg(ctx context.Context, fromLat, fromLng, toLat, toLng float64, kind models.RouteKind, preference models.RoutePreference) (*models.RouteLeg, error) {
	resp, err := s.routing.GetDirections(ctx, &maps.DirectionsRequest{
		Origin:      maps.Location{Latitude: fromLat, Longitude: fromLng},
		Destination: maps.Location{Latitude: toLat, Longitude: toLng},
		Mode:        "driving",
		Preference:  string(preference),
	})
	if err != nil {
		return nil, utils.NewUpstreamError(fmt.Sprintf("routing failed for %s leg", kind), err)
	}
	if len(resp.Routes) == 0 {
		return nil, utils.NewUpstreamError(fmt.Sprintf("no route found for %s leg", kind), nil)
	}

	route := resp.Routes[0]
	coordinates := make([]models.Coordinate, len(route.Points))
	for i, p := range route.Points {
		coordinates[i] = models.Coordinate{Lat: p.Latitude, Lng: p.Longitude}
	}

	leg := &models.RouteLeg{
		Coordinates:     coordinates,
		DistanceMeters:  route.Distance.Value,
		DurationSeconds: float64(route.Duration.Value),
		Kind:            kind,
		Preference:      preference,
		CreatedAt:       time.Now(),
	}
	if !leg.IsValid() {
		return nil, utils.NewUpstreamError(fmt.Sprintf("routing returned an unusable %s leg", kind), nil)
	}

	return leg, nil
}
