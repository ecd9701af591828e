package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"mediroute/internal/config"
	"mediroute/internal/models"
	"mediroute/internal/utils"
	"mediroute/pkg/logger"
	"mediroute/pkg/maps"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func isConflict(err error) bool      { return utils.IsKind(err, utils.KindConflict) }
func isValidation(err error) bool    { return utils.IsKind(err, utils.KindValidation) }
func isAuthorization(err error) bool { return utils.IsKind(err, utils.KindAuthorization) }

func newTestLogger() *logger.Logger {
	l, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text"})
	if err != nil {
		panic(err)
	}
	return l
}

func testDispatchConfig() *config.DispatchConfig {
	return &config.DispatchConfig{
		ExactMatchScore:       100,
		TextMatchBonus:        20,
		TraumaCapabilityBonus: 10,
		DistanceBonusCeilKM:   50,
		FacilityTextWeight:    2,
		UpdateRecordWeight:    3,
		SpecialtyScoreCutoff:  2,
	}
}

// fakeTokenRepo is an in-memory TokenRepository with the same conditional
// update semantics as the mongo implementation.
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[primitive.ObjectID]*models.EmergencyToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[primitive.ObjectID]*models.EmergencyToken)}
}

func (r *fakeTokenRepo) Create(ctx context.Context, token *models.EmergencyToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = primitive.NewObjectID()
	now := time.Now()
	token.CreatedAt = now
	token.UpdatedAt = now
	copied := *token
	r.tokens[token.ID] = &copied
	return nil
}

func (r *fakeTokenRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.EmergencyToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok {
		return nil, utils.NewNotFoundError("token not found")
	}
	copied := *token
	return &copied, nil
}

func (r *fakeTokenRepo) GetByCode(ctx context.Context, code string) (*models.EmergencyToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.Code == code {
			copied := *token
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("token not found by code")
}

func (r *fakeTokenRepo) UpdateIfStatus(ctx context.Context, id primitive.ObjectID, allowedFrom []models.TokenStatus, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[id]
	if !ok {
		return false, nil
	}
	if len(allowedFrom) > 0 {
		allowed := false
		for _, status := range allowedFrom {
			if token.Status == status {
				allowed = true
				break
			}
		}
		if !allowed {
			return false, nil
		}
	}

	for key, value := range updates {
		applyTokenUpdate(token, key, value)
	}
	token.UpdatedAt = time.Now()
	return true, nil
}

func applyTokenUpdate(token *models.EmergencyToken, key string, value interface{}) {
	switch key {
	case "status":
		token.Status = value.(models.TokenStatus)
	case "hospital_id":
		id := value.(primitive.ObjectID)
		token.HospitalID = &id
	case "hospital_name":
		token.HospitalName = value.(string)
	case "hospital_lat":
		lat := value.(float64)
		token.HospitalLat = &lat
	case "hospital_lng":
		lng := value.(float64)
		token.HospitalLng = &lng
	case "route_to_patient":
		token.RouteToPatient = value.(*models.RouteLeg)
	case "route_to_hospital":
		token.RouteToHospital = value.(*models.RouteLeg)
	case "selected_route":
		token.SelectedRoute = value.(*models.RouteLeg)
	case "decline_reason":
		token.DeclineReason = value.(string)
	case "cancelled_by":
		token.CancelledBy = value.(string)
	case "assigned_at":
		t := value.(time.Time)
		token.AssignedAt = &t
	case "started_at":
		t := value.(time.Time)
		token.StartedAt = &t
	case "arrived_at_patient_at":
		t := value.(time.Time)
		token.ArrivedAtPatientAt = &t
	case "completed_at":
		t := value.(time.Time)
		token.CompletedAt = &t
	case "cancelled_at":
		t := value.(time.Time)
		token.CancelledAt = &t
	}
}

func (r *fakeTokenRepo) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.EmergencyToken, 0, len(r.tokens))
	for _, token := range r.tokens {
		copied := *token
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTokenRepo) GetByStatus(ctx context.Context, status models.TokenStatus, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.EmergencyToken
	for _, token := range r.tokens {
		if token.Status == status {
			copied := *token
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTokenRepo) GetByHospital(ctx context.Context, hospitalID primitive.ObjectID, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.EmergencyToken
	for _, token := range r.tokens {
		if token.HospitalID != nil && *token.HospitalID == hospitalID {
			copied := *token
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTokenRepo) GetByDateRange(ctx context.Context, startDate, endDate time.Time, params *utils.PaginationParams) ([]*models.EmergencyToken, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.EmergencyToken
	for _, token := range r.tokens {
		if !token.CreatedAt.Before(startDate) && !token.CreatedAt.After(endDate) {
			copied := *token
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTokenRepo) GetActiveByAmbulance(ctx context.Context, ambulanceID primitive.ObjectID) (*models.EmergencyToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.AmbulanceID == ambulanceID && token.Status.IsActive() {
			copied := *token
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeAmbulanceRepo struct {
	mu         sync.Mutex
	ambulances map[primitive.ObjectID]*models.Ambulance
}

func newFakeAmbulanceRepo() *fakeAmbulanceRepo {
	return &fakeAmbulanceRepo{ambulances: make(map[primitive.ObjectID]*models.Ambulance)}
}

func (r *fakeAmbulanceRepo) Create(ctx context.Context, ambulance *models.Ambulance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ambulance.ID = primitive.NewObjectID()
	copied := *ambulance
	r.ambulances[ambulance.ID] = &copied
	return nil
}

func (r *fakeAmbulanceRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ambulance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ambulance, ok := r.ambulances[id]
	if !ok {
		return nil, utils.NewNotFoundError("ambulance not found")
	}
	copied := *ambulance
	return &copied, nil
}

func (r *fakeAmbulanceRepo) GetByCallSign(ctx context.Context, callSign string) (*models.Ambulance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ambulance := range r.ambulances {
		if ambulance.CallSign == callSign {
			copied := *ambulance
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("ambulance not found")
}

func (r *fakeAmbulanceRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeAmbulanceRepo) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Ambulance, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Ambulance, 0, len(r.ambulances))
	for _, ambulance := range r.ambulances {
		copied := *ambulance
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeAmbulanceRepo) UpdateLocation(ctx context.Context, id primitive.ObjectID, update *models.LocationUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ambulance, ok := r.ambulances[id]
	if !ok {
		return utils.NewNotFoundError("ambulance not found")
	}
	ambulance.Lat = update.Lat
	ambulance.Lng = update.Lng
	ambulance.Heading = update.Heading
	ambulance.SpeedKmh = update.SpeedKmh
	now := time.Now()
	ambulance.LastSeenAt = &now
	return nil
}

func (r *fakeAmbulanceRepo) LinkActiveToken(ctx context.Context, id primitive.ObjectID, tokenID primitive.ObjectID, status models.EmergencyStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ambulance, ok := r.ambulances[id]
	if !ok {
		return utils.NewNotFoundError("ambulance not found")
	}
	ambulance.ActiveTokenID = &tokenID
	ambulance.EmergencyStatus = status
	return nil
}

func (r *fakeAmbulanceRepo) ClearActiveToken(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ambulance, ok := r.ambulances[id]
	if !ok {
		return utils.NewNotFoundError("ambulance not found")
	}
	ambulance.ActiveTokenID = nil
	ambulance.EmergencyStatus = models.EmergencyStatusInactive
	return nil
}

type fakeHospitalRepo struct {
	mu        sync.Mutex
	hospitals map[primitive.ObjectID]*models.Hospital
}

func newFakeHospitalRepo() *fakeHospitalRepo {
	return &fakeHospitalRepo{hospitals: make(map[primitive.ObjectID]*models.Hospital)}
}

func (r *fakeHospitalRepo) Create(ctx context.Context, hospital *models.Hospital) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	hospital.ID = primitive.NewObjectID()
	copied := *hospital
	r.hospitals[hospital.ID] = &copied
	return nil
}

func (r *fakeHospitalRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	hospital, ok := r.hospitals[id]
	if !ok {
		return nil, utils.NewNotFoundError("hospital not found")
	}
	copied := *hospital
	return &copied, nil
}

func (r *fakeHospitalRepo) GetByName(ctx context.Context, name string) (*models.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, hospital := range r.hospitals {
		if strings.EqualFold(hospital.Name, name) {
			copied := *hospital
			return &copied, nil
		}
	}
	return nil, utils.NewNotFoundError("hospital not found")
}

func (r *fakeHospitalRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	hospital, ok := r.hospitals[id]
	if !ok {
		return utils.NewNotFoundError("hospital not found")
	}
	for key, value := range updates {
		switch key {
		case "address":
			hospital.Address = value.(string)
		case "push_token":
			hospital.PushToken = value.(string)
		case "specialties":
			hospital.Specialties = value.([]string)
		case "specialties_edited":
			hospital.SpecialtiesEdited = value.(bool)
		}
	}
	return nil
}

func (r *fakeHospitalRepo) GetAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Hospital, int64, error) {
	hospitals, err := r.GetAllUnpaged(ctx)
	return hospitals, int64(len(hospitals)), err
}

func (r *fakeHospitalRepo) GetAllUnpaged(ctx context.Context) ([]*models.Hospital, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Hospital, 0, len(r.hospitals))
	for _, hospital := range r.hospitals {
		copied := *hospital
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeHospitalRepo) GetNearby(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Hospital, error) {
	all, err := r.GetAllUnpaged(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Hospital
	for _, hospital := range all {
		if utils.IsWithinRadiusMeters(lat, lng, hospital.Lat, hospital.Lng, radiusMeters) {
			out = append(out, hospital)
		}
	}
	return out, nil
}

func (r *fakeHospitalRepo) UpdateSpecialties(ctx context.Context, id primitive.ObjectID, specialties []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	hospital, ok := r.hospitals[id]
	if !ok {
		return utils.NewNotFoundError("hospital not found")
	}
	if hospital.SpecialtiesEdited {
		return nil
	}
	hospital.Specialties = specialties
	now := time.Now()
	hospital.LastSpecialtyUpdate = &now
	return nil
}

type fakeUpdateRepo struct {
	mu      sync.Mutex
	updates []*models.HospitalUpdate
}

func newFakeUpdateRepo() *fakeUpdateRepo {
	return &fakeUpdateRepo{}
}

func (r *fakeUpdateRepo) Create(ctx context.Context, update *models.HospitalUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	update.ID = primitive.NewObjectID()
	update.CreatedAt = time.Now()
	copied := *update
	r.updates = append(r.updates, &copied)
	return nil
}

func (r *fakeUpdateRepo) GetByHospital(ctx context.Context, hospitalID primitive.ObjectID, limit int) ([]*models.HospitalUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.HospitalUpdate
	for _, update := range r.updates {
		if update.HospitalID == hospitalID {
			copied := *update
			out = append(out, &copied)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeUpdateRepo) GetSince(ctx context.Context, since time.Time) ([]*models.HospitalUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.HospitalUpdate
	for _, update := range r.updates {
		if update.CreatedAt.After(since) {
			copied := *update
			out = append(out, &copied)
		}
	}
	return out, nil
}

// fakeRouting returns a straight two-point route between origin and
// destination. Distance is the haversine distance, duration assumes 40 km/h.
type fakeRouting struct {
	mu       sync.Mutex
	failNext bool
	calls    int
}

func (f *fakeRouting) Geocode(ctx context.Context, address string) (*maps.GeocodeResponse, error) {
	return &maps.GeocodeResponse{}, nil
}

func (f *fakeRouting) ReverseGeocode(ctx context.Context, lat, lng float64) (*maps.GeocodeResponse, error) {
	return &maps.GeocodeResponse{}, nil
}

func (f *fakeRouting) GetDirections(ctx context.Context, request *maps.DirectionsRequest) (*maps.DirectionsResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failNext {
		f.failNext = false
		return nil, fmt.Errorf("routing unavailable")
	}

	distance := utils.CalculateDistanceMeters(
		request.Origin.Latitude, request.Origin.Longitude,
		request.Destination.Latitude, request.Destination.Longitude,
	)
	return &maps.DirectionsResponse{
		Routes: []maps.Route{
			{
				Summary:  "direct",
				Points:   []maps.Location{request.Origin, request.Destination},
				Distance: maps.Distance{Value: distance},
				Duration: maps.Duration{Value: int(utils.ETASeconds(distance, 40))},
			},
		},
	}, nil
}

// recorderNotifier records notification calls for assertions.
type recorderNotifier struct {
	mu        sync.Mutex
	rowEvents []string
	assigned  int
	declined  int
	cancelled int
}

func (n *recorderNotifier) PublishRowEvent(ctx context.Context, table, event string, row interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rowEvents = append(n.rowEvents, table+":"+event)
}

func (n *recorderNotifier) NotifyTokenAssigned(ctx context.Context, token *models.EmergencyToken, hospital *models.Hospital) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assigned++
}

func (n *recorderNotifier) NotifyTokenDeclined(ctx context.Context, token *models.EmergencyToken) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.declined++
}

func (n *recorderNotifier) NotifyTokenCancelled(ctx context.Context, token *models.EmergencyToken) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled++
}

// memoryCache is an in-memory CacheService for simulator tests.
type memoryCache struct {
	mu     sync.Mutex
	kv     map[string]interface{}
	hashes map[string]map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		kv:     make(map[string]interface{}),
		hashes: make(map[string]map[string]string),
	}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	return fmt.Errorf("not implemented")
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kv[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.kv, key)
		delete(c.hashes, key)
	}
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.kv[key]; ok {
		return true, nil
	}
	_, ok := c.hashes[key]
	return ok, nil
}

func (c *memoryCache) HSet(ctx context.Context, key string, values map[string]interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	hash, ok := c.hashes[key]
	if !ok {
		hash = make(map[string]string)
		c.hashes[key] = hash
	}
	for field, value := range values {
		hash[field] = fmt.Sprintf("%v", value)
	}
	return nil
}

func (c *memoryCache) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	hash, ok := c.hashes[key]
	if !ok {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(hash))
	for field, value := range hash {
		out[field] = value
	}
	return out, nil
}

func (c *memoryCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var out []string
	for key := range c.hashes {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	for key := range c.kv {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	return out, nil
}

func (c *memoryCache) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error {
	return nil
}
