package services

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"mediroute/internal/config"
	"mediroute/internal/models"
	"mediroute/internal/repositories/interfaces"
	"mediroute/internal/utils"
	"mediroute/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const capacityKeyPrefix = "capacity:"

// Tick deltas, applied as a bounded random walk.
const (
	bedDelta       = 3
	icuDelta       = 1
	ambulanceDelta = 1
)

// CapacityService maintains per-hospital bed counters. Until hospitals feed
// real telemetry, a random-walk simulator keeps the numbers moving inside
// realistic bounds so the dashboard behaves like production.
type CapacityService interface {
	// GetCapacity returns the counters for one hospital, seeding them on
	// first reference so facilities registered after startup are covered.
	GetCapacity(ctx context.Context, hospitalID string) (*models.HospitalCapacity, error)
	GetAllCapacities(ctx context.Context) ([]*models.HospitalCapacity, error)

	// Seed initializes counters for every hospital that has none. Existing
	// counters survive a restart untouched.
	Seed(ctx context.Context) error

	Start(ctx context.Context) error
	Stop()
	Tick(ctx context.Context) error
}

type capacityService struct {
	hospitalRepo interfaces.HospitalRepository
	cacheSvc     CacheService
	notifier     NotificationService
	cfg          *config.SimulatorConfig
	logger       *logger.Logger

	rng       *rand.Rand
	newTicker func(d time.Duration) *time.Ticker

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
}

func NewCapacityService(
	hospitalRepo interfaces.HospitalRepository,
	cacheSvc CacheService,
	notifier NotificationService,
	cfg *config.SimulatorConfig,
	log *logger.Logger,
) CapacityService {
	return &capacityService{
		hospitalRepo: hospitalRepo,
		cacheSvc:     cacheSvc,
		notifier:     notifier,
		cfg:          cfg,
		logger:       log,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		newTicker:    time.NewTicker,
	}
}

// ClassifyHospital buckets a facility by name. Teaching institutes and
// government medical colleges run the largest wards; corporate chains run
// large private wards; everything else is a mid-size private facility.
func ClassifyHospital(name string) models.HospitalType {
	lower := strings.ToLower(name)

	for _, marker := range []string{"government", "govt", "civil", "district", "pgi", "aiims", "medical college"} {
		if strings.Contains(lower, marker) {
			return models.HospitalTypeGovernment
		}
	}
	for _, marker := range []string{"fortis", "apollo", "max ", "institute", "super"} {
		if strings.Contains(lower, marker) {
			return models.HospitalTypePrivateSuper
		}
	}
	return models.HospitalTypePrivate
}

func (s *capacityService) GetCapacity(ctx context.Context, hospitalID string) (*models.HospitalCapacity, error) {
	fields, err := s.cacheSvc.HGetAll(ctx, capacityKeyPrefix+hospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load capacity for hospital %s: %w", hospitalID, err)
	}
	if len(fields) == 0 {
		return s.seedForHospital(ctx, hospitalID)
	}
	return capacityFromHash(hospitalID, fields), nil
}

// seedForHospital initializes counters for a hospital first referenced after
// the startup seed ran. Unknown ids stay nil so callers can 404.
func (s *capacityService) seedForHospital(ctx context.Context, hospitalID string) (*models.HospitalCapacity, error) {
	id, err := primitive.ObjectIDFromHex(hospitalID)
	if err != nil {
		return nil, nil
	}

	hospital, err := s.hospitalRepo.GetByID(ctx, id)
	if err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil, nil
		}
		return nil, err
	}

	capacity := s.seedCapacity(hospitalID, ClassifyHospital(hospital.Name))
	if err := s.persistCapacity(ctx, capacity); err != nil {
		return nil, err
	}
	return capacity, nil
}

func (s *capacityService) GetAllCapacities(ctx context.Context) ([]*models.HospitalCapacity, error) {
	keys, err := s.cacheSvc.Keys(ctx, capacityKeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to list capacity keys: %w", err)
	}

	capacities := make([]*models.HospitalCapacity, 0, len(keys))
	for _, key := range keys {
		hospitalID := strings.TrimPrefix(key, capacityKeyPrefix)
		capacity, err := s.GetCapacity(ctx, hospitalID)
		if err != nil {
			return nil, err
		}
		if capacity != nil {
			capacities = append(capacities, capacity)
		}
	}
	return capacities, nil
}

func (s *capacityService) Seed(ctx context.Context) error {
	hospitals, err := s.hospitalRepo.GetAllUnpaged(ctx)
	if err != nil {
		return err
	}

	seeded := 0
	for _, hospital := range hospitals {
		id := hospital.ID.Hex()
		exists, err := s.cacheSvc.Exists(ctx, capacityKeyPrefix+id)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		capacity := s.seedCapacity(id, ClassifyHospital(hospital.Name))
		if err := s.persistCapacity(ctx, capacity); err != nil {
			return err
		}
		seeded++
	}

	s.logger.WithFields(map[string]interface{}{
		"hospitals": len(hospitals),
		"seeded":    seeded,
	}).Info("Capacity counters seeded")

	return nil
}

func (s *capacityService) seedCapacity(hospitalID string, hospitalType models.HospitalType) *models.HospitalCapacity {
	var bedsMin, bedsMax, icuMin, icuMax int
	switch hospitalType {
	case models.HospitalTypeGovernment:
		bedsMin, bedsMax = s.cfg.GovernmentBedsMin, s.cfg.GovernmentBedsMax
		icuMin, icuMax = s.cfg.GovernmentICUMin, s.cfg.GovernmentICUMax
	case models.HospitalTypePrivateSuper:
		bedsMin, bedsMax = s.cfg.PrivateSuperBedsMin, s.cfg.PrivateSuperBedsMax
		icuMin, icuMax = s.cfg.PrivateSuperICUMin, s.cfg.PrivateSuperICUMax
	default:
		bedsMin, bedsMax = s.cfg.PrivateBedsMin, s.cfg.PrivateBedsMax
		icuMin, icuMax = s.cfg.PrivateICUMin, s.cfg.PrivateICUMax
	}

	totalBeds := s.randBetween(bedsMin, bedsMax)
	icuBeds := s.randBetween(icuMin, icuMax)

	bedOccupancy := s.randBetween(s.cfg.BedOccupancyMin, s.cfg.BedOccupancyMax)
	icuOccupancy := s.randBetween(s.cfg.ICUOccupancyMin, s.cfg.ICUOccupancyMax)

	capacity := &models.HospitalCapacity{
		HospitalID:         hospitalID,
		TotalBeds:          totalBeds,
		AvailableBeds:      totalBeds - totalBeds*bedOccupancy/100,
		ICUBeds:            icuBeds,
		ICUAvailable:       icuBeds - icuBeds*icuOccupancy/100,
		IncomingAmbulances: s.randBetween(0, 3),
		UpdatedAt:          time.Now(),
	}
	capacity.Recalculate()
	return capacity
}

// Tick advances every counter one random-walk step. Available beds stay in
// [0, total]; incoming ambulances stay in [0, cfg.MaxIncoming].
func (s *capacityService) Tick(ctx context.Context) error {
	capacities, err := s.GetAllCapacities(ctx)
	if err != nil {
		return err
	}

	for _, capacity := range capacities {
		capacity.AvailableBeds = clamp(capacity.AvailableBeds+s.walk(bedDelta), 0, capacity.TotalBeds)
		capacity.ICUAvailable = clamp(capacity.ICUAvailable+s.walk(icuDelta), 0, capacity.ICUBeds)
		capacity.IncomingAmbulances = clamp(capacity.IncomingAmbulances+s.walk(ambulanceDelta), 0, s.cfg.MaxIncoming)
		capacity.UpdatedAt = time.Now()
		capacity.Recalculate()

		if err := s.persistCapacity(ctx, capacity); err != nil {
			return err
		}
		s.notifier.PublishRowEvent(ctx, "hospital_capacities", "update", capacity)
	}

	return nil
}

func (s *capacityService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("capacity simulator already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	if err := s.Seed(ctx); err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return err
	}

	ticker := s.newTicker(s.cfg.TickInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.Tick(ctx); err != nil {
					s.logger.WithError(err).Error("Capacity tick failed")
				}
			case <-stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	s.logger.WithField("tick_interval", s.cfg.TickInterval.String()).Info("Capacity simulator started")
	return nil
}

func (s *capacityService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
}

func (s *capacityService) persistCapacity(ctx context.Context, capacity *models.HospitalCapacity) error {
	return s.cacheSvc.HSet(ctx, capacityKeyPrefix+capacity.HospitalID, map[string]interface{}{
		"total_beds":          capacity.TotalBeds,
		"available_beds":      capacity.AvailableBeds,
		"icu_beds":            capacity.ICUBeds,
		"icu_available":       capacity.ICUAvailable,
		"occupied_beds":       capacity.OccupiedBeds,
		"incoming_ambulances": capacity.IncomingAmbulances,
		"occupancy_percent":   capacity.OccupancyPercent,
		"updated_at":          capacity.UpdatedAt.Format(time.RFC3339),
	})
}

// walk returns a uniform step in [-delta, +delta].
func (s *capacityService) walk(delta int) int {
	return s.rng.Intn(2*delta+1) - delta
}

func (s *capacityService) randBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.Intn(max-min+1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func capacityFromHash(hospitalID string, fields map[string]string) *models.HospitalCapacity {
	capacity := &models.HospitalCapacity{
		HospitalID:         hospitalID,
		TotalBeds:          atoiField(fields, "total_beds"),
		AvailableBeds:      atoiField(fields, "available_beds"),
		ICUBeds:            atoiField(fields, "icu_beds"),
		ICUAvailable:       atoiField(fields, "icu_available"),
		OccupiedBeds:       atoiField(fields, "occupied_beds"),
		IncomingAmbulances: atoiField(fields, "incoming_ambulances"),
	}
	if v, err := strconv.ParseFloat(fields["occupancy_percent"], 64); err == nil {
		capacity.OccupancyPercent = v
	}
	if t, err := time.Parse(time.RFC3339, fields["updated_at"]); err == nil {
		capacity.UpdatedAt = t
	}
	return capacity
}

func atoiField(fields map[string]string, key string) int {
	v, _ := strconv.Atoi(fields[key])
	return v
}
