package services

import (
	"context"
	"testing"

	"mediroute/internal/config"
	"mediroute/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testSimulatorConfig() *config.SimulatorConfig {
	return &config.SimulatorConfig{
		GovernmentBedsMin:   200,
		GovernmentBedsMax:   500,
		GovernmentICUMin:    30,
		GovernmentICUMax:    80,
		PrivateSuperBedsMin: 300,
		PrivateSuperBedsMax: 800,
		PrivateSuperICUMin:  50,
		PrivateSuperICUMax:  120,
		PrivateBedsMin:      50,
		PrivateBedsMax:      200,
		PrivateICUMin:       10,
		PrivateICUMax:       35,
		BedOccupancyMin:     40,
		BedOccupancyMax:     80,
		ICUOccupancyMin:     30,
		ICUOccupancyMax:     80,
		MaxIncoming:         10,
	}
}

func newCapacityFixture(t *testing.T, names ...string) (CapacityService, *fakeHospitalRepo) {
	t.Helper()
	hospRepo := newFakeHospitalRepo()
	for _, name := range names {
		require.NoError(t, hospRepo.Create(context.Background(), &models.Hospital{Name: name, Lat: 30.7, Lng: 76.8}))
	}
	svc := NewCapacityService(hospRepo, newMemoryCache(), &recorderNotifier{}, testSimulatorConfig(), newTestLogger())
	return svc, hospRepo
}

func TestClassifyHospital(t *testing.T) {
	assert.Equal(t, models.HospitalTypeGovernment, ClassifyHospital("Government Multi Specialty Hospital"))
	assert.Equal(t, models.HospitalTypeGovernment, ClassifyHospital("PGIMER Chandigarh"))
	assert.Equal(t, models.HospitalTypeGovernment, ClassifyHospital("Civil Hospital Manimajra"))
	assert.Equal(t, models.HospitalTypePrivateSuper, ClassifyHospital("Fortis Hospital Mohali"))
	assert.Equal(t, models.HospitalTypePrivateSuper, ClassifyHospital("Max Super Speciality Hospital"))
	assert.Equal(t, models.HospitalTypePrivate, ClassifyHospital("Healing Hospital"))
}

func TestSeedCreatesBoundedCounters(t *testing.T) {
	svc, _ := newCapacityFixture(t, "Government District Hospital", "Fortis Mohali", "Healing Hospital")
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))

	capacities, err := svc.GetAllCapacities(ctx)
	require.NoError(t, err)
	require.Len(t, capacities, 3)

	for _, capacity := range capacities {
		assert.Greater(t, capacity.TotalBeds, 0)
		assert.GreaterOrEqual(t, capacity.AvailableBeds, 0)
		assert.LessOrEqual(t, capacity.AvailableBeds, capacity.TotalBeds)
		assert.GreaterOrEqual(t, capacity.ICUAvailable, 0)
		assert.LessOrEqual(t, capacity.ICUAvailable, capacity.ICUBeds)
		assert.Equal(t, capacity.TotalBeds-capacity.AvailableBeds, capacity.OccupiedBeds)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	svc, _ := newCapacityFixture(t, "Healing Hospital")
	ctx := context.Background()

	require.NoError(t, svc.Seed(ctx))
	before, err := svc.GetCapacity(ctx, mustSingleHospitalID(t, svc))
	require.NoError(t, err)
	require.NotNil(t, before)

	// A second seed pass must not reset existing counters.
	require.NoError(t, svc.Seed(ctx))
	after, err := svc.GetCapacity(ctx, before.HospitalID)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, before.TotalBeds, after.TotalBeds)
	assert.Equal(t, before.AvailableBeds, after.AvailableBeds)
}

func mustSingleHospitalID(t *testing.T, svc CapacityService) string {
	t.Helper()
	capacities, err := svc.GetAllCapacities(context.Background())
	require.NoError(t, err)
	require.Len(t, capacities, 1)
	return capacities[0].HospitalID
}

func TestGetCapacitySeedsLateRegistrations(t *testing.T) {
	svc, hospRepo := newCapacityFixture(t, "Healing Hospital")
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx))

	// A hospital registered after the startup seed still gets counters on
	// first access.
	late := &models.Hospital{Name: "Fortis Mohali", Lat: 30.7, Lng: 76.7}
	require.NoError(t, hospRepo.Create(ctx, late))

	capacity, err := svc.GetCapacity(ctx, late.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, capacity)
	assert.Greater(t, capacity.TotalBeds, 0)

	// The lazily created record persists for later reads.
	again, err := svc.GetCapacity(ctx, late.ID.Hex())
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, capacity.TotalBeds, again.TotalBeds)
}

func TestGetCapacityUnknownHospital(t *testing.T) {
	svc, _ := newCapacityFixture(t, "Healing Hospital")
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx))

	capacity, err := svc.GetCapacity(ctx, primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.Nil(t, capacity)
}

func TestTickKeepsInvariants(t *testing.T) {
	svc, _ := newCapacityFixture(t, "Government District Hospital", "Healing Hospital")
	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx))

	totals := map[string]int{}
	initial, err := svc.GetAllCapacities(ctx)
	require.NoError(t, err)
	for _, capacity := range initial {
		totals[capacity.HospitalID] = capacity.TotalBeds
	}

	for i := 0; i < 100; i++ {
		require.NoError(t, svc.Tick(ctx))
	}

	capacities, err := svc.GetAllCapacities(ctx)
	require.NoError(t, err)
	for _, capacity := range capacities {
		// Total bed counts never drift; only availability walks.
		assert.Equal(t, totals[capacity.HospitalID], capacity.TotalBeds)
		assert.GreaterOrEqual(t, capacity.AvailableBeds, 0)
		assert.LessOrEqual(t, capacity.AvailableBeds, capacity.TotalBeds)
		assert.GreaterOrEqual(t, capacity.ICUAvailable, 0)
		assert.LessOrEqual(t, capacity.ICUAvailable, capacity.ICUBeds)
		assert.GreaterOrEqual(t, capacity.IncomingAmbulances, 0)
		assert.LessOrEqual(t, capacity.IncomingAmbulances, 10)
		assert.InDelta(t, float64(capacity.OccupiedBeds)/float64(capacity.TotalBeds)*100, capacity.OccupancyPercent, 0.01)
	}
}

func TestTickPublishesRowEvents(t *testing.T) {
	hospRepo := newFakeHospitalRepo()
	require.NoError(t, hospRepo.Create(context.Background(), &models.Hospital{Name: "Healing Hospital"}))
	notifier := &recorderNotifier{}
	svc := NewCapacityService(hospRepo, newMemoryCache(), notifier, testSimulatorConfig(), newTestLogger())

	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx))
	require.NoError(t, svc.Tick(ctx))

	assert.Contains(t, notifier.rowEvents, "hospital_capacities:update")
}
