package services

import (
	"context"
	"testing"

	"mediroute/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHospitalFixture(t *testing.T) (HospitalService, *fakeHospitalRepo, *fakeUpdateRepo, *recorderNotifier) {
	t.Helper()
	hospRepo := newFakeHospitalRepo()
	updateRepo := newFakeUpdateRepo()
	notifier := &recorderNotifier{}
	log := newTestLogger()
	specialtySvc := NewSpecialtyService(hospRepo, updateRepo, testDispatchConfig(), log)
	svc := NewHospitalService(hospRepo, updateRepo, specialtySvc, notifier, log)
	return svc, hospRepo, updateRepo, notifier
}

func TestCreateHospitalInfersSpecialties(t *testing.T) {
	svc, hospRepo, _, _ := newHospitalFixture(t)
	ctx := context.Background()

	hospital, err := svc.CreateHospital(ctx, &CreateHospitalRequest{
		Name: "City Cardiac Centre",
		Lat:  30.74,
		Lng:  76.78,
	})
	require.NoError(t, err)

	stored, err := hospRepo.GetByID(ctx, hospital.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.Specialties, "Cardiac")
	assert.False(t, stored.SpecialtiesEdited)
}

func TestCreateHospitalExplicitSpecialtiesAreFrozen(t *testing.T) {
	svc, hospRepo, _, _ := newHospitalFixture(t)
	ctx := context.Background()

	hospital, err := svc.CreateHospital(ctx, &CreateHospitalRequest{
		Name:        "City Cardiac Centre",
		Lat:         30.74,
		Lng:         76.78,
		Specialties: []string{"Oncology"},
	})
	require.NoError(t, err)

	stored, err := hospRepo.GetByID(ctx, hospital.ID)
	require.NoError(t, err)
	assert.True(t, stored.SpecialtiesEdited)
	assert.Equal(t, []string{"Oncology"}, stored.Specialties)
}

func TestCreateHospitalDuplicateName(t *testing.T) {
	svc, _, _, _ := newHospitalFixture(t)
	ctx := context.Background()

	_, err := svc.CreateHospital(ctx, &CreateHospitalRequest{Name: "Dup", Lat: 1, Lng: 1})
	require.NoError(t, err)
	_, err = svc.CreateHospital(ctx, &CreateHospitalRequest{Name: "Dup", Lat: 1, Lng: 1})
	require.Error(t, err)
	assert.True(t, isConflict(err))
}

func TestRecordUpdateTriggersReconciliation(t *testing.T) {
	svc, hospRepo, updateRepo, _ := newHospitalFixture(t)
	ctx := context.Background()

	hospital, err := svc.CreateHospital(ctx, &CreateHospitalRequest{Name: "Plain Hospital", Lat: 1, Lng: 1})
	require.NoError(t, err)

	_, err = svc.RecordUpdate(ctx, hospital.ID, &RecordUpdateRequest{
		Type:    models.HospitalUpdateEquipment,
		Payload: map[string]interface{}{"note": "ventilator fleet doubled"},
	})
	require.NoError(t, err)

	updates, err := updateRepo.GetByHospital(ctx, hospital.ID, 10)
	require.NoError(t, err)
	require.Len(t, updates, 1)

	stored, err := hospRepo.GetByID(ctx, hospital.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.Specialties, "Respiratory")
}

func TestSeedDirectory(t *testing.T) {
	svc, hospRepo, _, _ := newHospitalFixture(t)
	ctx := context.Background()

	inserted, err := svc.SeedDirectory(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(hospitalDirectorySeed), inserted)

	all, err := hospRepo.GetAllUnpaged(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(hospitalDirectorySeed))
	for _, hospital := range all {
		assert.True(t, hospital.Seeded)
	}

	// A second pass inserts nothing.
	inserted, err = svc.SeedDirectory(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}

func TestSeedDirectoryLiveRecordWins(t *testing.T) {
	svc, hospRepo, _, _ := newHospitalFixture(t)
	ctx := context.Background()

	live, err := svc.CreateHospital(ctx, &CreateHospitalRequest{
		Name: "PGIMER Chandigarh",
		Lat:  30.0,
		Lng:  76.0,
	})
	require.NoError(t, err)

	inserted, err := svc.SeedDirectory(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(hospitalDirectorySeed)-1, inserted)

	stored, err := hospRepo.GetByName(ctx, "PGIMER Chandigarh")
	require.NoError(t, err)
	assert.Equal(t, live.ID, stored.ID)
	assert.False(t, stored.Seeded)
}
