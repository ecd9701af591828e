package services

import (
	"context"
	"testing"

	"mediroute/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSpecialtyService(hospRepo *fakeHospitalRepo, updateRepo *fakeUpdateRepo) SpecialtyService {
	return NewSpecialtyService(hospRepo, updateRepo, testDispatchConfig(), newTestLogger())
}

func TestInferSpecialtiesFromText(t *testing.T) {
	svc := newSpecialtyService(newFakeHospitalRepo(), newFakeUpdateRepo())

	inference := svc.InferSpecialties("Advanced Cardiac Care and Trauma Centre", nil)

	assert.Contains(t, inference.Specialties, "Cardiac")
	assert.Contains(t, inference.Specialties, "Trauma")
	assert.NotContains(t, inference.Specialties, "Oncology")
	assert.NotEmpty(t, inference.Evidence)
}

func TestInferSpecialtiesFromUpdateRecords(t *testing.T) {
	svc := newSpecialtyService(newFakeHospitalRepo(), newFakeUpdateRepo())

	updates := []*models.HospitalUpdate{
		{
			Type:    models.HospitalUpdateEquipment,
			Payload: map[string]interface{}{"equipment": "new cath lab commissioned"},
		},
	}

	inference := svc.InferSpecialties("City Hospital", updates)
	assert.Contains(t, inference.Specialties, "Cardiac")
}

func TestInferSpecialtiesBelowCutoff(t *testing.T) {
	cfg := testDispatchConfig()
	cfg.SpecialtyScoreCutoff = 5
	svc := NewSpecialtyService(newFakeHospitalRepo(), newFakeUpdateRepo(), cfg, newTestLogger())

	// A single text hit scores 2, below the raised cutoff.
	inference := svc.InferSpecialties("Cardiac Clinic", nil)
	assert.Empty(t, inference.Specialties)
}

func TestInferSpecialtiesEmptyInput(t *testing.T) {
	svc := newSpecialtyService(newFakeHospitalRepo(), newFakeUpdateRepo())

	inference := svc.InferSpecialties("", nil)
	assert.Empty(t, inference.Specialties)
	assert.Empty(t, inference.Evidence)
}

func TestInferSpecialtiesDeterministic(t *testing.T) {
	svc := newSpecialtyService(newFakeHospitalRepo(), newFakeUpdateRepo())

	first := svc.InferSpecialties("Neuro and Spine Institute, stroke unit", nil)
	second := svc.InferSpecialties("Neuro and Spine Institute, stroke unit", nil)
	assert.Equal(t, first, second)
}

func TestVocabularySorted(t *testing.T) {
	svc := newSpecialtyService(newFakeHospitalRepo(), newFakeUpdateRepo())

	vocab := svc.Vocabulary()
	require.NotEmpty(t, vocab)
	for i := 1; i < len(vocab); i++ {
		assert.Less(t, vocab[i-1], vocab[i])
	}
}

func TestReconcileHospitalPersistsTags(t *testing.T) {
	hospRepo := newFakeHospitalRepo()
	updateRepo := newFakeUpdateRepo()
	svc := newSpecialtyService(hospRepo, updateRepo)
	ctx := context.Background()

	hospital := &models.Hospital{Name: "Chest and Lung Care Hospital", Address: "Sector 9"}
	require.NoError(t, hospRepo.Create(ctx, hospital))

	require.NoError(t, svc.ReconcileHospital(ctx, hospital))

	stored, err := hospRepo.GetByID(ctx, hospital.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.Specialties, "Respiratory")
}

func TestReconcileSkipsEditedHospitals(t *testing.T) {
	hospRepo := newFakeHospitalRepo()
	svc := newSpecialtyService(hospRepo, newFakeUpdateRepo())
	ctx := context.Background()

	hospital := &models.Hospital{
		Name:              "Cardiac Institute",
		Specialties:       []string{"Maternity"},
		SpecialtiesEdited: true,
	}
	require.NoError(t, hospRepo.Create(ctx, hospital))

	require.NoError(t, svc.ReconcileHospital(ctx, hospital))

	stored, err := hospRepo.GetByID(ctx, hospital.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Maternity"}, stored.Specialties)
}
