package services

import (
	"context"
	"testing"

	"mediroute/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type dispatchFixture struct {
	svc       DispatchService
	tokenRepo *fakeTokenRepo
	ambRepo   *fakeAmbulanceRepo
	hospRepo  *fakeHospitalRepo
	routing   *fakeRouting
	notifier  *recorderNotifier

	ambulance *models.Ambulance
	hospital  *models.Hospital
}

func newDispatchFixture(t *testing.T) *dispatchFixture {
	t.Helper()

	tokenRepo := newFakeTokenRepo()
	ambRepo := newFakeAmbulanceRepo()
	hospRepo := newFakeHospitalRepo()
	updateRepo := newFakeUpdateRepo()
	routing := &fakeRouting{}
	notifier := &recorderNotifier{}
	log := newTestLogger()
	cfg := testDispatchConfig()

	specialtySvc := NewSpecialtyService(hospRepo, updateRepo, cfg, log)
	recommender := NewRecommendationService(specialtySvc, cfg, log)
	svc := NewDispatchService(tokenRepo, ambRepo, hospRepo, recommender, routing, notifier, cfg, log)

	ambulance := &models.Ambulance{CallSign: "AMB-01", Lat: 30.74, Lng: 76.78}
	require.NoError(t, ambRepo.Create(context.Background(), ambulance))

	hospital := &models.Hospital{Name: "PGIMER Chandigarh", Lat: 30.7649, Lng: 76.7764}
	require.NoError(t, hospRepo.Create(context.Background(), hospital))

	return &dispatchFixture{
		svc:       svc,
		tokenRepo: tokenRepo,
		ambRepo:   ambRepo,
		hospRepo:  hospRepo,
		routing:   routing,
		notifier:  notifier,
		ambulance: ambulance,
		hospital:  hospital,
	}
}

var (
	ambulanceActor = models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAmbulanceOperator}
	hospitalActor  = models.Actor{ID: primitive.NewObjectID(), Role: models.RoleHospitalOperator}
	adminActor     = models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
)

func (f *dispatchFixture) createToken(t *testing.T) *models.EmergencyToken {
	t.Helper()
	token, err := f.svc.CreateToken(context.Background(), ambulanceActor, &CreateTokenRequest{
		AmbulanceID:   f.ambulance.ID,
		PickupLat:     30.75,
		PickupLng:     76.79,
		PickupAddress: "Sector 17",
		EmergencyType: "cardiac arrest",
		Keyword:       "Cardiac",
	})
	require.NoError(t, err)
	return token
}

func TestCreateToken(t *testing.T) {
	f := newDispatchFixture(t)

	token := f.createToken(t)

	assert.Equal(t, models.TokenStatusPending, token.Status)
	assert.NotEmpty(t, token.Code)
	assert.Equal(t, f.ambulance.Lat, token.AmbulanceOriginLat)
	assert.Nil(t, token.HospitalID)

	linked, err := f.ambRepo.GetByID(context.Background(), f.ambulance.ID)
	require.NoError(t, err)
	require.NotNil(t, linked.ActiveTokenID)
	assert.Equal(t, token.ID, *linked.ActiveTokenID)
	assert.Equal(t, models.EmergencyStatusActive, linked.EmergencyStatus)
}

func TestCreateTokenRejectsSecondActive(t *testing.T) {
	f := newDispatchFixture(t)
	f.createToken(t)

	_, err := f.svc.CreateToken(context.Background(), ambulanceActor, &CreateTokenRequest{
		AmbulanceID:   f.ambulance.ID,
		PickupLat:     30.70,
		PickupLng:     76.70,
		EmergencyType: "trauma",
	})
	require.Error(t, err)
	assert.True(t, isConflict(err))
}

func TestCreateTokenRequiresAmbulanceRole(t *testing.T) {
	f := newDispatchFixture(t)

	_, err := f.svc.CreateToken(context.Background(), hospitalActor, &CreateTokenRequest{
		AmbulanceID:   f.ambulance.ID,
		PickupLat:     30.75,
		PickupLng:     76.79,
		EmergencyType: "cardiac arrest",
	})
	require.Error(t, err)
	assert.True(t, isAuthorization(err))
}

func TestFullLifecycle(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()
	token := f.createToken(t)

	assigned, err := f.svc.AssignHospital(ctx, hospitalActor, token.ID, &AssignHospitalRequest{
		HospitalID: f.hospital.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusRouteSelected, assigned.Status)
	require.NotNil(t, assigned.RouteToPatient)
	require.NotNil(t, assigned.RouteToHospital)
	assert.Equal(t, models.RouteKindToPatient, assigned.RouteToPatient.Kind)
	assert.Equal(t, models.RouteKindToHospital, assigned.RouteToHospital.Kind)
	assert.Equal(t, assigned.RouteToPatient, assigned.SelectedRoute)
	assert.Equal(t, f.hospital.Name, assigned.HospitalName)
	assert.NotNil(t, assigned.AssignedAt)

	started, err := f.svc.StartJourney(ctx, ambulanceActor, token.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusInProgress, started.Status)
	assert.NotNil(t, started.StartedAt)

	responding, err := f.ambRepo.GetByID(ctx, f.ambulance.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EmergencyStatusResponding, responding.EmergencyStatus)

	arrived, err := f.svc.ArriveAtPatient(ctx, ambulanceActor, token.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusAtPatient, arrived.Status)

	departed, err := f.svc.DepartForHospital(ctx, ambulanceActor, token.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusToHospital, departed.Status)
	assert.Equal(t, departed.RouteToHospital, departed.SelectedRoute)

	completed, err := f.svc.CompleteToken(ctx, ambulanceActor, token.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	released, err := f.ambRepo.GetByID(ctx, f.ambulance.ID)
	require.NoError(t, err)
	assert.Nil(t, released.ActiveTokenID)
	assert.Equal(t, models.EmergencyStatusInactive, released.EmergencyStatus)
}

func TestStartJourneyFromPendingConflicts(t *testing.T) {
	f := newDispatchFixture(t)
	token := f.createToken(t)

	_, err := f.svc.StartJourney(context.Background(), ambulanceActor, token.ID)
	require.Error(t, err)
	assert.True(t, isConflict(err))

	current, err := f.tokenRepo.GetByID(context.Background(), token.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusPending, current.Status)
}

func TestAssignHospitalRequiresHospitalRole(t *testing.T) {
	f := newDispatchFixture(t)
	token := f.createToken(t)

	// Acceptance is the facility's move; the ambulance side only requests.
	_, err := f.svc.AssignHospital(context.Background(), ambulanceActor, token.ID, &AssignHospitalRequest{
		HospitalID: f.hospital.ID,
	})
	require.Error(t, err)
	assert.True(t, isAuthorization(err))

	current, err := f.tokenRepo.GetByID(context.Background(), token.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusPending, current.Status)
}

func TestAssignHospitalAbortsOnRoutingFailure(t *testing.T) {
	f := newDispatchFixture(t)
	token := f.createToken(t)
	f.routing.failNext = true

	_, err := f.svc.AssignHospital(context.Background(), hospitalActor, token.ID, &AssignHospitalRequest{
		HospitalID: f.hospital.ID,
	})
	require.Error(t, err)

	// Nothing persisted: the token is still pending with no legs.
	current, err := f.tokenRepo.GetByID(context.Background(), token.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusPending, current.Status)
	assert.Nil(t, current.RouteToPatient)
	assert.Nil(t, current.RouteToHospital)
}

func TestDeclineToken(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()
	token := f.createToken(t)

	declined, err := f.svc.DeclineToken(ctx, hospitalActor, token.ID, "no ICU beds")
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusDeclined, declined.Status)
	assert.Equal(t, "no ICU beds", declined.DeclineReason)
	assert.Equal(t, 1, f.notifier.declined)

	released, err := f.ambRepo.GetByID(ctx, f.ambulance.ID)
	require.NoError(t, err)
	assert.Nil(t, released.ActiveTokenID)
}

func TestDeclineRequiresReason(t *testing.T) {
	f := newDispatchFixture(t)
	token := f.createToken(t)

	_, err := f.svc.DeclineToken(context.Background(), hospitalActor, token.ID, "")
	require.Error(t, err)
	assert.True(t, isValidation(err))
}

func TestDeclineAfterAcceptanceConflicts(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()
	token := f.createToken(t)

	_, err := f.svc.AssignHospital(ctx, hospitalActor, token.ID, &AssignHospitalRequest{HospitalID: f.hospital.ID})
	require.NoError(t, err)

	// Accepting fixes the destination; backing out is a cancel, not a decline.
	_, err = f.svc.DeclineToken(ctx, hospitalActor, token.ID, "changed our mind")
	require.Error(t, err)
	assert.True(t, isConflict(err))

	current, err := f.tokenRepo.GetByID(ctx, token.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusRouteSelected, current.Status)
}

func TestDeclineAfterStartConflicts(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()
	token := f.createToken(t)

	_, err := f.svc.AssignHospital(ctx, hospitalActor, token.ID, &AssignHospitalRequest{HospitalID: f.hospital.ID})
	require.NoError(t, err)
	_, err = f.svc.StartJourney(ctx, ambulanceActor, token.ID)
	require.NoError(t, err)

	_, err = f.svc.DeclineToken(ctx, hospitalActor, token.ID, "too late")
	require.Error(t, err)
	assert.True(t, isConflict(err))
}

func TestCancelToken(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()
	token := f.createToken(t)

	cancelled, err := f.svc.CancelToken(ctx, ambulanceActor, token.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TokenStatusCancelled, cancelled.Status)
	assert.Equal(t, string(models.RoleAmbulanceOperator), cancelled.CancelledBy)
	assert.NotNil(t, cancelled.CancelledAt)

	// A terminal token cannot be cancelled again.
	_, err = f.svc.CancelToken(ctx, ambulanceActor, token.ID)
	require.Error(t, err)
	assert.True(t, isConflict(err))
}

func TestReleaseAmbulance(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()
	token := f.createToken(t)

	cancelled, err := f.svc.ReleaseAmbulance(ctx, adminActor, f.ambulance.ID)
	require.NoError(t, err)
	require.NotNil(t, cancelled)
	assert.Equal(t, token.ID, cancelled.ID)
	assert.Equal(t, models.TokenStatusCancelled, cancelled.Status)

	released, err := f.ambRepo.GetByID(ctx, f.ambulance.ID)
	require.NoError(t, err)
	assert.Nil(t, released.ActiveTokenID)
}

func TestReleaseAmbulanceWithoutToken(t *testing.T) {
	f := newDispatchFixture(t)

	// Simulate a stale back-reference with no active token behind it.
	stale := primitive.NewObjectID()
	require.NoError(t, f.ambRepo.LinkActiveToken(context.Background(), f.ambulance.ID, stale, models.EmergencyStatusActive))

	cancelled, err := f.svc.ReleaseAmbulance(context.Background(), adminActor, f.ambulance.ID)
	require.NoError(t, err)
	assert.Nil(t, cancelled)

	released, err := f.ambRepo.GetByID(context.Background(), f.ambulance.ID)
	require.NoError(t, err)
	assert.Nil(t, released.ActiveTokenID)
}

func TestReleaseAmbulanceByHospitalOperator(t *testing.T) {
	f := newDispatchFixture(t)
	ctx := context.Background()
	token := f.createToken(t)

	cancelled, err := f.svc.ReleaseAmbulance(ctx, hospitalActor, f.ambulance.ID)
	require.NoError(t, err)
	require.NotNil(t, cancelled)
	assert.Equal(t, token.ID, cancelled.ID)
}

func TestReleaseAmbulanceRejectsAmbulanceSide(t *testing.T) {
	f := newDispatchFixture(t)

	_, err := f.svc.ReleaseAmbulance(context.Background(), ambulanceActor, f.ambulance.ID)
	require.Error(t, err)
	assert.True(t, isAuthorization(err))
}

func TestCreateTokenByHospital(t *testing.T) {
	f := newDispatchFixture(t)

	token, err := f.svc.CreateTokenByHospital(context.Background(), hospitalActor, &HospitalCreateTokenRequest{
		HospitalID:    f.hospital.ID,
		AmbulanceID:   f.ambulance.ID,
		PickupLat:     30.75,
		PickupLng:     76.79,
		EmergencyType: "transfer",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TokenStatusRouteSelected, token.Status)
	require.NotNil(t, token.HospitalID)
	assert.Equal(t, f.hospital.ID, *token.HospitalID)
	require.NotNil(t, token.RouteToPatient)
	require.NotNil(t, token.RouteToHospital)
	assert.NotNil(t, token.AssignedAt)
	assert.Equal(t, 1, f.notifier.assigned)
}

func TestCreateTokenByHospitalAbortsOnRoutingFailure(t *testing.T) {
	f := newDispatchFixture(t)
	f.routing.failNext = true

	_, err := f.svc.CreateTokenByHospital(context.Background(), hospitalActor, &HospitalCreateTokenRequest{
		HospitalID:    f.hospital.ID,
		AmbulanceID:   f.ambulance.ID,
		PickupLat:     30.75,
		PickupLng:     76.79,
		EmergencyType: "transfer",
	})
	require.Error(t, err)

	// No token was persisted and the ambulance stays free.
	active, err := f.tokenRepo.GetActiveByAmbulance(context.Background(), f.ambulance.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestRecommendHospitals(t *testing.T) {
	f := newDispatchFixture(t)

	rec, err := f.svc.RecommendHospitals(context.Background(), 30.75, 76.79, "Cardiac")
	require.NoError(t, err)
	require.NotNil(t, rec.Best)
	require.NotNil(t, rec.Nearest)
}
