package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TokenStatus string

const (
	TokenStatusPending       TokenStatus = "pending"
	TokenStatusAssigned      TokenStatus = "assigned"
	TokenStatusRouteSelected TokenStatus = "route_selected"
	TokenStatusInProgress    TokenStatus = "in_progress"
	TokenStatusAtPatient     TokenStatus = "at_patient"
	TokenStatusToHospital    TokenStatus = "to_hospital"
	TokenStatusCompleted     TokenStatus = "completed"
	TokenStatusCancelled     TokenStatus = "cancelled"
	TokenStatusDeclined      TokenStatus = "declined"
)

// ActiveTokenStatuses are the non-terminal statuses. An ambulance may hold at
// most one token in any of these at a time.
var ActiveTokenStatuses = []TokenStatus{
	TokenStatusPending,
	TokenStatusAssigned,
	TokenStatusRouteSelected,
	TokenStatusInProgress,
	TokenStatusAtPatient,
	TokenStatusToHospital,
}

func (s TokenStatus) IsTerminal() bool {
	switch s {
	case TokenStatusCompleted, TokenStatusCancelled, TokenStatusDeclined:
		return true
	}
	return false
}

func (s TokenStatus) IsActive() bool {
	return s != "" && !s.IsTerminal()
}

// EmergencyToken tracks one patient transport end-to-end, from the first
// request through arrival at a hospital (or a terminal decline/cancel).
type EmergencyToken struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Code        string             `json:"code" bson:"code" validate:"required"`
	AmbulanceID primitive.ObjectID `json:"ambulance_id" bson:"ambulance_id" validate:"required"`

	// Ambulance position at token creation time. Route legs are anchored
	// here even if the vehicle has moved since.
	AmbulanceOriginLat float64 `json:"ambulance_origin_lat" bson:"ambulance_origin_lat"`
	AmbulanceOriginLng float64 `json:"ambulance_origin_lng" bson:"ambulance_origin_lng"`

	PickupLat     float64 `json:"pickup_lat" bson:"pickup_lat" validate:"required"`
	PickupLng     float64 `json:"pickup_lng" bson:"pickup_lng" validate:"required"`
	PickupAddress string  `json:"pickup_address" bson:"pickup_address"`

	HospitalID   *primitive.ObjectID `json:"hospital_id" bson:"hospital_id"`
	HospitalName string              `json:"hospital_name" bson:"hospital_name"`
	HospitalLat  *float64            `json:"hospital_lat" bson:"hospital_lat"`
	HospitalLng  *float64            `json:"hospital_lng" bson:"hospital_lng"`

	EmergencyType string `json:"emergency_type" bson:"emergency_type"`
	Keyword       string `json:"keyword" bson:"keyword"`

	RouteToPatient  *RouteLeg `json:"route_to_patient" bson:"route_to_patient"`
	RouteToHospital *RouteLeg `json:"route_to_hospital" bson:"route_to_hospital"`
	// SelectedRoute mirrors RouteToPatient for consumers that predate the
	// two-leg representation.
	SelectedRoute *RouteLeg `json:"selected_route" bson:"selected_route"`

	Status        TokenStatus `json:"status" bson:"status" default:"pending"`
	DeclineReason string      `json:"decline_reason" bson:"decline_reason"`
	CancelledBy   string      `json:"cancelled_by" bson:"cancelled_by"`

	CreatedAt          time.Time  `json:"created_at" bson:"created_at"`
	AssignedAt         *time.Time `json:"assigned_at" bson:"assigned_at"`
	StartedAt          *time.Time `json:"started_at" bson:"started_at"`
	ArrivedAtPatientAt *time.Time `json:"arrived_at_patient_at" bson:"arrived_at_patient_at"`
	CompletedAt        *time.Time `json:"completed_at" bson:"completed_at"`
	CancelledAt        *time.Time `json:"cancelled_at" bson:"cancelled_at"`
	UpdatedAt          time.Time  `json:"updated_at" bson:"updated_at"`
}

func (t *EmergencyToken) IsActive() bool {
	return t.Status.IsActive()
}
