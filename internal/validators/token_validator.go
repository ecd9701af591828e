package validators

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TokenCreateRequest struct {
	AmbulanceID   primitive.ObjectID `json:"ambulance_id" validate:"required,object_id"`
	PickupLat     float64            `json:"pickup_lat" validate:"required,latitude"`
	PickupLng     float64            `json:"pickup_lng" validate:"required,longitude"`
	PickupAddress string             `json:"pickup_address" validate:"omitempty,max=255"`
	EmergencyType string             `json:"emergency_type" validate:"required,max=100"`
	Keyword       string             `json:"keyword" validate:"omitempty,max=50"`
}

type TokenAssignRequest struct {
	HospitalID primitive.ObjectID `json:"hospital_id" validate:"required,object_id"`
	Preference string             `json:"preference" validate:"omitempty,oneof=fastest shortest"`
}

type TokenDeclineRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=255"`
}

type HospitalTokenCreateRequest struct {
	HospitalID    primitive.ObjectID `json:"hospital_id" validate:"required,object_id"`
	AmbulanceID   primitive.ObjectID `json:"ambulance_id" validate:"required,object_id"`
	PickupLat     float64            `json:"pickup_lat" validate:"required,latitude"`
	PickupLng     float64            `json:"pickup_lng" validate:"required,longitude"`
	PickupAddress string             `json:"pickup_address" validate:"omitempty,max=255"`
	EmergencyType string             `json:"emergency_type" validate:"required,max=100"`
	Keyword       string             `json:"keyword" validate:"omitempty,max=50"`
}

type RecommendationRequest struct {
	Lat     float64 `json:"lat" form:"lat" validate:"required,latitude"`
	Lng     float64 `json:"lng" form:"lng" validate:"required,longitude"`
	Keyword string  `json:"keyword" form:"keyword" validate:"omitempty,max=50"`
}
