package validators

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AmbulanceRegisterRequest struct {
	CallSign   string             `json:"call_sign" validate:"required,min=2,max=32"`
	OperatorID primitive.ObjectID `json:"operator_id" validate:"omitempty"`
	Lat        float64            `json:"lat" validate:"omitempty,latitude"`
	Lng        float64            `json:"lng" validate:"omitempty,longitude"`
	PushToken  string             `json:"push_token" validate:"omitempty,max=512"`
}

type LocationUpdateRequest struct {
	Lat      float64 `json:"lat" validate:"required,latitude"`
	Lng      float64 `json:"lng" validate:"required,longitude"`
	Heading  float64 `json:"heading" validate:"omitempty,heading"`
	SpeedKmh float64 `json:"speed_kmh" validate:"omitempty,min=0,max=200"`
}

type HospitalCreateRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=128"`
	Lat         float64  `json:"lat" validate:"required,latitude"`
	Lng         float64  `json:"lng" validate:"required,longitude"`
	Address     string   `json:"address" validate:"omitempty,max=255"`
	Specialties []string `json:"specialties" validate:"omitempty,max=20,dive,min=2,max=50"`
	PushToken   string   `json:"push_token" validate:"omitempty,max=512"`
}

type HospitalUpdateRequest struct {
	Address     *string  `json:"address" validate:"omitempty,max=255"`
	Specialties []string `json:"specialties" validate:"omitempty,max=20,dive,min=2,max=50"`
	PushToken   *string  `json:"push_token" validate:"omitempty,max=512"`
}

type HospitalRecordUpdateRequest struct {
	Type    string                 `json:"type" validate:"required,oneof=capability department equipment specialist accreditation"`
	Payload map[string]interface{} `json:"payload" validate:"required"`
}
