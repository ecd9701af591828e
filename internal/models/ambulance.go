package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmergencyStatus string

const (
	EmergencyStatusInactive   EmergencyStatus = "inactive"
	EmergencyStatusActive     EmergencyStatus = "active"
	EmergencyStatusResponding EmergencyStatus = "responding"
)

type Ambulance struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CallSign        string              `json:"call_sign" bson:"call_sign" validate:"required"`
	OperatorID      primitive.ObjectID  `json:"operator_id" bson:"operator_id"`
	Lat             float64             `json:"lat" bson:"lat"`
	Lng             float64             `json:"lng" bson:"lng"`
	Heading         float64             `json:"heading" bson:"heading"`
	SpeedKmh        float64             `json:"speed_kmh" bson:"speed_kmh"`
	EmergencyStatus EmergencyStatus     `json:"emergency_status" bson:"emergency_status" default:"inactive"`
	ActiveTokenID   *primitive.ObjectID `json:"active_token_id" bson:"active_token_id"`
	PushToken       string              `json:"push_token" bson:"push_token"`
	LastSeenAt      *time.Time          `json:"last_seen_at" bson:"last_seen_at"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" bson:"updated_at"`
}

// LocationUpdate is the external position event pushed by the vehicle app.
type LocationUpdate struct {
	Lat      float64 `json:"lat" validate:"required"`
	Lng      float64 `json:"lng" validate:"required"`
	Heading  float64 `json:"heading"`
	SpeedKmh float64 `json:"speed_kmh"`
}
