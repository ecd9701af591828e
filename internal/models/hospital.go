package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Hospital struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name    string             `json:"name" bson:"name" validate:"required"`
	Lat     float64            `json:"lat" bson:"lat" validate:"required"`
	Lng     float64            `json:"lng" bson:"lng" validate:"required"`
	Address string             `json:"address" bson:"address"`

	// Specialties is derived data, recomputed from the name/address text and
	// the hospital's update records by the specialty reconciliation job. It is
	// only authoritative when edited explicitly by the facility.
	Specialties       []string               `json:"specialties" bson:"specialties"`
	Capabilities      map[string]interface{} `json:"capabilities" bson:"capabilities"`
	SpecialtiesEdited bool                   `json:"specialties_edited" bson:"specialties_edited"`

	PushToken           string     `json:"push_token" bson:"push_token"`
	Seeded              bool       `json:"seeded" bson:"seeded"`
	LastSpecialtyUpdate *time.Time `json:"last_specialty_update" bson:"last_specialty_update"`
	CreatedAt           time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" bson:"updated_at"`
}

type HospitalUpdateType string

const (
	HospitalUpdateCapability    HospitalUpdateType = "capability"
	HospitalUpdateDepartment    HospitalUpdateType = "department"
	HospitalUpdateEquipment     HospitalUpdateType = "equipment"
	HospitalUpdateSpecialist    HospitalUpdateType = "specialist"
	HospitalUpdateAccreditation HospitalUpdateType = "accreditation"
)

// HospitalUpdate is an append-only record of a capability change for one
// hospital. The dispatch core never mutates or removes one; it only searches
// the serialized payload for specialty keywords.
type HospitalUpdate struct {
	ID         primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	HospitalID primitive.ObjectID     `json:"hospital_id" bson:"hospital_id" validate:"required"`
	Type       HospitalUpdateType     `json:"type" bson:"type" validate:"required"`
	Payload    map[string]interface{} `json:"payload" bson:"payload"`
	CreatedAt  time.Time              `json:"created_at" bson:"created_at"`
}
