package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type ActorRole string

const (
	RoleAmbulanceOperator ActorRole = "ambulance_operator"
	RoleHospitalOperator  ActorRole = "hospital_operator"
	RoleAdmin             ActorRole = "admin"
)

// Actor identifies the authenticated caller of a dispatch operation.
// Identity is established upstream; the dispatch core only checks roles.
type Actor struct {
	ID   primitive.ObjectID `json:"id"`
	Role ActorRole          `json:"role"`
}

func (a Actor) IsAmbulanceSide() bool {
	return a.Role == RoleAmbulanceOperator || a.Role == RoleAdmin
}

func (a Actor) IsHospitalSide() bool {
	return a.Role == RoleHospitalOperator || a.Role == RoleAdmin
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
