package models

import "time"

type HospitalType string

const (
	HospitalTypeGovernment   HospitalType = "government"
	HospitalTypePrivateSuper HospitalType = "private_super"
	HospitalTypePrivate      HospitalType = "private"
)

// HospitalCapacity is the per-hospital counter set evolved by the capacity
// simulator. A real telemetry feed replacing the simulator must provide the
// same five counters at a bounded update rate.
type HospitalCapacity struct {
	HospitalID         string    `json:"hospital_id" bson:"hospital_id"`
	TotalBeds          int       `json:"total_beds" bson:"total_beds"`
	AvailableBeds      int       `json:"available_beds" bson:"available_beds"`
	ICUBeds            int       `json:"icu_beds" bson:"icu_beds"`
	ICUAvailable       int       `json:"icu_available" bson:"icu_available"`
	OccupiedBeds       int       `json:"occupied_beds" bson:"occupied_beds"`
	IncomingAmbulances int       `json:"incoming_ambulances" bson:"incoming_ambulances"`
	OccupancyPercent   float64   `json:"occupancy_percent" bson:"occupancy_percent"`
	UpdatedAt          time.Time `json:"updated_at" bson:"updated_at"`
}

// Recalculate rederives the occupied count and occupancy percentage from the
// current available-beds figure.
func (c *HospitalCapacity) Recalculate() {
	c.OccupiedBeds = c.TotalBeds - c.AvailableBeds
	if c.TotalBeds > 0 {
		c.OccupancyPercent = float64(c.OccupiedBeds) / float64(c.TotalBeds) * 100
	} else {
		c.OccupancyPercent = 0
	}
}
