package utils

import "time"

// Application Constants
const (
	AppName    = "MediRoute"
	AppVersion = "1.0.0"

	EarthRadiusMeters = 6371000.0

	// Default values
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Dispatch Constants
	TokenCodeLength          = 6
	DefaultSearchRadiusKM    = 25.0
	MaxSearchRadiusKM        = 100.0
	AmbulanceLocationStaleAt = 2 * time.Minute

	// Capacity Simulator Constants
	DefaultSimulatorTick = 15 * time.Second
	MaxBedDeltaPerTick   = 3
	MaxICUDeltaPerTick   = 1

	// Rate Limiting
	DefaultRateLimit = 100
)

// Response Status
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrValidationFailed = "Validation failed"
	ErrInternalServer   = "Internal server error"
	ErrUnauthorized     = "Unauthorized access"
	ErrForbidden        = "Access forbidden"
	ErrNotFoundMsg      = "Resource not found"
)

// Context Keys
const (
	ContextActorID   = "actor_id"
	ContextActorRole = "actor_role"
	ContextRequestID = "request_id"
)
