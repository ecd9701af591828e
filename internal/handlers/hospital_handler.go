package handlers

import (
	"strconv"

	"mediroute/internal/models"
	"mediroute/internal/services"
	"mediroute/internal/utils"
	"mediroute/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type HospitalHandler struct {
	hospitalService services.HospitalService
	capacityService services.CapacityService
}

func NewHospitalHandler(hospitalService services.HospitalService, capacityService services.CapacityService) *HospitalHandler {
	return &HospitalHandler{
		hospitalService: hospitalService,
		capacityService: capacityService,
	}
}

// CreateHospital registers a new facility
func (h *HospitalHandler) CreateHospital(c *gin.Context) {
	var request validators.HospitalCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	hospital, err := h.hospitalService.CreateHospital(c.Request.Context(), &services.CreateHospitalRequest{
		Name:        request.Name,
		Lat:         request.Lat,
		Lng:         request.Lng,
		Address:     request.Address,
		Specialties: request.Specialties,
		PushToken:   request.PushToken,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Hospital created", hospital)
}

// UpdateHospital edits facility details; an explicit specialty list freezes
// the derived tags
func (h *HospitalHandler) UpdateHospital(c *gin.Context) {
	hospitalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid hospital ID")
		return
	}

	var request validators.HospitalUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	hospital, err := h.hospitalService.UpdateHospital(c.Request.Context(), hospitalID, &services.UpdateHospitalRequest{
		Address:     request.Address,
		Specialties: request.Specialties,
		PushToken:   request.PushToken,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Hospital updated", hospital)
}

// GetHospital retrieves one facility
func (h *HospitalHandler) GetHospital(c *gin.Context) {
	hospitalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid hospital ID")
		return
	}

	hospital, err := h.hospitalService.GetHospital(c.Request.Context(), hospitalID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Hospital retrieved", hospital)
}

// GetHospitals lists the directory
func (h *HospitalHandler) GetHospitals(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	hospitals, total, err := h.hospitalService.GetHospitals(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Hospitals retrieved", hospitals, &utils.Meta{Total: total, Count: len(hospitals)})
}

// GetNearbyHospitals lists facilities within a radius of a point
func (h *HospitalHandler) GetNearbyHospitals(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		utils.BadRequestResponse(c, "lat and lng are required")
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "10000"), 64)
	if err != nil || radius <= 0 {
		utils.BadRequestResponse(c, "Invalid radius")
		return
	}

	hospitals, err := h.hospitalService.GetNearbyHospitals(c.Request.Context(), lat, lng, radius)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Nearby hospitals retrieved", hospitals)
}

// RecordUpdate appends a capability update record
func (h *HospitalHandler) RecordUpdate(c *gin.Context) {
	hospitalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid hospital ID")
		return
	}

	var request validators.HospitalRecordUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	update, err := h.hospitalService.RecordUpdate(c.Request.Context(), hospitalID, &services.RecordUpdateRequest{
		Type:    models.HospitalUpdateType(request.Type),
		Payload: request.Payload,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Update recorded", update)
}

// GetUpdates lists a facility's recent capability updates
func (h *HospitalHandler) GetUpdates(c *gin.Context) {
	hospitalID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid hospital ID")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}

	updates, err := h.hospitalService.GetUpdates(c.Request.Context(), hospitalID, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Updates retrieved", updates)
}

// GetCapacity returns the live bed counters for one facility
func (h *HospitalHandler) GetCapacity(c *gin.Context) {
	capacity, err := h.capacityService.GetCapacity(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if capacity == nil {
		utils.NotFoundResponse(c, "No capacity data for this hospital")
		return
	}

	utils.SuccessResponse(c, "Capacity retrieved", capacity)
}

// GetAllCapacities returns bed counters across the directory
func (h *HospitalHandler) GetAllCapacities(c *gin.Context) {
	capacities, err := h.capacityService.GetAllCapacities(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Capacities retrieved", capacities)
}
