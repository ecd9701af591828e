package handlers

import (
	"mediroute/internal/models"
	"mediroute/internal/services"
	"mediroute/internal/utils"
	"mediroute/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AmbulanceHandler struct {
	ambulanceService services.AmbulanceService
}

func NewAmbulanceHandler(ambulanceService services.AmbulanceService) *AmbulanceHandler {
	return &AmbulanceHandler{
		ambulanceService: ambulanceService,
	}
}

// Register adds a new vehicle to the fleet
func (h *AmbulanceHandler) Register(c *gin.Context) {
	var request validators.AmbulanceRegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	ambulance, err := h.ambulanceService.Register(c.Request.Context(), &services.RegisterAmbulanceRequest{
		CallSign:   request.CallSign,
		OperatorID: request.OperatorID,
		Lat:        request.Lat,
		Lng:        request.Lng,
		PushToken:  request.PushToken,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Ambulance registered", ambulance)
}

// GetAmbulance retrieves one vehicle
func (h *AmbulanceHandler) GetAmbulance(c *gin.Context) {
	ambulanceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ambulance ID")
		return
	}

	ambulance, err := h.ambulanceService.GetAmbulance(c.Request.Context(), ambulanceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ambulance retrieved", ambulance)
}

// GetAmbulances lists the fleet
func (h *AmbulanceHandler) GetAmbulances(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	ambulances, total, err := h.ambulanceService.GetAmbulances(c.Request.Context(), params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Ambulances retrieved", ambulances, &utils.Meta{Total: total, Count: len(ambulances)})
}

// UpdateLocation ingests one telemetry event from the vehicle app
func (h *AmbulanceHandler) UpdateLocation(c *gin.Context) {
	ambulanceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ambulance ID")
		return
	}

	var request validators.LocationUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	position, err := h.ambulanceService.UpdateLocation(c.Request.Context(), ambulanceID, &models.LocationUpdate{
		Lat:      request.Lat,
		Lng:      request.Lng,
		Heading:  request.Heading,
		SpeedKmh: request.SpeedKmh,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Location updated", position)
}
