package handlers

import (
	"context"
	"time"

	"mediroute/internal/middleware"
	"mediroute/internal/models"
	"mediroute/internal/services"
	"mediroute/internal/utils"
	"mediroute/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DispatchHandler struct {
	dispatchService services.DispatchService
}

func NewDispatchHandler(dispatchService services.DispatchService) *DispatchHandler {
	return &DispatchHandler{
		dispatchService: dispatchService,
	}
}

// CreateToken opens a new emergency token for an ambulance
func (h *DispatchHandler) CreateToken(c *gin.Context) {
	var request validators.TokenCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	token, err := h.dispatchService.CreateToken(c.Request.Context(), actor, &services.CreateTokenRequest{
		AmbulanceID:   request.AmbulanceID,
		PickupLat:     request.PickupLat,
		PickupLng:     request.PickupLng,
		PickupAddress: request.PickupAddress,
		EmergencyType: request.EmergencyType,
		Keyword:       request.Keyword,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Emergency token created", token)
}

// AssignHospital fixes a token's destination and computes both route legs
func (h *DispatchHandler) AssignHospital(c *gin.Context) {
	tokenID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid token ID")
		return
	}

	var request validators.TokenAssignRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	token, err := h.dispatchService.AssignHospital(c.Request.Context(), actor, tokenID, &services.AssignHospitalRequest{
		HospitalID: request.HospitalID,
		Preference: models.RoutePreference(request.Preference),
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Hospital assigned", token)
}

// CreateTokenByHospital opens a transport requested by a facility
func (h *DispatchHandler) CreateTokenByHospital(c *gin.Context) {
	var request validators.HospitalTokenCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	token, err := h.dispatchService.CreateTokenByHospital(c.Request.Context(), actor, &services.HospitalCreateTokenRequest{
		HospitalID:    request.HospitalID,
		AmbulanceID:   request.AmbulanceID,
		PickupLat:     request.PickupLat,
		PickupLng:     request.PickupLng,
		PickupAddress: request.PickupAddress,
		EmergencyType: request.EmergencyType,
		Keyword:       request.Keyword,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, "Emergency token created", token)
}

// StartJourney moves a token to in_progress
func (h *DispatchHandler) StartJourney(c *gin.Context) {
	h.advance(c, h.dispatchService.StartJourney, "Journey started")
}

// ArriveAtPatient marks arrival at the pickup point
func (h *DispatchHandler) ArriveAtPatient(c *gin.Context) {
	h.advance(c, h.dispatchService.ArriveAtPatient, "Arrival recorded")
}

// DepartForHospital starts the hospital leg
func (h *DispatchHandler) DepartForHospital(c *gin.Context) {
	h.advance(c, h.dispatchService.DepartForHospital, "Departure recorded")
}

// CompleteToken closes a token after handover at the hospital
func (h *DispatchHandler) CompleteToken(c *gin.Context) {
	h.advance(c, h.dispatchService.CompleteToken, "Token completed")
}

func (h *DispatchHandler) advance(c *gin.Context, op func(ctx context.Context, actor models.Actor, tokenID primitive.ObjectID) (*models.EmergencyToken, error), message string) {
	tokenID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid token ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	token, err := op(c.Request.Context(), actor, tokenID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, message, token)
}

// DeclineToken lets a hospital refuse an inbound transport
func (h *DispatchHandler) DeclineToken(c *gin.Context) {
	tokenID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid token ID")
		return
	}

	var request validators.TokenDeclineRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	token, err := h.dispatchService.DeclineToken(c.Request.Context(), actor, tokenID, request.Reason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token declined", token)
}

// CancelToken cancels an active token
func (h *DispatchHandler) CancelToken(c *gin.Context) {
	tokenID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid token ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	token, err := h.dispatchService.CancelToken(c.Request.Context(), actor, tokenID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token cancelled", token)
}

// ReleaseAmbulance force-clears a vehicle's active token
func (h *DispatchHandler) ReleaseAmbulance(c *gin.Context) {
	ambulanceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ambulance ID")
		return
	}

	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	token, err := h.dispatchService.ReleaseAmbulance(c.Request.Context(), actor, ambulanceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ambulance released", token)
}

// GetToken retrieves one token by ID
func (h *DispatchHandler) GetToken(c *gin.Context) {
	tokenID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid token ID")
		return
	}

	token, err := h.dispatchService.GetToken(c.Request.Context(), tokenID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token retrieved", token)
}

// GetTokenByCode retrieves one token by its human-readable code
func (h *DispatchHandler) GetTokenByCode(c *gin.Context) {
	token, err := h.dispatchService.GetTokenByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token retrieved", token)
}

// GetActiveTokenForAmbulance retrieves the vehicle's current token, if any
func (h *DispatchHandler) GetActiveTokenForAmbulance(c *gin.Context) {
	ambulanceID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid ambulance ID")
		return
	}

	token, err := h.dispatchService.GetActiveTokenForAmbulance(c.Request.Context(), ambulanceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Active token retrieved", token)
}

// ListTokens lists tokens with optional status/hospital/date filters
func (h *DispatchHandler) ListTokens(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := &services.TokenFilter{}
	if status := c.Query("status"); status != "" {
		filter.Status = models.TokenStatus(status)
	}
	if hospitalHex := c.Query("hospital_id"); hospitalHex != "" {
		hospitalID, err := primitive.ObjectIDFromHex(hospitalHex)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid hospital ID")
			return
		}
		filter.HospitalID = &hospitalID
	}
	if startStr, endStr := c.Query("start_date"), c.Query("end_date"); startStr != "" && endStr != "" {
		start, err1 := time.Parse(time.RFC3339, startStr)
		end, err2 := time.Parse(time.RFC3339, endStr)
		if err1 != nil || err2 != nil {
			utils.BadRequestResponse(c, "Dates must be RFC3339")
			return
		}
		filter.StartDate = &start
		filter.EndDate = &end
	}

	tokens, total, err := h.dispatchService.ListTokens(c.Request.Context(), filter, params)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Tokens retrieved", tokens, &utils.Meta{Total: total, Count: len(tokens)})
}

// RecommendHospitals scores the directory against a patient location
func (h *DispatchHandler) RecommendHospitals(c *gin.Context) {
	var request validators.RecommendationRequest
	if err := c.ShouldBindQuery(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		utils.BadRequestResponse(c, errs.Error())
		return
	}

	recommendation, err := h.dispatchService.RecommendHospitals(c.Request.Context(), request.Lat, request.Lng, request.Keyword)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, "Recommendation computed", recommendation)
}
