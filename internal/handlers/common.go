package handlers

import (
	"net/http"

	"mediroute/internal/utils"

	"github.com/gin-gonic/gin"
)

// handleServiceError maps the service error taxonomy onto HTTP responses.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case utils.IsKind(err, utils.KindValidation):
		utils.BadRequestResponse(c, utils.UserMessage(err))
	case utils.IsKind(err, utils.KindAuthorization):
		utils.ForbiddenResponse(c)
	case utils.IsKind(err, utils.KindNotFound):
		utils.NotFoundResponse(c, utils.UserMessage(err))
	case utils.IsKind(err, utils.KindConflict):
		utils.ConflictResponse(c, utils.UserMessage(err))
	case utils.IsKind(err, utils.KindUpstream):
		utils.ErrorResponse(c, http.StatusBadGateway, "UPSTREAM_FAILED", utils.UserMessage(err))
	default:
		utils.InternalServerErrorResponse(c)
	}
}
