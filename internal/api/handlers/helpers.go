package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"xdrive-logistics-api-server/internal/api/middleware"
	"xdrive-logistics-api-server/internal/auth"
	"xdrive-logistics-api-server/internal/service"
)

// actorFromContext rebuilds the acting identity from the claims the
// Authenticate middleware stored.
func actorFromContext(c *gin.Context) service.Actor {
	role, _ := auth.ParseRole(c.GetString(middleware.CtxUserRole))
	return service.Actor{
		UserID:    c.GetString(middleware.CtxUserID),
		Role:      role,
		CompanyID: c.GetString(middleware.CtxCompanyID),
	}
}

// respondServiceError maps the service error taxonomy onto HTTP status
// codes. InvalidTransition additionally returns the legal next states.
func respondServiceError(c *gin.Context, err error) {
	var transitionErr *service.InvalidTransitionError
	switch {
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            transitionErr.Error(),
			"validTransitions": transitionErr.Allowed,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
