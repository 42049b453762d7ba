package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akunmarket/platform/claims-service/internal/models"
	"github.com/akunmarket/platform/claims-service/internal/telemetry"
)

// respondError maps domain errors onto HTTP statuses. Business-rule failures
// keep their message; anything unrecognized is a 500 and logged, with the
// detail kept out of the response.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDuplicateClaim), errors.Is(err, models.ErrAlreadySettled):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrWarrantyExpired),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		telemetry.Logger.Error("Unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// currentUserID reads the identity set by the auth middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

func isAdmin(c *gin.Context) bool {
	return c.GetBool("is_admin")
}

// statusFilter parses an optional ?status= query parameter.
func statusFilter(c *gin.Context) (*models.ClaimStatus, error) {
	raw := c.Query("status")
	if raw == "" {
		return nil, nil
	}
	status := models.ClaimStatus(raw)
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, raw)
	}
	return &status, nil
}
