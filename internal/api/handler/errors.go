package handler

import (
	"errors"
	"net/http"

	"github.com/deaffx/mottu-yard-devops/internal/domain"
	"github.com/deaffx/mottu-yard-devops/internal/repository"
	"github.com/deaffx/mottu-yard-devops/internal/service"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	var validation *domain.ValidationError
	var lotFull *service.LotFullError
	var business *service.BusinessError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message, "field": validation.Field})
	case errors.Is(err, service.ErrDuplicatePlate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &lotFull):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":        lotFull.Error(),
			"lot_id":       lotFull.LotID,
			"occupancy":    lotFull.Occupancy,
			"max_capacity": lotFull.Capacity,
		})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &business):
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrReferenced) || business.Err == nil {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": business.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
