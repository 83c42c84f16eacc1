package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/deaffx/mottu-yard-devops/internal/repository"
	"github.com/deaffx/mottu-yard-devops/internal/service"

	"github.com/gin-gonic/gin"
)

// 5 MB is Rekognition's limit for inline image bytes.
const maxImageBytes = 5 * 1024 * 1024

type LPRHandler struct {
	lprService *service.LPRService
	yard       *service.YardService
}

func NewLPRHandler(lprService *service.LPRService, yard *service.YardService) *LPRHandler {
	return &LPRHandler{lprService: lprService, yard: yard}
}

// POST /lpr/process-image
//
// Accepts a multipart "image" file, extracts the plate and returns the
// matching vehicle when one is registered.
func (h *LPRHandler) ProcessImage(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'image' file"})
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read image"})
		return
	}
	if len(imageBytes) > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds 5MB"})
		return
	}

	plate, confidence, err := h.lprService.RecognizePlate(c.Request.Context(), imageBytes)
	if err != nil {
		if errors.Is(err, service.ErrPlateNotRecognized) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "plate recognition failed"})
		return
	}

	vehicle, err := h.yard.GetVehicleByPlate(c.Request.Context(), plate)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"plate": plate, "confidence": confidence, "vehicle": nil})
			return
		}
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plate": plate, "confidence": confidence, "vehicle": vehicle})
}
