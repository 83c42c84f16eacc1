package handler

import (
	"net/http"
	"strconv"

	"github.com/deaffx/mottu-yard-devops/internal/domain"
	"github.com/deaffx/mottu-yard-devops/internal/service"

	"github.com/gin-gonic/gin"
)

type LotHandler struct {
	yard *service.YardService
}

func NewLotHandler(yard *service.YardService) *LotHandler {
	return &LotHandler{yard: yard}
}

// POST /lots
func (h *LotHandler) CreateLot(c *gin.Context) {
	var dto domain.LotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lot, err := h.yard.CreateLot(c.Request.Context(), dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

// GET /lots  (?occupancy=true includes computed vehicle counts)
func (h *LotHandler) ListLots(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("occupancy") == "true" {
		lots, err := h.yard.ListLotsWithOccupancy(ctx)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": lots})
		return
	}
	lots, err := h.yard.ListLots(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": lots})
}

// GET /lots/:id
func (h *LotHandler) GetLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}
	lot, err := h.yard.GetLot(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	occ, err := h.yard.Occupancy(c.Request.Context(), lot.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.LotOccupancy{Lot: *lot, Occupancy: occ})
}

// GET /lots/:id/vehicles
func (h *LotHandler) ListLotVehicles(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}
	vehicles, err := h.yard.VehiclesByLot(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": vehicles})
}

// PUT /lots/:id
func (h *LotHandler) UpdateLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}
	var dto domain.LotDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lot, err := h.yard.UpdateLot(c.Request.Context(), id, dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

// DELETE /lots/:id
func (h *LotHandler) DeleteLot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lot id"})
		return
	}
	if err := h.yard.DeleteLot(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
