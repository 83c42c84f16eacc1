package handler

import (
	"net/http"
	"strconv"

	"github.com/deaffx/mottu-yard-devops/internal/domain"
	"github.com/deaffx/mottu-yard-devops/internal/service"

	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	yard *service.YardService
}

func NewVehicleHandler(yard *service.YardService) *VehicleHandler {
	return &VehicleHandler{yard: yard}
}

// POST /vehicles
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var dto domain.VehicleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vehicle, err := h.yard.CreateVehicle(c.Request.Context(), dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, vehicle)
}

// PUT /vehicles/:id
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}
	var dto domain.VehicleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	vehicle, err := h.yard.UpdateVehicle(c.Request.Context(), id, dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// DELETE /vehicles/:id
func (h *VehicleHandler) DeleteVehicle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}
	if err := h.yard.DeleteVehicle(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}
	vehicle, err := h.yard.GetVehicle(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// GET /vehicles/plate/:plate
func (h *VehicleHandler) GetVehicleByPlate(c *gin.Context) {
	vehicle, err := h.yard.GetVehicleByPlate(c.Request.Context(), c.Param("plate"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

// GET /vehicles
//
// Without filters this is the paginated listing. ?q= searches
// model/brand/plate, ?status=, ?brand=, ?model= filter, ?recent=N returns the
// newest N by creation time.
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	ctx := c.Request.Context()

	if status := c.Query("status"); status != "" {
		vehicles, err := h.yard.VehiclesByStatus(ctx, domain.VehicleStatus(status))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": vehicles})
		return
	}
	if brand := c.Query("brand"); brand != "" {
		vehicles, err := h.yard.VehiclesByBrand(ctx, brand)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": vehicles})
		return
	}
	if model := c.Query("model"); model != "" {
		vehicles, err := h.yard.VehiclesByModel(ctx, model)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": vehicles})
		return
	}
	if recent := c.Query("recent"); recent != "" {
		limit, err := strconv.Atoi(recent)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recent limit"})
			return
		}
		vehicles, err := h.yard.RecentVehicles(ctx, limit)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": vehicles})
		return
	}

	page, size := pagination(c)
	offset := (page - 1) * size

	var (
		vehicles []domain.Vehicle
		total    int64
		err      error
	)
	if term := c.Query("q"); term != "" {
		vehicles, total, err = h.yard.SearchVehicles(ctx, term, offset, size)
	} else {
		vehicles, total, err = h.yard.ListVehicles(ctx, offset, size)
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": vehicles, "total": total, "page": page, "page_size": size})
}

// GET /vehicles/count
func (h *VehicleHandler) CountVehicles(c *gin.Context) {
	ctx := c.Request.Context()
	if status := c.Query("status"); status != "" {
		count, err := h.yard.CountVehiclesByStatus(ctx, domain.VehicleStatus(status))
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count, "status": status})
		return
	}
	count, err := h.yard.CountVehicles(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// POST /vehicles/:id/maintenance
func (h *VehicleHandler) OpenMaintenance(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}
	var dto domain.MaintenanceRecordDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.yard.OpenMaintenance(c.Request.Context(), id, dto)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// GET /vehicles/:id/maintenance
func (h *VehicleHandler) ListMaintenance(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vehicle id"})
		return
	}
	records, err := h.yard.MaintenanceByVehicle(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records})
}

func pagination(c *gin.Context) (page, size int) {
	page, size = 1, 20
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(c.Query("page_size")); err == nil && s > 0 && s <= 200 {
		size = s
	}
	return page, size
}
