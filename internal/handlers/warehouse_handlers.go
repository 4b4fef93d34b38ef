package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockledger-service/internal/config"
	"stockledger-service/internal/middleware"
	"stockledger-service/internal/models"
	"stockledger-service/internal/repository"
)

// WarehouseHandler serves the warehouse master
type WarehouseHandler struct {
	masters *repository.WarehouseRepository
	cfg     *config.Config
}

func NewWarehouseHandler(masters *repository.WarehouseRepository, cfg *config.Config) *WarehouseHandler {
	return &WarehouseHandler{masters: masters, cfg: cfg}
}

// CreateWarehouse POST /api/v1/warehouses
func (h *WarehouseHandler) CreateWarehouse(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)

	var req models.CreateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	warehouse := &models.Warehouse{
		Name:     req.Name,
		Address:  req.Address,
		IsActive: true,
	}
	if req.IsDefault != nil {
		warehouse.IsDefault = *req.IsDefault
	}

	if err := h.masters.CreateWarehouse(c.Request.Context(), orgID, warehouse); err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, warehouse)
}

// ListWarehouses GET /api/v1/warehouses
func (h *WarehouseHandler) ListWarehouses(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	page, limit := parsePagination(c, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)
	activeOnly := c.Query("activeOnly") == "true"

	warehouses, total, err := h.masters.ListWarehouses(c.Request.Context(), orgID, activeOnly, page, limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondList(c, warehouses, page, limit, total)
}

// GetWarehouse GET /api/v1/warehouses/:id
func (h *WarehouseHandler) GetWarehouse(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	warehouseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	warehouse, err := h.masters.GetWarehouseByID(c.Request.Context(), orgID, warehouseID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, warehouse)
}

// UpdateWarehouse PUT /api/v1/warehouses/:id
func (h *WarehouseHandler) UpdateWarehouse(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	warehouseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateWarehouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.IsDefault != nil {
		updates["is_default"] = *req.IsDefault
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "no fields to update")
		return
	}

	if err := h.masters.UpdateWarehouse(c.Request.Context(), orgID, warehouseID, updates); err != nil {
		respondEngineError(c, err)
		return
	}

	warehouse, err := h.masters.GetWarehouseByID(c.Request.Context(), orgID, warehouseID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, warehouse)
}

// DeleteWarehouse DELETE /api/v1/warehouses/:id
func (h *WarehouseHandler) DeleteWarehouse(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	warehouseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.masters.DeleteWarehouse(c.Request.Context(), orgID, warehouseID); err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
