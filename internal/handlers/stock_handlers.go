package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockledger-service/internal/config"
	"stockledger-service/internal/engine"
	"stockledger-service/internal/middleware"
	"stockledger-service/internal/models"
	"stockledger-service/internal/repository"
)

// StockHandler serves the movement operations and the read surfaces over
// inventory, the ledger, adjustments and transfers.
type StockHandler struct {
	engine    *engine.MovementEngine
	inventory *repository.InventoryStore
	ledger    *repository.LedgerRepository
	movements *repository.MovementRepository
	cfg       *config.Config
}

func NewStockHandler(
	movementEngine *engine.MovementEngine,
	inventory *repository.InventoryStore,
	ledger *repository.LedgerRepository,
	movements *repository.MovementRepository,
	cfg *config.Config,
) *StockHandler {
	return &StockHandler{
		engine:    movementEngine,
		inventory: inventory,
		ledger:    ledger,
		movements: movements,
		cfg:       cfg,
	}
}

// ========== Movements ==========

// AdjustStock POST /api/v1/stock/adjustments
func (h *StockHandler) AdjustStock(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)

	var req models.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	adjustment, err := h.engine.AdjustInventory(c.Request.Context(), orgID, req)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, adjustment)
}

// TransferStock POST /api/v1/stock/transfers
func (h *StockHandler) TransferStock(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)

	var req models.TransferStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	transfer, err := h.engine.TransferStock(c.Request.Context(), orgID, req)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, transfer)
}

// UpdateTransferStatus PATCH /api/v1/stock/transfers/:id/status
func (h *StockHandler) UpdateTransferStatus(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateTransferStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	transfer, err := h.engine.UpdateTransferStatus(c.Request.Context(), orgID, transferID, req.Status)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, transfer)
}

// ========== Inventory reads ==========

// ListInventory GET /api/v1/inventory
func (h *StockHandler) ListInventory(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	page, limit := parsePagination(c, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)

	warehouseID := parseUUIDQuery(c, "warehouseId")
	productID := parseUUIDQuery(c, "productId")

	records, total, err := h.inventory.List(c.Request.Context(), orgID, warehouseID, productID, page, limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondList(c, records, page, limit, total)
}

// GetInventoryRecord GET /api/v1/inventory/:productId/:warehouseId
func (h *StockHandler) GetInventoryRecord(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}
	warehouseID, ok := parseUUIDParam(c, "warehouseId")
	if !ok {
		return
	}

	record, err := h.inventory.Get(c.Request.Context(), orgID, productID, warehouseID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, record)
}

// ========== Ledger reads ==========

// ListLedger GET /api/v1/stock/ledger
func (h *StockHandler) ListLedger(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	page, limit := parsePagination(c, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)

	filter := models.LedgerFilter{
		ProductID:   parseUUIDQuery(c, "productId"),
		WarehouseID: parseUUIDQuery(c, "warehouseId"),
		Page:        page,
		Limit:       limit,
	}
	if raw := c.Query("fromDate"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.FromDate = &t
		}
	}
	if raw := c.Query("toDate"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.ToDate = &t
		}
	}

	entries, total, err := h.ledger.List(c.Request.Context(), orgID, filter)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondList(c, entries, page, limit, total)
}

// GetLedgerEntry GET /api/v1/stock/ledger/:id
func (h *StockHandler) GetLedgerEntry(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	entryID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := h.ledger.GetByID(c.Request.Context(), orgID, entryID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, entry)
}

// AuditLedger GET /api/v1/stock/ledger/audit/:productId/:warehouseId
func (h *StockHandler) AuditLedger(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}
	warehouseID, ok := parseUUIDParam(c, "warehouseId")
	if !ok {
		return
	}

	audit, err := h.engine.AuditLedger(c.Request.Context(), orgID, productID, warehouseID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, audit)
}

// ========== Adjustment documents ==========

// ListAdjustments GET /api/v1/stock/adjustments
func (h *StockHandler) ListAdjustments(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	page, limit := parsePagination(c, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)

	productID := parseUUIDQuery(c, "productId")
	var adjustmentType *models.AdjustmentType
	if raw := c.Query("adjustmentType"); raw != "" {
		t := models.AdjustmentType(raw)
		adjustmentType = &t
	}

	adjustments, total, err := h.movements.ListAdjustments(c.Request.Context(), orgID, productID, adjustmentType, page, limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondList(c, adjustments, page, limit, total)
}

// GetAdjustment GET /api/v1/stock/adjustments/:id
func (h *StockHandler) GetAdjustment(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	adjustmentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	adjustment, err := h.movements.GetAdjustmentByID(c.Request.Context(), orgID, adjustmentID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, adjustment)
}

// UpdateAdjustment PUT /api/v1/stock/adjustments/:id
// Rewrites the document only; ledger entries already produced by the
// adjustment are not reconciled.
func (h *StockHandler) UpdateAdjustment(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	adjustmentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "quantity must be greater than zero")
			return
		}
		updates["quantity"] = *req.Quantity
	}
	if req.AdjustmentType != nil {
		if !req.AdjustmentType.IsValid() {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown adjustment type")
			return
		}
		updates["adjustment_type"] = *req.AdjustmentType
	}
	if req.Reason != nil {
		updates["reason"] = *req.Reason
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "no fields to update")
		return
	}

	if err := h.movements.UpdateAdjustment(c.Request.Context(), orgID, adjustmentID, updates); err != nil {
		respondEngineError(c, err)
		return
	}

	adjustment, err := h.movements.GetAdjustmentByID(c.Request.Context(), orgID, adjustmentID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, adjustment)
}

// DeleteAdjustment DELETE /api/v1/stock/adjustments/:id
// Removes the document only; the ledger keeps its entries.
func (h *StockHandler) DeleteAdjustment(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	adjustmentID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.movements.DeleteAdjustment(c.Request.Context(), orgID, adjustmentID); err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// ========== Transfer documents ==========

// ListTransfers GET /api/v1/stock/transfers
func (h *StockHandler) ListTransfers(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	page, limit := parsePagination(c, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)

	var status *models.TransferStatus
	if raw := c.Query("status"); raw != "" {
		s := models.TransferStatus(raw)
		status = &s
	}
	productID := parseUUIDQuery(c, "productId")
	fromWarehouseID := parseUUIDQuery(c, "fromWarehouseId")
	toWarehouseID := parseUUIDQuery(c, "toWarehouseId")

	transfers, total, err := h.movements.ListTransfers(c.Request.Context(), orgID, status, productID, fromWarehouseID, toWarehouseID, page, limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondList(c, transfers, page, limit, total)
}

// GetTransfer GET /api/v1/stock/transfers/:id
func (h *StockHandler) GetTransfer(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	transferID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	transfer, err := h.movements.GetTransferByID(c.Request.Context(), orgID, transferID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, transfer)
}
