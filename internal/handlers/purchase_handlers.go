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

// PurchaseHandler serves purchase invoices and goods receipt
type PurchaseHandler struct {
	engine    *engine.MovementEngine
	movements *repository.MovementRepository
	cfg       *config.Config
}

func NewPurchaseHandler(movementEngine *engine.MovementEngine, movements *repository.MovementRepository, cfg *config.Config) *PurchaseHandler {
	return &PurchaseHandler{engine: movementEngine, movements: movements, cfg: cfg}
}

// CreatePurchase POST /api/v1/purchases
// Creating a purchase does not touch inventory; only receipt does.
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)

	var req models.CreatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	purchase := &models.Purchase{
		InvoiceNumber:         req.InvoiceNumber,
		SupplierInvoiceNumber: req.SupplierInvoiceNumber,
		PurchaseDate:          req.PurchaseDate,
		SupplierID:            req.SupplierID,
		Subtotal:              req.Subtotal,
		CGST:                  req.CGST,
		SGST:                  req.SGST,
		IGST:                  req.IGST,
		Freight:               req.Freight,
		OtherCharges:          req.OtherCharges,
		TotalAmount:           req.TotalAmount,
		Status:                models.PurchaseStatusPending,
		Notes:                 req.Notes,
	}
	for _, item := range req.Items {
		purchase.Items = append(purchase.Items, models.PurchaseItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Rate:      item.Rate,
			Amount:    item.Amount,
			GSTAmount: item.GSTAmount,
		})
	}

	if err := h.movements.CreatePurchase(c.Request.Context(), orgID, purchase); err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, purchase)
}

// ListPurchases GET /api/v1/purchases
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	page, limit := parsePagination(c, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)

	var status *models.PurchaseStatus
	if raw := c.Query("status"); raw != "" {
		s := models.PurchaseStatus(raw)
		status = &s
	}
	var supplierID *string
	if raw := c.Query("supplierId"); raw != "" {
		supplierID = &raw
	}
	var startDate, endDate *time.Time
	if raw := c.Query("startDate"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			startDate = &t
		}
	}
	if raw := c.Query("endDate"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			endDate = &t
		}
	}

	purchases, total, err := h.movements.ListPurchases(c.Request.Context(), orgID, status, supplierID, startDate, endDate, page, limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondList(c, purchases, page, limit, total)
}

// GetPurchase GET /api/v1/purchases/:id
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	purchaseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	purchase, err := h.movements.GetPurchaseByID(c.Request.Context(), orgID, purchaseID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, purchase)
}

// ReceivePurchase POST /api/v1/purchases/:id/receive
func (h *PurchaseHandler) ReceivePurchase(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	purchaseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.ReceivePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	purchase, err := h.engine.ReceivePurchase(c.Request.Context(), orgID, purchaseID, req)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, purchase)
}

// UpdatePurchaseStatus PATCH /api/v1/purchases/:id/status
// Status-only update; it never moves inventory. Use the receive endpoint to
// record goods receipt.
func (h *PurchaseHandler) UpdatePurchaseStatus(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	purchaseID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdatePurchaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if !req.Status.IsValid() {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "unknown purchase status")
		return
	}

	if err := h.movements.UpdatePurchaseStatus(c.Request.Context(), orgID, purchaseID, req.Status); err != nil {
		respondEngineError(c, err)
		return
	}

	purchase, err := h.movements.GetPurchaseByID(c.Request.Context(), orgID, purchaseID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, purchase)
}
