package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockledger-service/internal/engine"
	"stockledger-service/internal/middleware"
)

// ReportHandler serves the read-only stock reports
type ReportHandler struct {
	engine *engine.MovementEngine
}

func NewReportHandler(movementEngine *engine.MovementEngine) *ReportHandler {
	return &ReportHandler{engine: movementEngine}
}

// LowStockAlerts GET /api/v1/reports/low-stock
func (h *ReportHandler) LowStockAlerts(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	warehouseID := parseUUIDQuery(c, "warehouseId")

	alerts, err := h.engine.LowStockAlerts(c.Request.Context(), orgID, warehouseID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, alerts)
}

// StockValuation GET /api/v1/reports/valuation
func (h *ReportHandler) StockValuation(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	warehouseID := parseUUIDQuery(c, "warehouseId")

	valuation, err := h.engine.StockValuation(c.Request.Context(), orgID, warehouseID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, valuation)
}

// DayEndStock GET /api/v1/reports/day-end
func (h *ReportHandler) DayEndStock(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	warehouseID := parseUUIDQuery(c, "warehouseId")

	report, err := h.engine.DayEndStock(c.Request.Context(), orgID, warehouseID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, report)
}
