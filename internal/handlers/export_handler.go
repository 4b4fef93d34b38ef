package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"stockledger-service/internal/middleware"
	"stockledger-service/internal/models"
	"stockledger-service/internal/repository"
)

// ExportHandler writes ledger and inventory snapshots as Excel workbooks
type ExportHandler struct {
	ledger    *repository.LedgerRepository
	inventory *repository.InventoryStore
}

func NewExportHandler(ledger *repository.LedgerRepository, inventory *repository.InventoryStore) *ExportHandler {
	return &ExportHandler{ledger: ledger, inventory: inventory}
}

// ExportLedger GET /api/v1/stock/ledger/export
func (h *ExportHandler) ExportLedger(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)

	filter := models.LedgerFilter{
		ProductID:   parseUUIDQuery(c, "productId"),
		WarehouseID: parseUUIDQuery(c, "warehouseId"),
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

	entries, _, err := h.ledger.List(c.Request.Context(), orgID, filter)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to load ledger entries")
		return
	}

	sheetName := "Stock Ledger"
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	headers := []string{"Date", "Product ID", "Warehouse ID", "Movement Type", "Quantity", "Reference Type", "Reference ID", "Remarks"}
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, name)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	for rowIdx, entry := range entries {
		row := rowIdx + 2
		values := []interface{}{
			entry.CreatedAt.Format(time.RFC3339),
			entry.ProductID.String(),
			entry.WarehouseID.String(),
			string(entry.MovementType),
			entry.Quantity,
			entry.ReferenceType,
			entry.ReferenceID.String(),
			entry.Remarks,
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=stock_ledger_%s.xlsx", time.Now().Format("20060102")))
	f.Write(c.Writer)
}

// ExportInventory GET /api/v1/inventory/export
func (h *ExportHandler) ExportInventory(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	warehouseID := parseUUIDQuery(c, "warehouseId")

	records, err := h.inventory.ListWithProducts(c.Request.Context(), orgID, warehouseID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to load inventory")
		return
	}

	sheetName := "Inventory"
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	headers := []string{"Product Code", "Product Name", "Warehouse ID", "Quantity", "Avg Cost Price", "Stock Value", "Last Updated"}
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, name)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	for rowIdx, record := range records {
		row := rowIdx + 2
		code, name := "", ""
		if record.Product != nil {
			code = record.Product.Code
			name = record.Product.Name
		}
		value := record.AvgCostPrice.Mul(decimalFromInt(record.Quantity))
		values := []interface{}{
			code,
			name,
			record.WarehouseID.String(),
			record.Quantity,
			record.AvgCostPrice.String(),
			value.String(),
			record.LastUpdated.Format(time.RFC3339),
		}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=inventory_%s.xlsx", time.Now().Format("20060102")))
	f.Write(c.Writer)
}
