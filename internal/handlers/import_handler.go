package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"stockledger-service/internal/middleware"
	"stockledger-service/internal/models"
	"stockledger-service/internal/repository"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity     string                 `json:"entity"`
	Version    string                 `json:"version"`
	Columns    []ImportTemplateColumn `json:"columns"`
	SampleData []map[string]string    `json:"sampleData,omitempty"`
}

// ImportRowError represents an error for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Success      bool             `json:"success"`
	TotalRows    int              `json:"totalRows"`
	SuccessCount int              `json:"successCount"`
	FailedCount  int              `json:"failedCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
	CreatedIDs   []string         `json:"createdIds,omitempty"`
}

type ImportHandler struct {
	masters *repository.WarehouseRepository
}

func NewImportHandler(masters *repository.WarehouseRepository) *ImportHandler {
	return &ImportHandler{masters: masters}
}

// ProductImportTemplate returns the template for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: []ImportTemplateColumn{
			{Name: "code", Description: "Unique product code", Required: true, Type: "string", Example: "PRD-001"},
			{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Steel Rod 10mm"},
			{Name: "brand", Description: "Brand", Required: false, Type: "string", Example: "Tata"},
			{Name: "category", Description: "Category", Required: false, Type: "string", Example: "Raw Material"},
			{Name: "unit", Description: "Unit of measure", Required: false, Type: "string", Example: "kg"},
			{Name: "hsnCode", Description: "HSN code", Required: false, Type: "string", Example: "7214"},
			{Name: "gstPercentage", Description: "GST percentage", Required: false, Type: "number", Example: "18"},
			{Name: "retailRate", Description: "Retail rate", Required: false, Type: "number", Example: "65.50"},
			{Name: "wholesaleRate", Description: "Wholesale rate", Required: false, Type: "number", Example: "58.00"},
			{Name: "minStockLevel", Description: "Minimum stock level (0 disables alerts)", Required: false, Type: "number", Example: "100"},
		},
		SampleData: []map[string]string{
			{
				"code":          "PRD-ROD10",
				"name":          "Steel Rod 10mm",
				"brand":         "Tata",
				"category":      "Raw Material",
				"unit":          "kg",
				"hsnCode":       "7214",
				"gstPercentage": "18",
				"retailRate":    "65.50",
				"wholesaleRate": "58.00",
				"minStockLevel": "100",
			},
			{
				"code":          "PRD-WIRE2",
				"name":          "Binding Wire 2mm",
				"brand":         "",
				"category":      "Consumable",
				"unit":          "roll",
				"hsnCode":       "7217",
				"gstPercentage": "18",
				"retailRate":    "320.00",
				"wholesaleRate": "290.00",
				"minStockLevel": "10",
			},
		},
	}
}

// WarehouseImportTemplate returns the template for warehouses
func WarehouseImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "warehouses",
		Version: "1.0",
		Columns: []ImportTemplateColumn{
			{Name: "name", Description: "Warehouse name", Required: true, Type: "string", Example: "Main Godown"},
			{Name: "address", Description: "Address", Required: false, Type: "string", Example: "Plot 12, Industrial Area"},
			{Name: "isDefault", Description: "Is default warehouse (true/false)", Required: false, Type: "boolean", Example: "false"},
		},
		SampleData: []map[string]string{
			{"name": "Main Godown", "address": "Plot 12, Industrial Area", "isDefault": "true"},
			{"name": "Retail Counter", "address": "Shop 4, Market Road", "isDefault": "false"},
		},
	}
}

// GetProductImportTemplate returns the product import template
// GET /api/v1/products/import/template
func (h *ImportHandler) GetProductImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	template := ProductImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template, "products")
	case "xlsx":
		h.generateXLSXTemplate(c, template, "Products")
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "template": template})
	}
}

// GetWarehouseImportTemplate returns the warehouse import template
// GET /api/v1/warehouses/import/template
func (h *ImportHandler) GetWarehouseImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	template := WarehouseImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template, "warehouses")
	case "xlsx":
		h.generateXLSXTemplate(c, template, "Warehouses")
	default:
		c.JSON(http.StatusOK, gin.H{"success": true, "template": template})
	}
}

func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template ImportTemplate, entity string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_import_template.csv", entity))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)

	for _, sample := range template.SampleData {
		row := make([]string, len(template.Columns))
		for i, col := range template.Columns {
			row[i] = sample[col.Name]
		}
		writer.Write(row)
	}
}

func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template ImportTemplate, sheetName string) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)

		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	for rowIdx, sample := range template.SampleData {
		for colIdx, col := range template.Columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, sample[col.Name])
		}
	}

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_import_template.xlsx", strings.ToLower(sheetName)))

	f.Write(c.Writer)
}

// ImportProducts imports products from a CSV or Excel file
// POST /api/v1/products/import
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)

	rows, ok := h.readUploadedRows(c)
	if !ok {
		return
	}
	validateOnly := c.DefaultPostForm("validateOnly", "false") == "true"

	result := h.processProductRows(c, orgID, rows, validateOnly)
	c.JSON(http.StatusOK, result)
}

// ImportWarehouses imports warehouses from a CSV or Excel file
// POST /api/v1/warehouses/import
func (h *ImportHandler) ImportWarehouses(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)

	rows, ok := h.readUploadedRows(c)
	if !ok {
		return
	}
	validateOnly := c.DefaultPostForm("validateOnly", "false") == "true"

	result := h.processWarehouseRows(c, orgID, rows, validateOnly)
	c.JSON(http.StatusOK, result)
}

func (h *ImportHandler) readUploadedRows(c *gin.Context) ([]map[string]string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "FILE_REQUIRED", "Please upload a CSV or Excel file")
		return nil, false
	}
	defer file.Close()

	rows, parseErr := h.parseFile(file, header.Filename)
	if parseErr != nil {
		respondError(c, http.StatusBadRequest, "PARSE_ERROR", parseErr.Error())
		return nil, false
	}
	if len(rows) == 0 {
		respondError(c, http.StatusBadRequest, "EMPTY_FILE", "The file contains no data rows")
		return nil, false
	}
	return rows, true
}

func (h *ImportHandler) parseFile(file io.Reader, filename string) ([]map[string]string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return h.parseCSV(file)
	} else if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return h.parseXLSX(file)
	}
	return nil, fmt.Errorf("only CSV and XLSX files are supported")
}

func (h *ImportHandler) parseCSV(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}

	var rows []map[string]string
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(lineNum + 1)
		rows = append(rows, row)
		lineNum++
	}

	return rows, nil
}

func (h *ImportHandler) parseXLSX(file io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	excelRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := excelRows[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}

	var rows []map[string]string
	for rowIdx, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(rowIdx + 2)
		rows = append(rows, row)
	}

	return rows, nil
}

func (h *ImportHandler) processProductRows(c *gin.Context, orgID string, rows []map[string]string, validateOnly bool) *ImportResult {
	result := &ImportResult{
		TotalRows:  len(rows),
		Errors:     make([]ImportRowError, 0),
		CreatedIDs: make([]string, 0),
	}

	for _, row := range rows {
		rowNum, _ := strconv.Atoi(row["_row"])

		if row["code"] == "" || row["name"] == "" {
			result.Errors = append(result.Errors, ImportRowError{
				Row:     rowNum,
				Code:    "REQUIRED_FIELD",
				Message: "code and name are required",
			})
			result.FailedCount++
			continue
		}

		product := &models.Product{
			Code:     row["code"],
			Name:     row["name"],
			Brand:    row["brand"],
			Category: row["category"],
			Unit:     row["unit"],
			HSNCode:  row["hsncode"],
			IsActive: true,
		}
		if v := row["gstpercentage"]; v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				result.Errors = append(result.Errors, ImportRowError{
					Row: rowNum, Column: "gstPercentage", Code: "INVALID_NUMBER",
					Message: fmt.Sprintf("invalid number %q", v),
				})
				result.FailedCount++
				continue
			}
			product.GSTPercentage = d
		}
		if v := row["retailrate"]; v != "" {
			if d, err := decimal.NewFromString(v); err == nil {
				product.RetailRate = d
			}
		}
		if v := row["wholesalerate"]; v != "" {
			if d, err := decimal.NewFromString(v); err == nil {
				product.WholesaleRate = d
			}
		}
		if v := row["minstocklevel"]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				result.Errors = append(result.Errors, ImportRowError{
					Row: rowNum, Column: "minStockLevel", Code: "INVALID_NUMBER",
					Message: fmt.Sprintf("invalid minimum stock level %q", v),
				})
				result.FailedCount++
				continue
			}
			product.MinStockLevel = n
		}

		if validateOnly {
			result.SuccessCount++
			continue
		}

		if err := h.masters.CreateProduct(c.Request.Context(), orgID, product); err != nil {
			result.Errors = append(result.Errors, ImportRowError{
				Row: rowNum, Code: "CREATE_FAILED", Message: err.Error(),
			})
			result.FailedCount++
			continue
		}
		result.SuccessCount++
		result.CreatedIDs = append(result.CreatedIDs, product.ID.String())
	}

	result.Success = result.FailedCount == 0
	return result
}

func (h *ImportHandler) processWarehouseRows(c *gin.Context, orgID string, rows []map[string]string, validateOnly bool) *ImportResult {
	result := &ImportResult{
		TotalRows:  len(rows),
		Errors:     make([]ImportRowError, 0),
		CreatedIDs: make([]string, 0),
	}

	for _, row := range rows {
		rowNum, _ := strconv.Atoi(row["_row"])

		if row["name"] == "" {
			result.Errors = append(result.Errors, ImportRowError{
				Row: rowNum, Column: "name", Code: "REQUIRED_FIELD",
				Message: "name is required",
			})
			result.FailedCount++
			continue
		}

		warehouse := &models.Warehouse{
			Name:      row["name"],
			Address:   row["address"],
			IsDefault: strings.EqualFold(row["isdefault"], "true"),
			IsActive:  true,
		}

		if validateOnly {
			result.SuccessCount++
			continue
		}

		if err := h.masters.CreateWarehouse(c.Request.Context(), orgID, warehouse); err != nil {
			result.Errors = append(result.Errors, ImportRowError{
				Row: rowNum, Code: "CREATE_FAILED", Message: err.Error(),
			})
			result.FailedCount++
			continue
		}
		result.SuccessCount++
		result.CreatedIDs = append(result.CreatedIDs, warehouse.ID.String())
	}

	result.Success = result.FailedCount == 0
	return result
}
