package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"stockledger-service/internal/config"
	"stockledger-service/internal/middleware"
	"stockledger-service/internal/models"
	"stockledger-service/internal/repository"
)

// ProductHandler serves the product catalog
type ProductHandler struct {
	masters *repository.WarehouseRepository
	cfg     *config.Config
}

func NewProductHandler(masters *repository.WarehouseRepository, cfg *config.Config) *ProductHandler {
	return &ProductHandler{masters: masters, cfg: cfg}
}

// CreateProduct POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)

	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	product := &models.Product{
		Code:     req.Code,
		Name:     req.Name,
		Brand:    req.Brand,
		Category: req.Category,
		Unit:     req.Unit,
		HSNCode:  req.HSNCode,
		IsActive: true,
	}
	if req.GSTPercentage != nil {
		product.GSTPercentage = *req.GSTPercentage
	} else {
		product.GSTPercentage = decimal.Zero
	}
	if req.RetailRate != nil {
		product.RetailRate = *req.RetailRate
	}
	if req.WholesaleRate != nil {
		product.WholesaleRate = *req.WholesaleRate
	}
	if req.MinStockLevel != nil {
		if *req.MinStockLevel < 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "minStockLevel cannot be negative")
			return
		}
		product.MinStockLevel = *req.MinStockLevel
	}

	if err := h.masters.CreateProduct(c.Request.Context(), orgID, product); err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, product)
}

// ListProducts GET /api/v1/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	page, limit := parsePagination(c, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)
	activeOnly := c.Query("activeOnly") == "true"

	products, total, err := h.masters.ListProducts(c.Request.Context(), orgID, activeOnly, page, limit)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondList(c, products, page, limit, total)
}

// GetProduct GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.masters.GetProductByID(c.Request.Context(), orgID, productID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, product)
}

// UpdateProduct PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.HSNCode != nil {
		updates["hsn_code"] = *req.HSNCode
	}
	if req.GSTPercentage != nil {
		updates["gst_percentage"] = *req.GSTPercentage
	}
	if req.RetailRate != nil {
		updates["retail_rate"] = *req.RetailRate
	}
	if req.WholesaleRate != nil {
		updates["wholesale_rate"] = *req.WholesaleRate
	}
	if req.MinStockLevel != nil {
		if *req.MinStockLevel < 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "minStockLevel cannot be negative")
			return
		}
		updates["min_stock_level"] = *req.MinStockLevel
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "no fields to update")
		return
	}

	if err := h.masters.UpdateProduct(c.Request.Context(), orgID, productID, updates); err != nil {
		respondEngineError(c, err)
		return
	}

	product, err := h.masters.GetProductByID(c.Request.Context(), orgID, productID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, product)
}

// DeleteProduct DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	orgID := middleware.GetOrganizationID(c)
	productID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.masters.DeleteProduct(c.Request.Context(), orgID, productID); err != nil {
		respondEngineError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}
