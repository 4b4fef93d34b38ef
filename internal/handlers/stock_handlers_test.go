package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stockledger-service/internal/config"
	"stockledger-service/internal/engine"
	"stockledger-service/internal/middleware"
	"stockledger-service/internal/models"
	"stockledger-service/internal/repository"
)

func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Warehouse{},
		&models.Product{},
		&models.InventoryRecord{},
		&models.StockLedgerEntry{},
		&models.StockAdjustment{},
		&models.StockTransfer{},
		&models.Purchase{},
		&models.PurchaseItem{},
	))

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{DefaultPageSize: 20, MaxPageSize: 100}
	inventory := repository.NewInventoryStore(db, nil)
	ledger := repository.NewLedgerRepository(db)
	movements := repository.NewMovementRepository(db)
	masters := repository.NewWarehouseRepository(db)
	movementEngine := engine.NewMovementEngine(db, inventory, ledger, movements, masters, nil, log)
	stockHandler := NewStockHandler(movementEngine, inventory, ledger, movements, cfg)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(middleware.RequireOrganization())
	api.POST("/stock/adjustments", stockHandler.AdjustStock)
	api.POST("/stock/transfers", stockHandler.TransferStock)
	api.GET("/inventory", stockHandler.ListInventory)
	api.GET("/stock/ledger", stockHandler.ListLedger)
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, orgID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if orgID != "" {
		req.Header.Set("X-Organization-ID", orgID)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMissingOrganizationHeaderRejected(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/inventory", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "MISSING_ORGANIZATION_ID", resp.Error.Code)
}

func TestAdjustStockEndpoint(t *testing.T) {
	router, db := newTestRouter(t)
	productID := uuid.New()
	warehouseID := uuid.New()

	w := doJSON(t, router, http.MethodPost, "/api/v1/stock/adjustments", "org-1", models.AdjustStockRequest{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       5,
		AdjustmentType: models.AdjustmentIncrease,
		Reason:         "initial count",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.SuccessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	var record models.InventoryRecord
	require.NoError(t, db.Where("organization_id = ?", "org-1").First(&record).Error)
	assert.Equal(t, 5, record.Quantity)
}

func TestAdjustStockRejectsUnknownType(t *testing.T) {
	router, db := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/stock/adjustments", "org-1", models.AdjustStockRequest{
		ProductID:      uuid.New(),
		WarehouseID:    uuid.New(),
		Quantity:       5,
		AdjustmentType: "RESTOCK",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.StockLedgerEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTransferEndpointSameWarehouseRejected(t *testing.T) {
	router, _ := newTestRouter(t)
	warehouseID := uuid.New()

	w := doJSON(t, router, http.MethodPost, "/api/v1/stock/transfers", "org-1", models.TransferStockRequest{
		ProductID:       uuid.New(),
		FromWarehouseID: warehouseID,
		ToWarehouseID:   warehouseID,
		Quantity:        2,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestLedgerListScopedToOrganization(t *testing.T) {
	router, _ := newTestRouter(t)
	productID := uuid.New()
	warehouseID := uuid.New()

	w := doJSON(t, router, http.MethodPost, "/api/v1/stock/adjustments", "org-a", models.AdjustStockRequest{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       5,
		AdjustmentType: models.AdjustmentIncrease,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/stock/ledger", "org-b", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, int64(0), resp.Pagination.TotalItems)

	w = doJSON(t, router, http.MethodGet, "/api/v1/stock/ledger", "org-a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Pagination.TotalItems)
}
