package engine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger-service/internal/models"
)

func createProduct(t *testing.T, env *testEnv, minStockLevel int) *models.Product {
	t.Helper()
	product := &models.Product{
		Code:          "P-" + uuid.NewString()[:8],
		Name:          "Test Product",
		MinStockLevel: minStockLevel,
		IsActive:      true,
	}
	require.NoError(t, env.masters.CreateProduct(context.Background(), testOrg, product))
	return product
}

func TestLowStockAlertBoundary(t *testing.T) {
	env := newTestEnv(t)
	warehouseID := uuid.New()

	atThreshold := createProduct(t, env, 10)
	belowThreshold := createProduct(t, env, 10)
	env.seedStock(t, testOrg, atThreshold.ID, warehouseID, 10, decimal.Zero)
	env.seedStock(t, testOrg, belowThreshold.ID, warehouseID, 9, decimal.Zero)

	alerts, err := env.engine.LowStockAlerts(context.Background(), testOrg, nil)
	require.NoError(t, err)

	require.Len(t, alerts, 1, "only strictly-below quantities alert")
	assert.Equal(t, belowThreshold.ID, alerts[0].Product.ID)
	assert.Equal(t, 9, alerts[0].CurrentQuantity)
	assert.Equal(t, 10, alerts[0].MinStockLevel)
}

func TestLowStockZeroThresholdNeverAlerts(t *testing.T) {
	env := newTestEnv(t)
	warehouseID := uuid.New()

	product := createProduct(t, env, 0)
	env.seedStock(t, testOrg, product.ID, warehouseID, -50, decimal.Zero)

	alerts, err := env.engine.LowStockAlerts(context.Background(), testOrg, nil)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestLowStockScopedByWarehouse(t *testing.T) {
	env := newTestEnv(t)
	warehouseA := uuid.New()
	warehouseB := uuid.New()

	product := createProduct(t, env, 5)
	env.seedStock(t, testOrg, product.ID, warehouseA, 1, decimal.Zero)
	env.seedStock(t, testOrg, product.ID, warehouseB, 100, decimal.Zero)

	alerts, err := env.engine.LowStockAlerts(context.Background(), testOrg, &warehouseB)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	alerts, err = env.engine.LowStockAlerts(context.Background(), testOrg, &warehouseA)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, warehouseA, alerts[0].WarehouseID)
}

func TestStockValuation(t *testing.T) {
	env := newTestEnv(t)
	warehouseID := uuid.New()

	first := createProduct(t, env, 0)
	second := createProduct(t, env, 0)
	env.seedStock(t, testOrg, first.ID, warehouseID, 10, decimal.NewFromFloat(12.50))
	env.seedStock(t, testOrg, second.ID, warehouseID, 4, decimal.NewFromInt(100))

	valuation, err := env.engine.StockValuation(context.Background(), testOrg, nil)
	require.NoError(t, err)

	// 10 x 12.50 + 4 x 100 = 525
	assert.True(t, valuation.TotalValue.Equal(decimal.NewFromInt(525)),
		"expected 525, got %s", valuation.TotalValue)
	assert.Len(t, valuation.Inventories, 2)
}

func TestStockValuationNegativeQuantityReducesTotal(t *testing.T) {
	env := newTestEnv(t)
	warehouseID := uuid.New()

	positive := createProduct(t, env, 0)
	negative := createProduct(t, env, 0)
	env.seedStock(t, testOrg, positive.ID, warehouseID, 10, decimal.NewFromInt(10))
	env.seedStock(t, testOrg, negative.ID, warehouseID, -5, decimal.NewFromInt(8))

	valuation, err := env.engine.StockValuation(context.Background(), testOrg, nil)
	require.NoError(t, err)

	// 100 - 40 = 60
	assert.True(t, valuation.TotalValue.Equal(decimal.NewFromInt(60)),
		"expected 60, got %s", valuation.TotalValue)
}

func TestStockValuationIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	warehouseID := uuid.New()
	product := createProduct(t, env, 0)
	env.seedStock(t, testOrg, product.ID, warehouseID, 7, decimal.NewFromInt(3))

	first, err := env.engine.StockValuation(context.Background(), testOrg, nil)
	require.NoError(t, err)
	second, err := env.engine.StockValuation(context.Background(), testOrg, nil)
	require.NoError(t, err)

	assert.True(t, first.TotalValue.Equal(second.TotalValue))
	assert.Equal(t, 7, env.quantity(t, testOrg, product.ID, warehouseID))
}

func TestDayEndStockSnapshot(t *testing.T) {
	env := newTestEnv(t)
	warehouseID := uuid.New()
	product := createProduct(t, env, 0)
	env.seedStock(t, testOrg, product.ID, warehouseID, 42, decimal.Zero)

	report, err := env.engine.DayEndStock(context.Background(), testOrg, nil)
	require.NoError(t, err)
	require.Len(t, report.Inventories, 1)
	assert.Equal(t, 42, report.Inventories[0].Quantity)
	assert.False(t, report.AsOf.IsZero())
}

func TestAuditLedgerEmptyKey(t *testing.T) {
	env := newTestEnv(t)

	audit, err := env.engine.AuditLedger(context.Background(), testOrg, uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, audit.EntryCount)
	assert.Zero(t, audit.RecordQuantity)
	assert.Zero(t, audit.LedgerQuantity)
	assert.True(t, audit.Consistent)
}
