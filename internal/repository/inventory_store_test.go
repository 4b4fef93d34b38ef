package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stockledger-service/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
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
	return db
}

func TestApplyDeltaCreatesRecord(t *testing.T) {
	db := newTestDB(t)
	store := NewInventoryStore(db, nil)

	orgID := "org-1"
	productID := uuid.New()
	warehouseID := uuid.New()
	seed := decimal.NewFromFloat(42.50)

	err := db.Transaction(func(tx *gorm.DB) error {
		return store.ApplyDelta(tx, orgID, productID, warehouseID, 7, &seed)
	})
	require.NoError(t, err)

	record, err := store.Get(context.Background(), orgID, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, 7, record.Quantity)
	assert.True(t, record.AvgCostPrice.Equal(seed), "expected seeded avg cost, got %s", record.AvgCostPrice)
}

func TestApplyDeltaAccumulates(t *testing.T) {
	db := newTestDB(t)
	store := NewInventoryStore(db, nil)

	orgID := "org-1"
	productID := uuid.New()
	warehouseID := uuid.New()

	for _, delta := range []int{5, 10, -3} {
		err := db.Transaction(func(tx *gorm.DB) error {
			return store.ApplyDelta(tx, orgID, productID, warehouseID, delta, nil)
		})
		require.NoError(t, err)
	}

	record, err := store.Get(context.Background(), orgID, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, 12, record.Quantity)

	var count int64
	require.NoError(t, db.Model(&models.InventoryRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "repeated deltas must reuse the same record")
}

func TestApplyDeltaAllowsNegativeQuantity(t *testing.T) {
	db := newTestDB(t)
	store := NewInventoryStore(db, nil)

	orgID := "org-1"
	productID := uuid.New()
	warehouseID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := store.ApplyDelta(tx, orgID, productID, warehouseID, 5, nil); err != nil {
			return err
		}
		return store.ApplyDelta(tx, orgID, productID, warehouseID, -10, nil)
	})
	require.NoError(t, err)

	record, err := store.Get(context.Background(), orgID, productID, warehouseID)
	require.NoError(t, err)
	assert.Equal(t, -5, record.Quantity)
}

func TestApplyDeltaKeepsExistingAvgCost(t *testing.T) {
	db := newTestDB(t)
	store := NewInventoryStore(db, nil)

	orgID := "org-1"
	productID := uuid.New()
	warehouseID := uuid.New()

	first := decimal.NewFromFloat(10.00)
	second := decimal.NewFromFloat(99.99)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := store.ApplyDelta(tx, orgID, productID, warehouseID, 5, &first); err != nil {
			return err
		}
		return store.ApplyDelta(tx, orgID, productID, warehouseID, 5, &second)
	})
	require.NoError(t, err)

	record, err := store.Get(context.Background(), orgID, productID, warehouseID)
	require.NoError(t, err)
	assert.True(t, record.AvgCostPrice.Equal(first), "avg cost is seeded at creation only")
}

func TestInventoryIsolatedByOrganization(t *testing.T) {
	db := newTestDB(t)
	store := NewInventoryStore(db, nil)

	productID := uuid.New()
	warehouseID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := store.ApplyDelta(tx, "org-a", productID, warehouseID, 10, nil); err != nil {
			return err
		}
		return store.ApplyDelta(tx, "org-b", productID, warehouseID, 3, nil)
	})
	require.NoError(t, err)

	recordA, err := store.Get(context.Background(), "org-a", productID, warehouseID)
	require.NoError(t, err)
	recordB, err := store.Get(context.Background(), "org-b", productID, warehouseID)
	require.NoError(t, err)

	assert.Equal(t, 10, recordA.Quantity)
	assert.Equal(t, 3, recordB.Quantity)

	_, err = store.Get(context.Background(), "org-c", productID, warehouseID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetUnknownKeyReturnsNotFound(t *testing.T) {
	db := newTestDB(t)
	store := NewInventoryStore(db, nil)

	_, err := store.Get(context.Background(), "org-1", uuid.New(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListFiltersByWarehouse(t *testing.T) {
	db := newTestDB(t)
	store := NewInventoryStore(db, nil)

	orgID := "org-1"
	warehouseA := uuid.New()
	warehouseB := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := store.ApplyDelta(tx, orgID, uuid.New(), warehouseA, 1, nil); err != nil {
			return err
		}
		if err := store.ApplyDelta(tx, orgID, uuid.New(), warehouseA, 2, nil); err != nil {
			return err
		}
		return store.ApplyDelta(tx, orgID, uuid.New(), warehouseB, 3, nil)
	})
	require.NoError(t, err)

	records, total, err := store.List(context.Background(), orgID, &warehouseA, nil, 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, records, 2)
}
