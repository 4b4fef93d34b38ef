package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stockledger-service/internal/models"
	"stockledger-service/internal/repository"
)

type testEnv struct {
	db        *gorm.DB
	engine    *MovementEngine
	inventory *repository.InventoryStore
	ledger    *repository.LedgerRepository
	movements *repository.MovementRepository
	masters   *repository.WarehouseRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

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

	inventory := repository.NewInventoryStore(db, nil)
	ledger := repository.NewLedgerRepository(db)
	movements := repository.NewMovementRepository(db)
	masters := repository.NewWarehouseRepository(db)

	return &testEnv{
		db:        db,
		engine:    NewMovementEngine(db, inventory, ledger, movements, masters, nil, log),
		inventory: inventory,
		ledger:    ledger,
		movements: movements,
		masters:   masters,
	}
}

func (e *testEnv) quantity(t *testing.T, orgID string, productID, warehouseID uuid.UUID) int {
	t.Helper()
	record, err := e.inventory.Get(context.Background(), orgID, productID, warehouseID)
	if err != nil {
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)
		return 0
	}
	return record.Quantity
}

func (e *testEnv) seedStock(t *testing.T, orgID string, productID, warehouseID uuid.UUID, quantity int, avgCost decimal.Decimal) {
	t.Helper()
	err := e.db.Transaction(func(tx *gorm.DB) error {
		return e.inventory.ApplyDelta(tx, orgID, productID, warehouseID, quantity, &avgCost)
	})
	require.NoError(t, err)
}

const testOrg = "org-test"

func TestAdjustInventoryIncrease(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	warehouseID := uuid.New()
	env.seedStock(t, testOrg, productID, warehouseID, 5, decimal.Zero)

	adjustment, err := env.engine.AdjustInventory(context.Background(), testOrg, models.AdjustStockRequest{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       10,
		AdjustmentType: models.AdjustmentIncrease,
		Reason:         "cycle count",
	})
	require.NoError(t, err)

	assert.Equal(t, 15, env.quantity(t, testOrg, productID, warehouseID))
	assert.True(t, strings.HasPrefix(adjustment.AdjustmentNumber, "ADJ-"))
	assert.Equal(t, 10, adjustment.Quantity)

	entries, err := env.ledger.ListForKey(context.Background(), testOrg, productID, warehouseID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.MovementAdjustment, entries[0].MovementType)
	assert.Equal(t, 10, entries[0].Quantity)
	assert.Equal(t, adjustment.ID, entries[0].ReferenceID)
}

func TestAdjustInventoryDecreaseGoesNegative(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	warehouseID := uuid.New()
	env.seedStock(t, testOrg, productID, warehouseID, 5, decimal.Zero)

	_, err := env.engine.AdjustInventory(context.Background(), testOrg, models.AdjustStockRequest{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       10,
		AdjustmentType: models.AdjustmentDecrease,
	})
	require.NoError(t, err)

	assert.Equal(t, -5, env.quantity(t, testOrg, productID, warehouseID))
}

func TestAdjustInventorySubtractiveTypes(t *testing.T) {
	env := newTestEnv(t)

	for _, adjustmentType := range []models.AdjustmentType{
		models.AdjustmentDecrease, models.AdjustmentDamage, models.AdjustmentTheft,
	} {
		productID := uuid.New()
		warehouseID := uuid.New()
		env.seedStock(t, testOrg, productID, warehouseID, 20, decimal.Zero)

		_, err := env.engine.AdjustInventory(context.Background(), testOrg, models.AdjustStockRequest{
			ProductID:      productID,
			WarehouseID:    warehouseID,
			Quantity:       8,
			AdjustmentType: adjustmentType,
		})
		require.NoError(t, err)
		assert.Equal(t, 12, env.quantity(t, testOrg, productID, warehouseID), "type %s", adjustmentType)
	}
}

func TestAdjustInventoryFoundAdds(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	warehouseID := uuid.New()

	_, err := env.engine.AdjustInventory(context.Background(), testOrg, models.AdjustStockRequest{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       4,
		AdjustmentType: models.AdjustmentFound,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, env.quantity(t, testOrg, productID, warehouseID))
}

func TestAdjustInventoryRejectsBeforeAnyWrite(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	warehouseID := uuid.New()

	_, err := env.engine.AdjustInventory(context.Background(), testOrg, models.AdjustStockRequest{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       5,
		AdjustmentType: "RECONCILE",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	var adjustments int64
	require.NoError(t, env.db.Model(&models.StockAdjustment{}).Count(&adjustments).Error)
	assert.Zero(t, adjustments)

	var entries int64
	require.NoError(t, env.db.Model(&models.StockLedgerEntry{}).Count(&entries).Error)
	assert.Zero(t, entries)
}

func TestAdjustInventoryRejectsNonPositiveQuantity(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.AdjustInventory(context.Background(), testOrg, models.AdjustStockRequest{
		ProductID:      uuid.New(),
		WarehouseID:    uuid.New(),
		Quantity:       0,
		AdjustmentType: models.AdjustmentIncrease,
	})
	assert.True(t, IsValidationError(err))

	_, err = env.engine.AdjustInventory(context.Background(), testOrg, models.AdjustStockRequest{
		ProductID:      uuid.New(),
		WarehouseID:    uuid.New(),
		Quantity:       -3,
		AdjustmentType: models.AdjustmentIncrease,
	})
	assert.True(t, IsValidationError(err))
}

func TestTransferStockMovesBothSides(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	fromWarehouse := uuid.New()
	toWarehouse := uuid.New()
	env.seedStock(t, testOrg, productID, fromWarehouse, 20, decimal.NewFromInt(50))
	env.seedStock(t, testOrg, productID, toWarehouse, 3, decimal.NewFromInt(45))

	transfer, err := env.engine.TransferStock(context.Background(), testOrg, models.TransferStockRequest{
		ProductID:       productID,
		FromWarehouseID: fromWarehouse,
		ToWarehouseID:   toWarehouse,
		Quantity:        7,
	})
	require.NoError(t, err)

	assert.Equal(t, 13, env.quantity(t, testOrg, productID, fromWarehouse))
	assert.Equal(t, 10, env.quantity(t, testOrg, productID, toWarehouse))
	assert.Equal(t, models.TransferStatusPending, transfer.Status)

	fromEntries, err := env.ledger.ListForKey(context.Background(), testOrg, productID, fromWarehouse)
	require.NoError(t, err)
	require.Len(t, fromEntries, 1)
	assert.Equal(t, models.MovementTransferOut, fromEntries[0].MovementType)
	assert.Equal(t, 7, fromEntries[0].Quantity)
	assert.Equal(t, transfer.ID, fromEntries[0].ReferenceID)

	toEntries, err := env.ledger.ListForKey(context.Background(), testOrg, productID, toWarehouse)
	require.NoError(t, err)
	require.Len(t, toEntries, 1)
	assert.Equal(t, models.MovementTransferIn, toEntries[0].MovementType)
	assert.Equal(t, 7, toEntries[0].Quantity)
	assert.Equal(t, transfer.ID, toEntries[0].ReferenceID)
}

func TestTransferStockRejectsSameWarehouse(t *testing.T) {
	env := newTestEnv(t)
	warehouseID := uuid.New()

	_, err := env.engine.TransferStock(context.Background(), testOrg, models.TransferStockRequest{
		ProductID:       uuid.New(),
		FromWarehouseID: warehouseID,
		ToWarehouseID:   warehouseID,
		Quantity:        1,
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	var transfers int64
	require.NoError(t, env.db.Model(&models.StockTransfer{}).Count(&transfers).Error)
	assert.Zero(t, transfers)
}

func TestTransferStockSeedsDestinationAvgCost(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	fromWarehouse := uuid.New()
	toWarehouse := uuid.New()
	sourceCost := decimal.NewFromFloat(37.25)
	env.seedStock(t, testOrg, productID, fromWarehouse, 10, sourceCost)

	_, err := env.engine.TransferStock(context.Background(), testOrg, models.TransferStockRequest{
		ProductID:       productID,
		FromWarehouseID: fromWarehouse,
		ToWarehouseID:   toWarehouse,
		Quantity:        4,
	})
	require.NoError(t, err)

	destination, err := env.inventory.Get(context.Background(), testOrg, productID, toWarehouse)
	require.NoError(t, err)
	assert.True(t, destination.AvgCostPrice.Equal(sourceCost),
		"destination inherits the source average cost, got %s", destination.AvgCostPrice)
}

func TestTransferStockKeepsExistingDestinationAvgCost(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	fromWarehouse := uuid.New()
	toWarehouse := uuid.New()
	env.seedStock(t, testOrg, productID, fromWarehouse, 10, decimal.NewFromInt(100))
	destinationCost := decimal.NewFromInt(60)
	env.seedStock(t, testOrg, productID, toWarehouse, 2, destinationCost)

	_, err := env.engine.TransferStock(context.Background(), testOrg, models.TransferStockRequest{
		ProductID:       productID,
		FromWarehouseID: fromWarehouse,
		ToWarehouseID:   toWarehouse,
		Quantity:        4,
	})
	require.NoError(t, err)

	destination, err := env.inventory.Get(context.Background(), testOrg, productID, toWarehouse)
	require.NoError(t, err)
	assert.True(t, destination.AvgCostPrice.Equal(destinationCost),
		"an existing destination record keeps its average cost")
}

func TestTransferFromEmptyWarehouseGoesNegative(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	fromWarehouse := uuid.New()
	toWarehouse := uuid.New()

	_, err := env.engine.TransferStock(context.Background(), testOrg, models.TransferStockRequest{
		ProductID:       productID,
		FromWarehouseID: fromWarehouse,
		ToWarehouseID:   toWarehouse,
		Quantity:        5,
	})
	require.NoError(t, err)

	assert.Equal(t, -5, env.quantity(t, testOrg, productID, fromWarehouse))
	assert.Equal(t, 5, env.quantity(t, testOrg, productID, toWarehouse))
}

func TestUpdateTransferStatusIsDecorative(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	fromWarehouse := uuid.New()
	toWarehouse := uuid.New()
	env.seedStock(t, testOrg, productID, fromWarehouse, 10, decimal.Zero)

	transfer, err := env.engine.TransferStock(context.Background(), testOrg, models.TransferStockRequest{
		ProductID:       productID,
		FromWarehouseID: fromWarehouse,
		ToWarehouseID:   toWarehouse,
		Quantity:        4,
	})
	require.NoError(t, err)

	updated, err := env.engine.UpdateTransferStatus(context.Background(), testOrg, transfer.ID, models.TransferStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusCancelled, updated.Status)

	// Cancelling never reverses the movement.
	assert.Equal(t, 6, env.quantity(t, testOrg, productID, fromWarehouse))
	assert.Equal(t, 4, env.quantity(t, testOrg, productID, toWarehouse))
}

func TestUpdateTransferStatusUnknownTransfer(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.UpdateTransferStatus(context.Background(), testOrg, uuid.New(), models.TransferStatusCompleted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTransferStatusRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.UpdateTransferStatus(context.Background(), testOrg, uuid.New(), "SHIPPED")
	assert.True(t, IsValidationError(err))
}

func createPendingPurchase(t *testing.T, env *testEnv, productID uuid.UUID, quantity int, rate decimal.Decimal) *models.Purchase {
	t.Helper()
	purchase := &models.Purchase{
		InvoiceNumber: "INV-1001",
		SupplierID:    "supplier-1",
		Status:        models.PurchaseStatusPending,
		Items: []models.PurchaseItem{
			{ProductID: productID, Quantity: quantity, Rate: rate},
		},
	}
	require.NoError(t, env.movements.CreatePurchase(context.Background(), testOrg, purchase))
	return purchase
}

func TestReceivePurchase(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	warehouseID := uuid.New()
	rate := decimal.NewFromFloat(25.00)
	purchase := createPendingPurchase(t, env, productID, 12, rate)

	received, err := env.engine.ReceivePurchase(context.Background(), testOrg, purchase.ID, models.ReceivePurchaseRequest{
		Items: []models.ReceivePurchaseItem{
			{ProductID: productID, WarehouseID: warehouseID, ReceivedQuantity: 12},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.PurchaseStatusReceived, received.Status)
	require.NotNil(t, received.ReceivedDate)
	require.Len(t, received.Items, 1)
	assert.Equal(t, 12, received.Items[0].ReceivedQuantity)

	assert.Equal(t, 12, env.quantity(t, testOrg, productID, warehouseID))

	record, err := env.inventory.Get(context.Background(), testOrg, productID, warehouseID)
	require.NoError(t, err)
	assert.True(t, record.AvgCostPrice.Equal(rate), "a new record is costed at the purchase rate")

	entries, err := env.ledger.ListForKey(context.Background(), testOrg, productID, warehouseID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.MovementReceipt, entries[0].MovementType)
	assert.Equal(t, 12, entries[0].Quantity)
	assert.Equal(t, purchase.ID, entries[0].ReferenceID)
}

func TestReceivePurchaseUnknownPurchase(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.engine.ReceivePurchase(context.Background(), testOrg, uuid.New(), models.ReceivePurchaseRequest{
		Items: []models.ReceivePurchaseItem{
			{ProductID: uuid.New(), WarehouseID: uuid.New(), ReceivedQuantity: 1},
		},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReceivePurchaseRejectsForeignProduct(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	purchase := createPendingPurchase(t, env, productID, 5, decimal.Zero)

	stranger := uuid.New()
	_, err := env.engine.ReceivePurchase(context.Background(), testOrg, purchase.ID, models.ReceivePurchaseRequest{
		Items: []models.ReceivePurchaseItem{
			{ProductID: stranger, WarehouseID: uuid.New(), ReceivedQuantity: 5},
		},
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	// The rejected receipt must leave no trace.
	var entries int64
	require.NoError(t, env.db.Model(&models.StockLedgerEntry{}).Count(&entries).Error)
	assert.Zero(t, entries)

	reloaded, err := env.movements.GetPurchaseByID(context.Background(), testOrg, purchase.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusPending, reloaded.Status)
}

func TestReceivePurchaseRejectsCancelled(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	purchase := createPendingPurchase(t, env, productID, 5, decimal.Zero)
	require.NoError(t, env.movements.UpdatePurchaseStatus(context.Background(), testOrg, purchase.ID, models.PurchaseStatusCancelled))

	_, err := env.engine.ReceivePurchase(context.Background(), testOrg, purchase.ID, models.ReceivePurchaseRequest{
		Items: []models.ReceivePurchaseItem{
			{ProductID: productID, WarehouseID: uuid.New(), ReceivedQuantity: 5},
		},
	})
	assert.True(t, IsValidationError(err))
}

func TestLedgerReplayMatchesRecord(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	warehouseA := uuid.New()
	warehouseB := uuid.New()

	_, err := env.engine.AdjustInventory(context.Background(), testOrg, models.AdjustStockRequest{
		ProductID: productID, WarehouseID: warehouseA,
		Quantity: 30, AdjustmentType: models.AdjustmentIncrease,
	})
	require.NoError(t, err)

	_, err = env.engine.TransferStock(context.Background(), testOrg, models.TransferStockRequest{
		ProductID: productID, FromWarehouseID: warehouseA, ToWarehouseID: warehouseB, Quantity: 10,
	})
	require.NoError(t, err)

	_, err = env.engine.AdjustInventory(context.Background(), testOrg, models.AdjustStockRequest{
		ProductID: productID, WarehouseID: warehouseA,
		Quantity: 3, AdjustmentType: models.AdjustmentDamage,
	})
	require.NoError(t, err)

	purchase := createPendingPurchase(t, env, productID, 8, decimal.NewFromInt(10))
	_, err = env.engine.ReceivePurchase(context.Background(), testOrg, purchase.ID, models.ReceivePurchaseRequest{
		Items: []models.ReceivePurchaseItem{
			{ProductID: productID, WarehouseID: warehouseA, ReceivedQuantity: 8},
		},
	})
	require.NoError(t, err)

	// 30 - 10 - 3 + 8
	assert.Equal(t, 25, env.quantity(t, testOrg, productID, warehouseA))
	assert.Equal(t, 10, env.quantity(t, testOrg, productID, warehouseB))

	for _, warehouseID := range []uuid.UUID{warehouseA, warehouseB} {
		audit, err := env.engine.AuditLedger(context.Background(), testOrg, productID, warehouseID)
		require.NoError(t, err)
		assert.True(t, audit.Consistent, "replay mismatch: record=%d ledger=%d", audit.RecordQuantity, audit.LedgerQuantity)
		assert.Equal(t, audit.RecordQuantity, audit.LedgerQuantity)
	}
}

func TestAdjustmentDocumentDeleteKeepsLedger(t *testing.T) {
	env := newTestEnv(t)
	productID := uuid.New()
	warehouseID := uuid.New()

	adjustment, err := env.engine.AdjustInventory(context.Background(), testOrg, models.AdjustStockRequest{
		ProductID: productID, WarehouseID: warehouseID,
		Quantity: 9, AdjustmentType: models.AdjustmentIncrease,
	})
	require.NoError(t, err)

	require.NoError(t, env.movements.DeleteAdjustment(context.Background(), testOrg, adjustment.ID))

	// Quantity and ledger are untouched by the document delete.
	assert.Equal(t, 9, env.quantity(t, testOrg, productID, warehouseID))
	entries, err := env.ledger.ListForKey(context.Background(), testOrg, productID, warehouseID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
