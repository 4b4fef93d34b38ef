package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"stockledger-service/internal/events"
	"stockledger-service/internal/metrics"
	"stockledger-service/internal/models"
	"stockledger-service/internal/repository"
)

// Reference types stamped on ledger entries
const (
	ReferenceTypeAdjustment = "StockAdjustment"
	ReferenceTypeTransfer   = "StockTransfer"
	ReferenceTypePurchase   = "Purchase"
)

// MovementEngine executes stock movements. Every operation validates its
// request fully before touching storage, then runs the document write, the
// inventory delta and the ledger append inside one database transaction:
// either all of them commit or none do.
type MovementEngine struct {
	db        *gorm.DB
	inventory *repository.InventoryStore
	ledger    *repository.LedgerRepository
	movements *repository.MovementRepository
	masters   *repository.WarehouseRepository
	publisher *events.Publisher
	logger    *logrus.Entry
}

func NewMovementEngine(
	db *gorm.DB,
	inventory *repository.InventoryStore,
	ledger *repository.LedgerRepository,
	movements *repository.MovementRepository,
	masters *repository.WarehouseRepository,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *MovementEngine {
	return &MovementEngine{
		db:        db,
		inventory: inventory,
		ledger:    ledger,
		movements: movements,
		masters:   masters,
		publisher: publisher,
		logger:    logger.WithField("component", "engine"),
	}
}

// AdjustInventory applies a manual stock correction. INCREASE and FOUND add
// the quantity; DECREASE, DAMAGE and THEFT subtract it. The resulting
// quantity may go negative.
func (e *MovementEngine) AdjustInventory(ctx context.Context, orgID string, req models.AdjustStockRequest) (*models.StockAdjustment, error) {
	if req.Quantity <= 0 {
		return nil, newValidationError("quantity", "must be greater than zero")
	}
	if !req.AdjustmentType.IsValid() {
		return nil, newValidationError("adjustmentType", fmt.Sprintf("unknown adjustment type %q", req.AdjustmentType))
	}

	delta := req.Quantity
	if !req.AdjustmentType.Additive() {
		delta = -req.Quantity
	}

	adjustment := &models.StockAdjustment{
		AdjustmentNumber: fmt.Sprintf("ADJ-%d", time.Now().UnixMilli()),
		AdjustmentDate:   time.Now(),
		OrganizationID:   orgID,
		ProductID:        req.ProductID,
		WarehouseID:      req.WarehouseID,
		AdjustmentType:   req.AdjustmentType,
		Quantity:         req.Quantity,
		Reason:           req.Reason,
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := e.movements.CreateAdjustmentTx(tx, adjustment); err != nil {
			return err
		}
		if err := e.inventory.ApplyDelta(tx, orgID, req.ProductID, req.WarehouseID, delta, nil); err != nil {
			return err
		}
		return e.ledger.Append(tx, &models.StockLedgerEntry{
			OrganizationID: orgID,
			ProductID:      req.ProductID,
			WarehouseID:    req.WarehouseID,
			MovementType:   models.MovementAdjustment,
			Quantity:       req.Quantity,
			ReferenceID:    adjustment.ID,
			ReferenceType:  ReferenceTypeAdjustment,
			Remarks:        req.Reason,
			CreatedAt:      time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	e.afterMovement(ctx, orgID, models.MovementAdjustment, 1,
		[]uuid.UUID{req.ProductID}, []uuid.UUID{req.WarehouseID})
	e.publisher.PublishStockAdjusted(events.StockMovedEvent{
		OrganizationID: orgID,
		ProductID:      req.ProductID.String(),
		WarehouseID:    req.WarehouseID.String(),
		MovementType:   string(models.MovementAdjustment),
		Quantity:       delta,
		ReferenceID:    adjustment.ID.String(),
		ReferenceType:  ReferenceTypeAdjustment,
		OccurredAt:     time.Now(),
	})
	e.checkLowStock(ctx, orgID, req.ProductID, req.WarehouseID)

	e.logger.WithFields(logrus.Fields{
		"organization_id":   orgID,
		"adjustment_number": adjustment.AdjustmentNumber,
		"adjustment_type":   adjustment.AdjustmentType,
		"delta":             delta,
	}).Info("Inventory adjusted")

	return adjustment, nil
}

// TransferStock moves a quantity of one product between two warehouses.
// Stock moves synchronously: the source is decremented and the destination
// incremented before this returns, even though the transfer document is
// created with status PENDING. The destination record, when created here,
// inherits its average cost from the source record.
func (e *MovementEngine) TransferStock(ctx context.Context, orgID string, req models.TransferStockRequest) (*models.StockTransfer, error) {
	if req.Quantity <= 0 {
		return nil, newValidationError("quantity", "must be greater than zero")
	}
	if req.FromWarehouseID == req.ToWarehouseID {
		return nil, newValidationError("toWarehouseId", "source and destination warehouses must differ")
	}

	transfer := &models.StockTransfer{
		OrganizationID:  orgID,
		ProductID:       req.ProductID,
		FromWarehouseID: req.FromWarehouseID,
		ToWarehouseID:   req.ToWarehouseID,
		Quantity:        req.Quantity,
		TransferDate:    time.Now(),
		Reason:          req.Reason,
		Status:          models.TransferStatusPending,
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := e.movements.CreateTransferTx(tx, transfer); err != nil {
			return err
		}

		// Seed the destination's average cost from the source record if
		// the destination has never held this product.
		seedCost := decimal.Zero
		if source, err := e.inventory.GetTx(tx, orgID, req.ProductID, req.FromWarehouseID); err == nil {
			seedCost = source.AvgCostPrice
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := e.inventory.ApplyDelta(tx, orgID, req.ProductID, req.FromWarehouseID, -req.Quantity, nil); err != nil {
			return err
		}
		if err := e.inventory.ApplyDelta(tx, orgID, req.ProductID, req.ToWarehouseID, req.Quantity, &seedCost); err != nil {
			return err
		}

		now := time.Now()
		if err := e.ledger.Append(tx, &models.StockLedgerEntry{
			OrganizationID: orgID,
			ProductID:      req.ProductID,
			WarehouseID:    req.FromWarehouseID,
			MovementType:   models.MovementTransferOut,
			Quantity:       req.Quantity,
			ReferenceID:    transfer.ID,
			ReferenceType:  ReferenceTypeTransfer,
			Remarks:        req.Reason,
			CreatedAt:      now,
		}); err != nil {
			return err
		}
		return e.ledger.Append(tx, &models.StockLedgerEntry{
			OrganizationID: orgID,
			ProductID:      req.ProductID,
			WarehouseID:    req.ToWarehouseID,
			MovementType:   models.MovementTransferIn,
			Quantity:       req.Quantity,
			ReferenceID:    transfer.ID,
			ReferenceType:  ReferenceTypeTransfer,
			Remarks:        req.Reason,
			CreatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}

	e.afterMovement(ctx, orgID, models.MovementTransferOut, 2,
		[]uuid.UUID{req.ProductID, req.ProductID},
		[]uuid.UUID{req.FromWarehouseID, req.ToWarehouseID})
	e.publisher.PublishStockTransferred(events.StockMovedEvent{
		OrganizationID: orgID,
		ProductID:      req.ProductID.String(),
		MovementType:   string(models.MovementTransferOut),
		Quantity:       req.Quantity,
		ReferenceID:    transfer.ID.String(),
		ReferenceType:  ReferenceTypeTransfer,
		OccurredAt:     time.Now(),
	})
	e.checkLowStock(ctx, orgID, req.ProductID, req.FromWarehouseID)

	e.logger.WithFields(logrus.Fields{
		"organization_id":   orgID,
		"transfer_id":       transfer.ID,
		"from_warehouse_id": req.FromWarehouseID,
		"to_warehouse_id":   req.ToWarehouseID,
		"quantity":          req.Quantity,
	}).Info("Stock transferred")

	return transfer, nil
}

// UpdateTransferStatus sets the lifecycle status of a transfer. The status
// is descriptive only: inventory already moved when the transfer was
// created, and no status change (including CANCELLED) reverses it.
func (e *MovementEngine) UpdateTransferStatus(ctx context.Context, orgID string, transferID uuid.UUID, status models.TransferStatus) (*models.StockTransfer, error) {
	if !status.IsValid() {
		return nil, newValidationError("status", fmt.Sprintf("unknown transfer status %q", status))
	}

	if err := e.movements.UpdateTransferStatus(ctx, orgID, transferID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return e.movements.GetTransferByID(ctx, orgID, transferID)
}

// ReceivePurchase records physical receipt of goods against a purchase
// invoice: each received line increments inventory at its warehouse, appends
// a RECEIPT ledger entry, and accumulates receivedQuantity on the line. The
// purchase is marked RECEIVED once all lines are processed.
func (e *MovementEngine) ReceivePurchase(ctx context.Context, orgID string, purchaseID uuid.UUID, req models.ReceivePurchaseRequest) (*models.Purchase, error) {
	if len(req.Items) == 0 {
		return nil, newValidationError("items", "at least one item is required")
	}
	for _, item := range req.Items {
		if item.ReceivedQuantity <= 0 {
			return nil, newValidationError("items.receivedQuantity", "must be greater than zero")
		}
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		purchase, err := e.movements.GetPurchaseTx(tx, orgID, purchaseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if purchase.Status == models.PurchaseStatusCancelled {
			return newValidationError("status", "cannot receive a cancelled purchase")
		}

		lines := make(map[uuid.UUID]models.PurchaseItem, len(purchase.Items))
		for _, line := range purchase.Items {
			lines[line.ProductID] = line
		}

		for _, item := range req.Items {
			line, ok := lines[item.ProductID]
			if !ok {
				return newValidationError("items.productId",
					fmt.Sprintf("product %s is not on this purchase", item.ProductID))
			}

			if err := e.inventory.ApplyDelta(tx, orgID, item.ProductID, item.WarehouseID, item.ReceivedQuantity, &line.Rate); err != nil {
				return err
			}
			if err := e.movements.RecordItemReceiptTx(tx, orgID, purchaseID, item.ProductID, item.ReceivedQuantity); err != nil {
				return err
			}
			if err := e.ledger.Append(tx, &models.StockLedgerEntry{
				OrganizationID: orgID,
				ProductID:      item.ProductID,
				WarehouseID:    item.WarehouseID,
				MovementType:   models.MovementReceipt,
				Quantity:       item.ReceivedQuantity,
				ReferenceID:    purchaseID,
				ReferenceType:  ReferenceTypePurchase,
				Remarks:        fmt.Sprintf("Received against invoice %s", purchase.InvoiceNumber),
				CreatedAt:      time.Now(),
			}); err != nil {
				return err
			}
		}

		return e.movements.MarkPurchaseReceivedTx(tx, orgID, purchaseID)
	})
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(req.Items))
	warehouseIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		productIDs = append(productIDs, item.ProductID)
		warehouseIDs = append(warehouseIDs, item.WarehouseID)
	}
	e.afterMovement(ctx, orgID, models.MovementReceipt, len(req.Items), productIDs, warehouseIDs)
	for _, item := range req.Items {
		e.publisher.PublishStockReceived(events.StockMovedEvent{
			OrganizationID: orgID,
			ProductID:      item.ProductID.String(),
			WarehouseID:    item.WarehouseID.String(),
			MovementType:   string(models.MovementReceipt),
			Quantity:       item.ReceivedQuantity,
			ReferenceID:    purchaseID.String(),
			ReferenceType:  ReferenceTypePurchase,
			OccurredAt:     time.Now(),
		})
	}

	e.logger.WithFields(logrus.Fields{
		"organization_id": orgID,
		"purchase_id":     purchaseID,
		"item_count":      len(req.Items),
	}).Info("Purchase received")

	return e.movements.GetPurchaseByID(ctx, orgID, purchaseID)
}

// afterMovement runs post-commit bookkeeping: cache invalidation and the
// movement counter.
func (e *MovementEngine) afterMovement(ctx context.Context, orgID string, movementType models.MovementType, entryCount int, productIDs, warehouseIDs []uuid.UUID) {
	e.inventory.Invalidate(ctx, orgID, productIDs, warehouseIDs)
	metrics.StockMovementsTotal.WithLabelValues(string(movementType)).Inc()
	metrics.LedgerEntriesTotal.Add(float64(entryCount))
}

// checkLowStock emits a low-stock event when the key's quantity has dropped
// strictly below the product's minimum stock level. A minStockLevel of zero
// never alerts.
func (e *MovementEngine) checkLowStock(ctx context.Context, orgID string, productID, warehouseID uuid.UUID) {
	record, err := e.inventory.Get(ctx, orgID, productID, warehouseID)
	if err != nil {
		return
	}
	product, err := e.masters.GetProductByID(ctx, orgID, productID)
	if err != nil {
		return
	}
	if product.MinStockLevel <= 0 || record.Quantity >= product.MinStockLevel {
		return
	}

	e.publisher.PublishLowStock(events.LowStockEvent{
		OrganizationID:  orgID,
		ProductID:       productID.String(),
		WarehouseID:     warehouseID.String(),
		CurrentQuantity: record.Quantity,
		MinStockLevel:   product.MinStockLevel,
		OccurredAt:      time.Now(),
	})
}
