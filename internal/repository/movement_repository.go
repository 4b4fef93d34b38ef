package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stockledger-service/internal/models"
)

// MovementRepository persists the movement-producing documents: manual
// adjustments, inter-warehouse transfers and purchase invoices. The
// documents record intent; the InventoryStore and LedgerRepository record
// effect.
type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// ========== Stock Adjustments ==========

func (r *MovementRepository) CreateAdjustmentTx(tx *gorm.DB, adjustment *models.StockAdjustment) error {
	adjustment.CreatedAt = time.Now()
	adjustment.UpdatedAt = time.Now()
	return tx.Create(adjustment).Error
}

func (r *MovementRepository) GetAdjustmentByID(ctx context.Context, orgID string, id uuid.UUID) (*models.StockAdjustment, error) {
	var adjustment models.StockAdjustment
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		Preload("Product").
		Preload("Warehouse").
		First(&adjustment).Error
	return &adjustment, err
}

func (r *MovementRepository) ListAdjustments(ctx context.Context, orgID string, productID *uuid.UUID, adjustmentType *models.AdjustmentType, page, limit int) ([]models.StockAdjustment, int64, error) {
	var adjustments []models.StockAdjustment
	var total int64

	query := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	if adjustmentType != nil {
		query = query.Where("adjustment_type = ?", *adjustmentType)
	}

	if err := query.Model(&models.StockAdjustment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Preload("Product").Preload("Warehouse").
		Order("adjustment_date DESC").
		Find(&adjustments).Error
	return adjustments, total, err
}

// UpdateAdjustment rewrites the adjustment document only. Ledger entries
// produced when the adjustment was applied are not reconciled.
func (r *MovementRepository) UpdateAdjustment(ctx context.Context, orgID string, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.StockAdjustment{}).
		Where("organization_id = ? AND id = ?", orgID, id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAdjustment removes the adjustment document only; the ledger keeps
// its entries.
func (r *MovementRepository) DeleteAdjustment(ctx context.Context, orgID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		Delete(&models.StockAdjustment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ========== Stock Transfers ==========

func (r *MovementRepository) CreateTransferTx(tx *gorm.DB, transfer *models.StockTransfer) error {
	transfer.CreatedAt = time.Now()
	transfer.UpdatedAt = time.Now()
	return tx.Create(transfer).Error
}

func (r *MovementRepository) GetTransferByID(ctx context.Context, orgID string, id uuid.UUID) (*models.StockTransfer, error) {
	var transfer models.StockTransfer
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		Preload("FromWarehouse").
		Preload("ToWarehouse").
		First(&transfer).Error
	return &transfer, err
}

func (r *MovementRepository) ListTransfers(ctx context.Context, orgID string, status *models.TransferStatus, productID, fromWarehouseID, toWarehouseID *uuid.UUID, page, limit int) ([]models.StockTransfer, int64, error) {
	var transfers []models.StockTransfer
	var total int64

	query := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}
	if fromWarehouseID != nil {
		query = query.Where("from_warehouse_id = ?", *fromWarehouseID)
	}
	if toWarehouseID != nil {
		query = query.Where("to_warehouse_id = ?", *toWarehouseID)
	}

	if err := query.Model(&models.StockTransfer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Preload("FromWarehouse").Preload("ToWarehouse").
		Order("transfer_date DESC").
		Find(&transfers).Error
	return transfers, total, err
}

// UpdateTransferStatus sets the status field and nothing else; it never
// moves or reverses stock.
func (r *MovementRepository) UpdateTransferStatus(ctx context.Context, orgID string, id uuid.UUID, status models.TransferStatus) error {
	result := r.db.WithContext(ctx).Model(&models.StockTransfer{}).
		Where("organization_id = ? AND id = ?", orgID, id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ========== Purchases ==========

func (r *MovementRepository) CreatePurchase(ctx context.Context, orgID string, purchase *models.Purchase) error {
	purchase.OrganizationID = orgID
	purchase.CreatedAt = time.Now()
	purchase.UpdatedAt = time.Now()
	for i := range purchase.Items {
		purchase.Items[i].OrganizationID = orgID
		purchase.Items[i].CreatedAt = time.Now()
		purchase.Items[i].UpdatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *MovementRepository) GetPurchaseByID(ctx context.Context, orgID string, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		Preload("Items").
		Preload("Items.Product").
		First(&purchase).Error
	return &purchase, err
}

func (r *MovementRepository) GetPurchaseTx(tx *gorm.DB, orgID string, id uuid.UUID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := tx.Where("organization_id = ? AND id = ?", orgID, id).
		Preload("Items").
		First(&purchase).Error
	return &purchase, err
}

func (r *MovementRepository) ListPurchases(ctx context.Context, orgID string, status *models.PurchaseStatus, supplierID *string, startDate, endDate *time.Time, page, limit int) ([]models.Purchase, int64, error) {
	var purchases []models.Purchase
	var total int64

	query := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}
	if startDate != nil && endDate != nil {
		query = query.Where("purchase_date BETWEEN ? AND ?", *startDate, *endDate)
	}

	if err := query.Model(&models.Purchase{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Preload("Items").Preload("Items.Product").
		Order("purchase_date DESC").
		Find(&purchases).Error
	return purchases, total, err
}

func (r *MovementRepository) UpdatePurchaseStatus(ctx context.Context, orgID string, id uuid.UUID, status models.PurchaseStatus) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == models.PurchaseStatusReceived {
		now := time.Now()
		updates["received_date"] = &now
	}

	result := r.db.WithContext(ctx).Model(&models.Purchase{}).
		Where("organization_id = ? AND id = ?", orgID, id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *MovementRepository) MarkPurchaseReceivedTx(tx *gorm.DB, orgID string, id uuid.UUID) error {
	now := time.Now()
	return tx.Model(&models.Purchase{}).
		Where("organization_id = ? AND id = ?", orgID, id).
		Updates(map[string]interface{}{
			"status":        models.PurchaseStatusReceived,
			"received_date": &now,
			"updated_at":    now,
		}).Error
}

// RecordItemReceiptTx accumulates the received quantity on a purchase line
func (r *MovementRepository) RecordItemReceiptTx(tx *gorm.DB, orgID string, purchaseID, productID uuid.UUID, receivedQuantity int) error {
	return tx.Model(&models.PurchaseItem{}).
		Where("organization_id = ? AND purchase_id = ? AND product_id = ?", orgID, purchaseID, productID).
		Updates(map[string]interface{}{
			"received_quantity": gorm.Expr("received_quantity + ?", receivedQuantity),
			"updated_at":        time.Now(),
		}).Error
}
