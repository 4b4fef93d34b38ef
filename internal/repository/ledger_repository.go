package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stockledger-service/internal/models"
)

// LedgerRepository is the append-only stock movement log. Entries are
// written once, inside the same transaction as the inventory change they
// describe, and are never updated or deleted afterwards.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append stores one entry inside an open transaction. A failed append
// fails the whole movement operation; nothing is dropped silently.
func (r *LedgerRepository) Append(tx *gorm.DB, entry *models.StockLedgerEntry) error {
	return tx.Create(entry).Error
}

// List retrieves entries for an organization, newest first, honouring the
// optional product/warehouse/date filters.
func (r *LedgerRepository) List(ctx context.Context, orgID string, filter models.LedgerFilter) ([]models.StockLedgerEntry, int64, error) {
	var entries []models.StockLedgerEntry
	var total int64

	query := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}

	if err := query.Model(&models.StockLedgerEntry{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.Limit > 0 {
		offset := (filter.Page - 1) * filter.Limit
		query = query.Offset(offset).Limit(filter.Limit)
	}

	err := query.Order("created_at DESC").Find(&entries).Error
	return entries, total, err
}

// GetByID retrieves a single entry
func (r *LedgerRepository) GetByID(ctx context.Context, orgID string, id uuid.UUID) (*models.StockLedgerEntry, error) {
	var entry models.StockLedgerEntry
	err := r.db.WithContext(ctx).Where("organization_id = ? AND id = ?", orgID, id).First(&entry).Error
	return &entry, err
}

// ListForKey returns every entry for one inventory key in append order.
// Replaying these from zero must reproduce the record's quantity.
func (r *LedgerRepository) ListForKey(ctx context.Context, orgID string, productID, warehouseID uuid.UUID) ([]models.StockLedgerEntry, error) {
	var entries []models.StockLedgerEntry
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND product_id = ? AND warehouse_id = ?", orgID, productID, warehouseID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// AdjustmentTypesByID bulk-loads adjustment types for the given reference
// ids; replay needs them to sign ADJUSTMENT entries.
func (r *LedgerRepository) AdjustmentTypesByID(ctx context.Context, orgID string, ids []uuid.UUID) (map[uuid.UUID]models.AdjustmentType, error) {
	types := make(map[uuid.UUID]models.AdjustmentType, len(ids))
	if len(ids) == 0 {
		return types, nil
	}

	var adjustments []models.StockAdjustment
	err := r.db.WithContext(ctx).
		Select("id", "adjustment_type").
		Where("organization_id = ? AND id IN ?", orgID, ids).
		Find(&adjustments).Error
	if err != nil {
		return nil, err
	}
	for _, adj := range adjustments {
		types[adj.ID] = adj.AdjustmentType
	}
	return types, nil
}
