package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stockledger-service/internal/models"
)

// Cache TTL constants
const (
	inventoryCacheTTL = 5 * time.Minute
	cacheKeyPrefix    = "stockledger:"
)

// InventoryStore owns the current-quantity records keyed by
// (organizationId, productId, warehouseId). Quantity changes go through
// ApplyDelta only; there is no read-compute-overwrite path, so concurrent
// movements against the same key cannot lose updates.
type InventoryStore struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewInventoryStore(db *gorm.DB, redisClient *redis.Client) *InventoryStore {
	return &InventoryStore{db: db, redis: redisClient}
}

func inventoryCacheKey(orgID string, productID, warehouseID uuid.UUID) string {
	return fmt.Sprintf("%sinventory:%s:%s:%s", cacheKeyPrefix, orgID, productID, warehouseID)
}

// Get retrieves the inventory record for a key, or gorm.ErrRecordNotFound
// if no movement has touched the key yet. Reads go through the cache when
// Redis is configured.
func (s *InventoryStore) Get(ctx context.Context, orgID string, productID, warehouseID uuid.UUID) (*models.InventoryRecord, error) {
	cacheKey := inventoryCacheKey(orgID, productID, warehouseID)

	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var record models.InventoryRecord
			if err := json.Unmarshal([]byte(val), &record); err == nil {
				return &record, nil
			}
		}
	}

	var record models.InventoryRecord
	err := s.db.WithContext(ctx).
		Where("organization_id = ? AND product_id = ? AND warehouse_id = ?", orgID, productID, warehouseID).
		First(&record).Error
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(record); err == nil {
			s.redis.Set(ctx, cacheKey, data, inventoryCacheTTL)
		}
	}

	return &record, nil
}

// GetTx reads the record inside an open transaction, bypassing the cache
func (s *InventoryStore) GetTx(tx *gorm.DB, orgID string, productID, warehouseID uuid.UUID) (*models.InventoryRecord, error) {
	var record models.InventoryRecord
	err := tx.Where("organization_id = ? AND product_id = ? AND warehouse_id = ?", orgID, productID, warehouseID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ApplyDelta atomically adds delta to the key's quantity, creating the
// record at quantity=delta if none exists. seedAvgCost is only used on
// creation; an existing record keeps its average cost. Quantity is not
// floored and may go negative.
func (s *InventoryStore) ApplyDelta(tx *gorm.DB, orgID string, productID, warehouseID uuid.UUID, delta int, seedAvgCost *decimal.Decimal) error {
	result := tx.Model(&models.InventoryRecord{}).
		Where("organization_id = ? AND product_id = ? AND warehouse_id = ?", orgID, productID, warehouseID).
		Updates(map[string]interface{}{
			"quantity":     gorm.Expr("quantity + ?", delta),
			"last_updated": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	avgCost := decimal.Zero
	if seedAvgCost != nil {
		avgCost = *seedAvgCost
	}
	record := models.InventoryRecord{
		OrganizationID: orgID,
		ProductID:      productID,
		WarehouseID:    warehouseID,
		Quantity:       delta,
		AvgCostPrice:   avgCost,
		LastUpdated:    time.Now(),
	}
	return tx.Create(&record).Error
}

// List retrieves inventory records for an organization, optionally narrowed
// to one warehouse and/or product, with pagination.
func (s *InventoryStore) List(ctx context.Context, orgID string, warehouseID, productID *uuid.UUID, page, limit int) ([]models.InventoryRecord, int64, error) {
	var records []models.InventoryRecord
	var total int64

	query := s.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if warehouseID != nil {
		query = query.Where("warehouse_id = ?", *warehouseID)
	}
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	}

	if err := query.Model(&models.InventoryRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Order("product_id ASC, warehouse_id ASC").Find(&records).Error
	return records, total, err
}

// ListWithProducts loads records plus their product rows; the reporters use
// this for min-stock joins and valuation display.
func (s *InventoryStore) ListWithProducts(ctx context.Context, orgID string, warehouseID *uuid.UUID) ([]models.InventoryRecord, error) {
	var records []models.InventoryRecord
	query := s.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if warehouseID != nil {
		query = query.Where("warehouse_id = ?", *warehouseID)
	}
	err := query.Preload("Product").Order("product_id ASC, warehouse_id ASC").Find(&records).Error
	return records, err
}

// Invalidate drops the cached record for a key after a movement commits
func (s *InventoryStore) Invalidate(ctx context.Context, orgID string, productIDs []uuid.UUID, warehouseIDs []uuid.UUID) {
	if s.redis == nil {
		return
	}
	for i := range productIDs {
		if i < len(warehouseIDs) {
			s.redis.Del(ctx, inventoryCacheKey(orgID, productIDs[i], warehouseIDs[i]))
		}
	}
}

// RedisHealth reports the health of the Redis connection
func (s *InventoryStore) RedisHealth(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not configured")
	}
	return s.redis.Ping(ctx).Err()
}
