package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stockledger-service/internal/models"
)

// WarehouseRepository persists the warehouse and product masters
type WarehouseRepository struct {
	db *gorm.DB
}

func NewWarehouseRepository(db *gorm.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

// ========== Warehouses ==========

// CreateWarehouse creates a warehouse; at most one warehouse per
// organization carries isDefault, so setting it unsets the others.
func (r *WarehouseRepository) CreateWarehouse(ctx context.Context, orgID string, warehouse *models.Warehouse) error {
	warehouse.OrganizationID = orgID
	warehouse.CreatedAt = time.Now()
	warehouse.UpdatedAt = time.Now()

	if warehouse.IsDefault {
		r.db.WithContext(ctx).Model(&models.Warehouse{}).
			Where("organization_id = ? AND is_default = ?", orgID, true).
			Update("is_default", false)
	}

	return r.db.WithContext(ctx).Create(warehouse).Error
}

func (r *WarehouseRepository) GetWarehouseByID(ctx context.Context, orgID string, id uuid.UUID) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&warehouse).Error
	return &warehouse, err
}

func (r *WarehouseRepository) ListWarehouses(ctx context.Context, orgID string, activeOnly bool, page, limit int) ([]models.Warehouse, int64, error) {
	var warehouses []models.Warehouse
	var total int64

	query := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Model(&models.Warehouse{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Order("is_default DESC, name ASC").Find(&warehouses).Error
	return warehouses, total, err
}

func (r *WarehouseRepository) UpdateWarehouse(ctx context.Context, orgID string, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	if isDefault, ok := updates["is_default"].(bool); ok && isDefault {
		r.db.WithContext(ctx).Model(&models.Warehouse{}).
			Where("organization_id = ? AND id != ?", orgID, id).
			Update("is_default", false)
	}

	result := r.db.WithContext(ctx).Model(&models.Warehouse{}).
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

func (r *WarehouseRepository) DeleteWarehouse(ctx context.Context, orgID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		Delete(&models.Warehouse{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ========== Products ==========

func (r *WarehouseRepository) CreateProduct(ctx context.Context, orgID string, product *models.Product) error {
	product.OrganizationID = orgID
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *WarehouseRepository) GetProductByID(ctx context.Context, orgID string, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&product).Error
	return &product, err
}

func (r *WarehouseRepository) ListProducts(ctx context.Context, orgID string, activeOnly bool, page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.WithContext(ctx).Where("organization_id = ?", orgID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Order("name ASC").Find(&products).Error
	return products, total, err
}

func (r *WarehouseRepository) UpdateProduct(ctx context.Context, orgID string, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.Product{}).
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

func (r *WarehouseRepository) DeleteProduct(ctx context.Context, orgID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		Delete(&models.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ProductsByID bulk-loads products for the given ids
func (r *WarehouseRepository) ProductsByID(ctx context.Context, orgID string, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	result := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND id IN ?", orgID, ids).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}
