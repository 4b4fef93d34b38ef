package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovementType classifies a stock ledger entry
type MovementType string

const (
	MovementAdjustment  MovementType = "ADJUSTMENT"
	MovementTransferOut MovementType = "TRANSFER_OUT"
	MovementTransferIn  MovementType = "TRANSFER_IN"
	MovementReceipt     MovementType = "RECEIPT"
)

// AdjustmentType classifies a manual stock correction
// INCREASE and FOUND add to inventory; DECREASE, DAMAGE and THEFT subtract
type AdjustmentType string

const (
	AdjustmentIncrease AdjustmentType = "INCREASE"
	AdjustmentDecrease AdjustmentType = "DECREASE"
	AdjustmentDamage   AdjustmentType = "DAMAGE"
	AdjustmentTheft    AdjustmentType = "THEFT"
	AdjustmentFound    AdjustmentType = "FOUND"
)

// IsValid reports whether the adjustment type is one of the known values
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentIncrease, AdjustmentDecrease, AdjustmentDamage, AdjustmentTheft, AdjustmentFound:
		return true
	}
	return false
}

// Additive reports whether the adjustment adds to inventory
func (t AdjustmentType) Additive() bool {
	return t == AdjustmentIncrease || t == AdjustmentFound
}

// TransferStatus represents the lifecycle state of a stock transfer.
// Inventory moves synchronously at transfer creation; the status field does
// not gate or reverse the movement.
type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
)

func (s TransferStatus) IsValid() bool {
	switch s {
	case TransferStatusPending, TransferStatusCompleted, TransferStatusCancelled:
		return true
	}
	return false
}

// PurchaseStatus represents the lifecycle state of a purchase order
type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "PENDING"
	PurchaseStatusReceived  PurchaseStatus = "RECEIVED"
	PurchaseStatusCancelled PurchaseStatus = "CANCELLED"
)

func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusPending, PurchaseStatusReceived, PurchaseStatusCancelled:
		return true
	}
	return false
}

// InventoryRecord holds the current on-hand quantity of one product in one
// warehouse for one organization. Exactly one row exists per
// (organizationId, productId, warehouseId) key; the quantity equals the
// signed sum of the key's ledger entries. Quantity may go negative - the
// store never floors at zero.
type InventoryRecord struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string          `json:"organizationId" gorm:"type:varchar(255);not null;uniqueIndex:idx_inventory_org_product_warehouse"`
	ProductID      uuid.UUID       `json:"productId" gorm:"type:uuid;not null;uniqueIndex:idx_inventory_org_product_warehouse"`
	WarehouseID    uuid.UUID       `json:"warehouseId" gorm:"type:uuid;not null;uniqueIndex:idx_inventory_org_product_warehouse"`
	Quantity       int             `json:"quantity" gorm:"not null;default:0"`
	AvgCostPrice   decimal.Decimal `json:"avgCostPrice" gorm:"type:decimal(12,2);not null;default:0"`
	LastUpdated    time.Time       `json:"lastUpdated"`

	Product   *Product   `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Warehouse *Warehouse `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
}

func (r *InventoryRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// StockLedgerEntry is an immutable record of a single quantity change.
// Quantity stores the unsigned magnitude; direction is implied by the
// movement type (and, for ADJUSTMENT, by the referenced adjustment's type).
// Entries are never updated or deleted.
type StockLedgerEntry struct {
	ID             uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string       `json:"organizationId" gorm:"type:varchar(255);not null;index:idx_ledger_org_key"`
	ProductID      uuid.UUID    `json:"productId" gorm:"type:uuid;not null;index:idx_ledger_org_key"`
	WarehouseID    uuid.UUID    `json:"warehouseId" gorm:"type:uuid;not null;index:idx_ledger_org_key"`
	MovementType   MovementType `json:"movementType" gorm:"type:varchar(20);not null"`
	Quantity       int          `json:"quantity" gorm:"not null"`
	ReferenceID    uuid.UUID    `json:"referenceId" gorm:"type:uuid;not null;index"`
	ReferenceType  string       `json:"referenceType" gorm:"type:varchar(50);not null"`
	Remarks        string       `json:"remarks" gorm:"type:text"`
	CreatedAt      time.Time    `json:"createdAt" gorm:"index"`
}

func (e *StockLedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// StockAdjustment records a manual correction request. Immutable once
// applied as far as the ledger is concerned: updating or deleting an
// adjustment does not rewrite the ledger entries it produced.
type StockAdjustment struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	AdjustmentNumber string         `json:"adjustmentNumber" gorm:"type:varchar(50);not null;index"`
	AdjustmentDate   time.Time      `json:"adjustmentDate"`
	OrganizationID   string         `json:"organizationId" gorm:"type:varchar(255);not null;index"`
	ProductID        uuid.UUID      `json:"productId" gorm:"type:uuid;not null;index"`
	WarehouseID      uuid.UUID      `json:"warehouseId" gorm:"type:uuid;not null;index"`
	AdjustmentType   AdjustmentType `json:"adjustmentType" gorm:"type:varchar(20);not null"`
	Quantity         int            `json:"quantity" gorm:"not null"`
	Reason           string         `json:"reason" gorm:"type:text"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`

	Product   *Product   `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Warehouse *Warehouse `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
}

func (a *StockAdjustment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// StockTransfer records a movement of one product between two warehouses of
// the same organization. Created with status PENDING even though inventory
// is moved immediately.
type StockTransfer struct {
	ID              uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID  string         `json:"organizationId" gorm:"type:varchar(255);not null;index"`
	ProductID       uuid.UUID      `json:"productId" gorm:"type:uuid;not null;index"`
	FromWarehouseID uuid.UUID      `json:"fromWarehouseId" gorm:"type:uuid;not null;index"`
	ToWarehouseID   uuid.UUID      `json:"toWarehouseId" gorm:"type:uuid;not null;index"`
	Quantity        int            `json:"quantity" gorm:"not null"`
	TransferDate    time.Time      `json:"transferDate"`
	Reason          string         `json:"reason" gorm:"type:text"`
	Status          TransferStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`

	FromWarehouse *Warehouse `json:"fromWarehouse,omitempty" gorm:"foreignKey:FromWarehouseID"`
	ToWarehouse   *Warehouse `json:"toWarehouse,omitempty" gorm:"foreignKey:ToWarehouseID"`
}

func (t *StockTransfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Warehouse is a named storage location belonging to an organization
type Warehouse struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string    `json:"organizationId" gorm:"type:varchar(255);not null;index"`
	Name           string    `json:"name" gorm:"type:varchar(255);not null"`
	Address        string    `json:"address" gorm:"type:text"`
	IsDefault      bool      `json:"isDefault" gorm:"default:false"`
	IsActive       bool      `json:"isActive" gorm:"default:true"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (w *Warehouse) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Product is the catalog entry stock is tracked against. MinStockLevel
// drives low-stock alerting (strict less-than comparison; 0 means the
// product never alerts).
type Product struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID string          `json:"organizationId" gorm:"type:varchar(255);not null;uniqueIndex:idx_products_org_code"`
	Code           string          `json:"code" gorm:"type:varchar(50);not null;uniqueIndex:idx_products_org_code"`
	Name           string          `json:"name" gorm:"type:varchar(255);not null"`
	Brand          string          `json:"brand,omitempty" gorm:"type:varchar(255)"`
	Category       string          `json:"category,omitempty" gorm:"type:varchar(255)"`
	Unit           string          `json:"unit" gorm:"type:varchar(50)"`
	HSNCode        string          `json:"hsnCode,omitempty" gorm:"type:varchar(20)"`
	GSTPercentage  decimal.Decimal `json:"gstPercentage" gorm:"type:decimal(5,2);not null;default:0"`
	RetailRate     decimal.Decimal `json:"retailRate" gorm:"type:decimal(12,2);not null;default:0"`
	WholesaleRate  decimal.Decimal `json:"wholesaleRate" gorm:"type:decimal(12,2);not null;default:0"`
	MinStockLevel  int             `json:"minStockLevel" gorm:"not null;default:0"`
	IsActive       bool            `json:"isActive" gorm:"default:true"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Purchase is a supplier invoice whose receipt increases inventory
type Purchase struct {
	ID                    uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrganizationID        string          `json:"organizationId" gorm:"type:varchar(255);not null;index"`
	InvoiceNumber         string          `json:"invoiceNumber" gorm:"type:varchar(50);not null"`
	SupplierInvoiceNumber string          `json:"supplierInvoiceNumber,omitempty" gorm:"type:varchar(50)"`
	PurchaseDate          time.Time       `json:"purchaseDate"`
	SupplierID            string          `json:"supplierId" gorm:"type:varchar(255);not null;index"`
	Subtotal              decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null;default:0"`
	CGST                  decimal.Decimal `json:"cgst" gorm:"type:decimal(12,2);not null;default:0"`
	SGST                  decimal.Decimal `json:"sgst" gorm:"type:decimal(12,2);not null;default:0"`
	IGST                  decimal.Decimal `json:"igst" gorm:"type:decimal(12,2);not null;default:0"`
	Freight               decimal.Decimal `json:"freight" gorm:"type:decimal(12,2);not null;default:0"`
	OtherCharges          decimal.Decimal `json:"otherCharges" gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount           decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null;default:0"`
	Status                PurchaseStatus  `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	Notes                 string          `json:"notes,omitempty" gorm:"type:text"`
	ReceivedDate          *time.Time      `json:"receivedDate,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`

	Items []PurchaseItem `json:"items,omitempty" gorm:"foreignKey:PurchaseID"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PurchaseItem is a line on a purchase invoice
type PurchaseItem struct {
	ID               uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	PurchaseID       uuid.UUID       `json:"purchaseId" gorm:"type:uuid;not null;index"`
	OrganizationID   string          `json:"organizationId" gorm:"type:varchar(255);not null;index"`
	ProductID        uuid.UUID       `json:"productId" gorm:"type:uuid;not null;index"`
	Quantity         int             `json:"quantity" gorm:"not null"`
	Rate             decimal.Decimal `json:"rate" gorm:"type:decimal(12,2);not null;default:0"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null;default:0"`
	GSTAmount        decimal.Decimal `json:"gstAmount" gorm:"type:decimal(12,2);not null;default:0"`
	ReceivedQuantity int             `json:"receivedQuantity" gorm:"not null;default:0"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (i *PurchaseItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName implementations
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

func (StockLedgerEntry) TableName() string {
	return "stock_ledger_entries"
}

func (StockAdjustment) TableName() string {
	return "stock_adjustments"
}

func (StockTransfer) TableName() string {
	return "stock_transfers"
}

func (Warehouse) TableName() string {
	return "warehouses"
}

func (Product) TableName() string {
	return "products"
}

func (Purchase) TableName() string {
	return "purchases"
}

func (PurchaseItem) TableName() string {
	return "purchase_items"
}
