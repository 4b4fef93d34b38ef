package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request models

type AdjustStockRequest struct {
	ProductID      uuid.UUID      `json:"productId" binding:"required"`
	WarehouseID    uuid.UUID      `json:"warehouseId" binding:"required"`
	Quantity       int            `json:"quantity" binding:"required,gt=0"`
	AdjustmentType AdjustmentType `json:"adjustmentType" binding:"required"`
	Reason         string         `json:"reason,omitempty"`
}

type TransferStockRequest struct {
	ProductID       uuid.UUID `json:"productId" binding:"required"`
	FromWarehouseID uuid.UUID `json:"fromWarehouseId" binding:"required"`
	ToWarehouseID   uuid.UUID `json:"toWarehouseId" binding:"required"`
	Quantity        int       `json:"quantity" binding:"required,gt=0"`
	Reason          string    `json:"reason,omitempty"`
}

type UpdateTransferStatusRequest struct {
	Status TransferStatus `json:"status" binding:"required"`
}

type UpdateAdjustmentRequest struct {
	Quantity       *int            `json:"quantity,omitempty"`
	AdjustmentType *AdjustmentType `json:"adjustmentType,omitempty"`
	Reason         *string         `json:"reason,omitempty"`
}

type ReceivePurchaseItem struct {
	ProductID        uuid.UUID `json:"productId" binding:"required"`
	WarehouseID      uuid.UUID `json:"warehouseId" binding:"required"`
	ReceivedQuantity int       `json:"receivedQuantity" binding:"required,gt=0"`
}

type ReceivePurchaseRequest struct {
	Items []ReceivePurchaseItem `json:"items" binding:"required,min=1,dive"`
}

type CreatePurchaseItemRequest struct {
	ProductID uuid.UUID       `json:"productId" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Rate      decimal.Decimal `json:"rate"`
	Amount    decimal.Decimal `json:"amount"`
	GSTAmount decimal.Decimal `json:"gstAmount"`
}

type CreatePurchaseRequest struct {
	InvoiceNumber         string                      `json:"invoiceNumber" binding:"required"`
	SupplierInvoiceNumber string                      `json:"supplierInvoiceNumber,omitempty"`
	PurchaseDate          time.Time                   `json:"purchaseDate" binding:"required"`
	SupplierID            string                      `json:"supplierId" binding:"required"`
	Subtotal              decimal.Decimal             `json:"subtotal"`
	CGST                  decimal.Decimal             `json:"cgst"`
	SGST                  decimal.Decimal             `json:"sgst"`
	IGST                  decimal.Decimal             `json:"igst"`
	Freight               decimal.Decimal             `json:"freight"`
	OtherCharges          decimal.Decimal             `json:"otherCharges"`
	TotalAmount           decimal.Decimal             `json:"totalAmount"`
	Notes                 string                      `json:"notes,omitempty"`
	Items                 []CreatePurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdatePurchaseStatusRequest struct {
	Status PurchaseStatus `json:"status" binding:"required"`
}

type CreateWarehouseRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=255"`
	Address   string `json:"address,omitempty"`
	IsDefault *bool  `json:"isDefault,omitempty"`
}

type UpdateWarehouseRequest struct {
	Name      *string `json:"name,omitempty"`
	Address   *string `json:"address,omitempty"`
	IsDefault *bool   `json:"isDefault,omitempty"`
	IsActive  *bool   `json:"isActive,omitempty"`
}

type CreateProductRequest struct {
	Code          string           `json:"code" binding:"required,min=1,max=50"`
	Name          string           `json:"name" binding:"required,min=1,max=255"`
	Brand         string           `json:"brand,omitempty"`
	Category      string           `json:"category,omitempty"`
	Unit          string           `json:"unit,omitempty"`
	HSNCode       string           `json:"hsnCode,omitempty"`
	GSTPercentage *decimal.Decimal `json:"gstPercentage,omitempty"`
	RetailRate    *decimal.Decimal `json:"retailRate,omitempty"`
	WholesaleRate *decimal.Decimal `json:"wholesaleRate,omitempty"`
	MinStockLevel *int             `json:"minStockLevel,omitempty"`
}

type UpdateProductRequest struct {
	Name          *string          `json:"name,omitempty"`
	Brand         *string          `json:"brand,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Unit          *string          `json:"unit,omitempty"`
	HSNCode       *string          `json:"hsnCode,omitempty"`
	GSTPercentage *decimal.Decimal `json:"gstPercentage,omitempty"`
	RetailRate    *decimal.Decimal `json:"retailRate,omitempty"`
	WholesaleRate *decimal.Decimal `json:"wholesaleRate,omitempty"`
	MinStockLevel *int             `json:"minStockLevel,omitempty"`
	IsActive      *bool            `json:"isActive,omitempty"`
}

// LedgerFilter narrows a ledger listing. OrganizationID is always required;
// the rest are optional.
type LedgerFilter struct {
	ProductID   *uuid.UUID
	WarehouseID *uuid.UUID
	FromDate    *time.Time
	ToDate      *time.Time
	Page        int
	Limit       int
}

// Report models

// LowStockAlert pairs a product with its current quantity at the scope the
// report was run for.
type LowStockAlert struct {
	Product         Product   `json:"product"`
	WarehouseID     uuid.UUID `json:"warehouseId"`
	CurrentQuantity int       `json:"currentQuantity"`
	MinStockLevel   int       `json:"minStockLevel"`
}

// StockValuation is the valuation report: totalValue is the sum over scope
// of quantity x avgCostPrice. Negative quantities reduce the total.
type StockValuation struct {
	TotalValue  decimal.Decimal   `json:"totalValue"`
	Inventories []InventoryRecord `json:"inventories"`
}

// DayEndStock is the day-end stock summary for an organization
type DayEndStock struct {
	AsOf        time.Time         `json:"asOf"`
	Inventories []InventoryRecord `json:"inventories"`
}

// LedgerAudit compares an inventory record's quantity with the signed sum
// of its ledger entries replayed from zero.
type LedgerAudit struct {
	OrganizationID string    `json:"organizationId"`
	ProductID      uuid.UUID `json:"productId"`
	WarehouseID    uuid.UUID `json:"warehouseId"`
	RecordQuantity int       `json:"recordQuantity"`
	LedgerQuantity int       `json:"ledgerQuantity"`
	EntryCount     int       `json:"entryCount"`
	Consistent     bool      `json:"consistent"`
}

// Response envelopes

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}

type ListResponse struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
}

// PaginationMeta carries pagination metadata on list responses
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}
