package app

import (
	"github.com/shopspring/decimal"
)

// CreateProductRequest is the input for adding a catalog entry.
type CreateProductRequest struct {
	Code        string          `json:"code" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	RetailPrice decimal.Decimal `json:"retailPrice" validate:"gte=0"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// UpdateProductRequest carries optional product field updates. Absent fields
// are left unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	RetailPrice *decimal.Decimal `json:"retailPrice" validate:"omitempty,gte=0"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
}

// BillItemRequest is a requested line item. Price zero means "use the
// product's retail price"; the stored total is always recomputed as
// qty × price regardless of what the client sends.
type BillItemRequest struct {
	Code  string          `json:"code" validate:"required"`
	Qty   int             `json:"qty" validate:"required,gt=0"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
}

// CreateBillRequest is the input for creating a bill.
type CreateBillRequest struct {
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	Date          string            `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Items         []BillItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount      decimal.Decimal   `json:"discount" validate:"gte=0"`
}

// UpdateBillRequest is the input for editing a bill. GrandTotal is accepted
// for wire compatibility with older clients but ignored: the stored grand
// total is recomputed from the items and discount.
type UpdateBillRequest struct {
	CustomerName  string            `json:"customerName"`
	CustomerPhone string            `json:"customerPhone"`
	Items         []BillItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount      decimal.Decimal   `json:"discount" validate:"gte=0"`
	GrandTotal    decimal.Decimal   `json:"grandTotal"`
}
