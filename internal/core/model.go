package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is an inventory item with a wholesale and a retail price tier.
// Stock is kept consistent with bill line items by BillService; it never
// goes negative after a committed operation.
type Product struct {
	ID          int             `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`       // wholesale unit price
	RetailPrice decimal.Decimal `json:"retailPrice"` // retail unit price
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductPatch carries optional field updates for a product. Nil fields are
// left unchanged.
type ProductPatch struct {
	Name        *string
	Price       *decimal.Decimal
	RetailPrice *decimal.Decimal
	Stock       *int
}

// Bill is a persisted sales invoice. Items are stored (and always returned)
// in ascending code order using a numeric-aware comparison.
type Bill struct {
	InvoiceNo     int             `json:"invoiceNo"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	Date          string          `json:"date"` // YYYY-MM-DD
	Items         []BillItem      `json:"items"`
	Discount      decimal.Decimal `json:"discount"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// BillItem is one line on a bill. Name and Price are snapshots taken at
// write time; they do not track later product edits.
type BillItem struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
	Total decimal.Decimal `json:"total"` // qty × price, computed server-side
}

// BillItemInput is a requested line when creating or updating a bill.
// A zero Price means "use the product's retail price".
type BillItemInput struct {
	Code  string
	Qty   int
	Price decimal.Decimal
}

// BillType routes the edit UI: a bill is retail when every line was sold at
// the product's current retail price, wholesale otherwise.
type BillType string

const (
	BillTypeRetail    BillType = "retail"
	BillTypeWholesale BillType = "wholesale"
)

// firstInvoiceNo is the number assigned to the first bill ever created.
const firstInvoiceNo = 100
