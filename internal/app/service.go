package app

import (
	"context"
	"errors"

	"github.com/AliAsger25/TFWTest/internal/core"
)

// ErrValidation marks a request that failed payload validation before
// reaching the domain services. Adapters map it to a 400-class response.
var ErrValidation = errors.New("validation failed")

// ApplicationService is the single interface all transport adapters call.
// It decouples presentation from business logic: every inbound payload is
// validated here against an explicit request struct before any core call.
type ApplicationService interface {
	// CreateProduct adds a catalog entry. Fails with core.ErrDuplicateCode
	// on a code collision.
	CreateProduct(ctx context.Context, req CreateProductRequest) (*core.Product, error)

	// GetProduct returns a single product by its code.
	GetProduct(ctx context.Context, code string) (*core.Product, error)

	// ListProducts returns the full catalog in code order.
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// SearchProducts does a case-insensitive substring match over code and
	// name, capped at 20 results.
	SearchProducts(ctx context.Context, query string) (*ProductListResult, error)

	// UpdateProduct applies the non-nil fields of the request to a product.
	UpdateProduct(ctx context.Context, code string, req UpdateProductRequest) (*core.Product, error)

	// DeleteProduct removes a product. Existing bills keep their snapshots.
	DeleteProduct(ctx context.Context, code string) error

	// CreateBill validates items against stock, decrements inventory,
	// persists the bill, and fires thank-you notifications when a customer
	// phone is present. Notification failures never surface here.
	CreateBill(ctx context.Context, req CreateBillRequest) (*BillResult, error)

	// GetBill returns a bill with items in code-ascending order.
	GetBill(ctx context.Context, invoiceNo int) (*BillResult, error)

	// ListBills returns all bills, newest invoice number first.
	ListBills(ctx context.Context) (*BillListResult, error)

	// UpdateBill replaces a bill's contents, adjusting stock by the per-code
	// quantity delta. The invoice number never changes.
	UpdateBill(ctx context.Context, invoiceNo int, req UpdateBillRequest) (*BillResult, error)

	// DeleteBill removes a bill and restores stock for every line item.
	DeleteBill(ctx context.Context, invoiceNo int) error

	// ClassifyBill reports whether a bill was sold at retail prices.
	ClassifyBill(ctx context.Context, invoiceNo int) (*BillTypeResult, error)
}
