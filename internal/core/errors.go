package core

import (
	"errors"
	"fmt"
)

// Sentinel errors let callers branch on specific business failures with
// errors.Is regardless of the wrapping detail.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrBillNotFound      = errors.New("bill not found")
	ErrDuplicateCode     = errors.New("product code already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
)

// StockError wraps ErrInsufficientStock with the offending code and the
// quantities involved.
type StockError struct {
	Code      string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, required %d",
		e.Code, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// QuantityError wraps ErrInvalidQuantity with the offending code and value.
type QuantityError struct {
	Code string
	Qty  int
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %s", e.Qty, e.Code)
}

func (e *QuantityError) Unwrap() error { return ErrInvalidQuantity }

// NotFoundError wraps ErrProductNotFound with the code that missed.
type NotFoundError struct {
	Code string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.Code)
}

func (e *NotFoundError) Unwrap() error { return ErrProductNotFound }
