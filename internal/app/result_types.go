package app

import "github.com/AliAsger25/TFWTest/internal/core"

// ProductListResult wraps a product list for adapters.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// BillResult wraps a single bill.
type BillResult struct {
	Bill *core.Bill `json:"bill"`
}

// BillListResult wraps a bill list, newest first.
type BillListResult struct {
	Bills []core.Bill `json:"bills"`
}

// BillTypeResult reports the retail/wholesale classification of a bill.
type BillTypeResult struct {
	Type core.BillType `json:"type"`
}
