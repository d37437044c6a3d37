package app

import (
	"context"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/AliAsger25/TFWTest/internal/core"
	"github.com/AliAsger25/TFWTest/internal/notify"
)

type appService struct {
	products core.ProductService
	bills    core.BillService
	notifier notify.Notifier
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	products core.ProductService,
	bills core.BillService,
	notifier notify.Notifier,
	log logrus.FieldLogger,
) ApplicationService {
	return &appService{
		products: products,
		bills:    bills,
		notifier: notifier,
		validate: newValidator(),
		log:      log,
	}
}

// newValidator builds a validator that understands decimal.Decimal fields,
// so numeric tags like gte=0 apply to money amounts.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

func (s *appService) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ── Products ─────────────────────────────────────────────────────────────────

func (s *appService) CreateProduct(ctx context.Context, req CreateProductRequest) (*core.Product, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	return s.products.CreateProduct(ctx, req.Code, req.Name, req.Price, req.RetailPrice, req.Stock)
}

func (s *appService) GetProduct(ctx context.Context, code string) (*core.Product, error) {
	return s.products.GetProduct(ctx, code)
}

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) SearchProducts(ctx context.Context, query string) (*ProductListResult, error) {
	products, err := s.products.SearchProducts(ctx, query)
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) UpdateProduct(ctx context.Context, code string, req UpdateProductRequest) (*core.Product, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	patch := core.ProductPatch{
		Name:        req.Name,
		Price:       req.Price,
		RetailPrice: req.RetailPrice,
		Stock:       req.Stock,
	}
	return s.products.UpdateProduct(ctx, code, patch)
}

func (s *appService) DeleteProduct(ctx context.Context, code string) error {
	return s.products.DeleteProduct(ctx, code)
}

// ── Bills ────────────────────────────────────────────────────────────────────

func (s *appService) CreateBill(ctx context.Context, req CreateBillRequest) (*BillResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	bill, err := s.bills.CreateBill(ctx, req.CustomerName, req.CustomerPhone, req.Date,
		toItemInputs(req.Items), req.Discount)
	if err != nil {
		return nil, err
	}

	// Fire-and-forget: the bill is committed whatever happens to the sends.
	notify.Dispatch(s.notifier, s.log, bill.CustomerPhone, bill)

	return &BillResult{Bill: bill}, nil
}

func (s *appService) GetBill(ctx context.Context, invoiceNo int) (*BillResult, error) {
	bill, err := s.bills.GetBill(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	return &BillResult{Bill: bill}, nil
}

func (s *appService) ListBills(ctx context.Context) (*BillListResult, error) {
	bills, err := s.bills.ListBills(ctx)
	if err != nil {
		return nil, err
	}
	return &BillListResult{Bills: bills}, nil
}

func (s *appService) UpdateBill(ctx context.Context, invoiceNo int, req UpdateBillRequest) (*BillResult, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}
	bill, err := s.bills.UpdateBill(ctx, invoiceNo, req.CustomerName, req.CustomerPhone,
		toItemInputs(req.Items), req.Discount)
	if err != nil {
		return nil, err
	}
	return &BillResult{Bill: bill}, nil
}

func (s *appService) DeleteBill(ctx context.Context, invoiceNo int) error {
	return s.bills.DeleteBill(ctx, invoiceNo)
}

func (s *appService) ClassifyBill(ctx context.Context, invoiceNo int) (*BillTypeResult, error) {
	billType, err := s.bills.ClassifyBill(ctx, invoiceNo)
	if err != nil {
		return nil, err
	}
	return &BillTypeResult{Type: billType}, nil
}

func toItemInputs(items []BillItemRequest) []core.BillItemInput {
	inputs := make([]core.BillItemInput, len(items))
	for i, it := range items {
		inputs[i] = core.BillItemInput{Code: it.Code, Qty: it.Qty, Price: it.Price}
	}
	return inputs
}
