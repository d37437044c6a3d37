package app_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AliAsger25/TFWTest/internal/app"
	"github.com/AliAsger25/TFWTest/internal/core"
	"github.com/AliAsger25/TFWTest/internal/notify"
)

type stubProducts struct {
	createFn func(ctx context.Context, code, name string, price, retailPrice decimal.Decimal, stock int) (*core.Product, error)
	updateFn func(ctx context.Context, code string, patch core.ProductPatch) (*core.Product, error)
}

func (s *stubProducts) CreateProduct(ctx context.Context, code, name string, price, retailPrice decimal.Decimal, stock int) (*core.Product, error) {
	return s.createFn(ctx, code, name, price, retailPrice, stock)
}

func (s *stubProducts) GetProduct(ctx context.Context, code string) (*core.Product, error) {
	return nil, core.ErrProductNotFound
}

func (s *stubProducts) ListProducts(ctx context.Context) ([]core.Product, error) {
	return nil, nil
}

func (s *stubProducts) SearchProducts(ctx context.Context, query string) ([]core.Product, error) {
	return nil, nil
}

func (s *stubProducts) UpdateProduct(ctx context.Context, code string, patch core.ProductPatch) (*core.Product, error) {
	return s.updateFn(ctx, code, patch)
}

func (s *stubProducts) DeleteProduct(ctx context.Context, code string) error {
	return nil
}

type stubBills struct {
	createFn func(ctx context.Context, customerName, customerPhone, date string, items []core.BillItemInput, discount decimal.Decimal) (*core.Bill, error)
	updateFn func(ctx context.Context, invoiceNo int, customerName, customerPhone string, items []core.BillItemInput, discount decimal.Decimal) (*core.Bill, error)
}

func (s *stubBills) CreateBill(ctx context.Context, customerName, customerPhone, date string, items []core.BillItemInput, discount decimal.Decimal) (*core.Bill, error) {
	return s.createFn(ctx, customerName, customerPhone, date, items, discount)
}

func (s *stubBills) UpdateBill(ctx context.Context, invoiceNo int, customerName, customerPhone string, items []core.BillItemInput, discount decimal.Decimal) (*core.Bill, error) {
	return s.updateFn(ctx, invoiceNo, customerName, customerPhone, items, discount)
}

func (s *stubBills) DeleteBill(ctx context.Context, invoiceNo int) error { return nil }

func (s *stubBills) GetBill(ctx context.Context, invoiceNo int) (*core.Bill, error) {
	return nil, core.ErrBillNotFound
}

func (s *stubBills) ListBills(ctx context.Context) ([]core.Bill, error) { return nil, nil }

func (s *stubBills) ClassifyBill(ctx context.Context, invoiceNo int) (core.BillType, error) {
	return core.BillTypeRetail, nil
}

type stubNotifier struct {
	calls chan notify.Channel
}

func (s *stubNotifier) SendThankYou(ctx context.Context, channel notify.Channel, phone string, bill *core.Bill) error {
	s.calls <- channel
	return nil
}

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(products *stubProducts, bills *stubBills, notifier *stubNotifier) app.ApplicationService {
	if products == nil {
		products = &stubProducts{}
	}
	if bills == nil {
		bills = &stubBills{}
	}
	if notifier == nil {
		notifier = &stubNotifier{calls: make(chan notify.Channel, 4)}
	}
	return app.NewAppService(products, bills, notifier, quietLog())
}

func TestCreateProduct_Validation(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  app.CreateProductRequest
	}{
		{"missing code", app.CreateProductRequest{Name: "Rocket", Stock: 1}},
		{"missing name", app.CreateProductRequest{Code: "F100", Stock: 1}},
		{"negative stock", app.CreateProductRequest{Code: "F100", Name: "Rocket", Stock: -1}},
		{"negative price", app.CreateProductRequest{Code: "F100", Name: "Rocket", Price: decimal.NewFromInt(-5)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(ctx, tc.req)
			assert.ErrorIs(t, err, app.ErrValidation)
		})
	}
}

func TestCreateProduct_PassesThrough(t *testing.T) {
	products := &stubProducts{
		createFn: func(ctx context.Context, code, name string, price, retailPrice decimal.Decimal, stock int) (*core.Product, error) {
			assert.Equal(t, "F100", code)
			assert.Equal(t, "Rocket", name)
			assert.Equal(t, 20, stock)
			return &core.Product{Code: code, Name: name, Price: price, RetailPrice: retailPrice, Stock: stock}, nil
		},
	}
	svc := newTestService(products, nil, nil)

	p, err := svc.CreateProduct(context.Background(), app.CreateProductRequest{
		Code:        "F100",
		Name:        "Rocket",
		Price:       decimal.NewFromInt(50),
		RetailPrice: decimal.NewFromInt(70),
		Stock:       20,
	})
	require.NoError(t, err)
	assert.Equal(t, "F100", p.Code)
}

func TestUpdateProduct_PartialPatch(t *testing.T) {
	products := &stubProducts{
		updateFn: func(ctx context.Context, code string, patch core.ProductPatch) (*core.Product, error) {
			assert.Nil(t, patch.Name)
			assert.Nil(t, patch.RetailPrice)
			require.NotNil(t, patch.Stock)
			assert.Equal(t, 30, *patch.Stock)
			return &core.Product{Code: code, Stock: *patch.Stock}, nil
		},
	}
	svc := newTestService(products, nil, nil)

	stock := 30
	_, err := svc.UpdateProduct(context.Background(), "F100", app.UpdateProductRequest{Stock: &stock})
	require.NoError(t, err)
}

func TestCreateBill_Validation(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		req  app.CreateBillRequest
	}{
		{"no items", app.CreateBillRequest{}},
		{"zero qty", app.CreateBillRequest{Items: []app.BillItemRequest{{Code: "F100", Qty: 0}}}},
		{"missing code", app.CreateBillRequest{Items: []app.BillItemRequest{{Qty: 1}}}},
		{"bad date", app.CreateBillRequest{Date: "20-10-2025", Items: []app.BillItemRequest{{Code: "F100", Qty: 1}}}},
		{"negative discount", app.CreateBillRequest{
			Items:    []app.BillItemRequest{{Code: "F100", Qty: 1}},
			Discount: decimal.NewFromInt(-1),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBill(ctx, tc.req)
			assert.ErrorIs(t, err, app.ErrValidation)
		})
	}
}

func TestCreateBill_DispatchesNotifications(t *testing.T) {
	bill := &core.Bill{InvoiceNo: 100, CustomerName: "Asha", CustomerPhone: "9876543210"}
	bills := &stubBills{
		createFn: func(ctx context.Context, customerName, customerPhone, date string, items []core.BillItemInput, discount decimal.Decimal) (*core.Bill, error) {
			require.Len(t, items, 1)
			assert.Equal(t, core.BillItemInput{Code: "F100", Qty: 2}, items[0])
			return bill, nil
		},
	}
	notifier := &stubNotifier{calls: make(chan notify.Channel, 4)}
	svc := newTestService(nil, bills, notifier)

	res, err := svc.CreateBill(context.Background(), app.CreateBillRequest{
		CustomerName:  "Asha",
		CustomerPhone: "9876543210",
		Items:         []app.BillItemRequest{{Code: "F100", Qty: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Bill.InvoiceNo)

	// Both channels fire in the background after the bill is returned.
	for _, want := range []notify.Channel{notify.ChannelSMS, notify.ChannelWhatsApp} {
		select {
		case got := <-notifier.calls:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatalf("Timed out waiting for %s notification", want)
		}
	}
}

func TestCreateBill_NoPhoneNoNotification(t *testing.T) {
	bills := &stubBills{
		createFn: func(ctx context.Context, customerName, customerPhone, date string, items []core.BillItemInput, discount decimal.Decimal) (*core.Bill, error) {
			return &core.Bill{InvoiceNo: 100}, nil
		},
	}
	notifier := &stubNotifier{calls: make(chan notify.Channel, 4)}
	svc := newTestService(nil, bills, notifier)

	_, err := svc.CreateBill(context.Background(), app.CreateBillRequest{
		Items: []app.BillItemRequest{{Code: "F100", Qty: 1}},
	})
	require.NoError(t, err)

	select {
	case ch := <-notifier.calls:
		t.Errorf("Unexpected notification on channel %s", ch)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCreateBill_CoreErrorsPassThrough(t *testing.T) {
	bills := &stubBills{
		createFn: func(ctx context.Context, customerName, customerPhone, date string, items []core.BillItemInput, discount decimal.Decimal) (*core.Bill, error) {
			return nil, &core.StockError{Code: "F100", Available: 2, Requested: 5}
		},
	}
	svc := newTestService(nil, bills, nil)

	_, err := svc.CreateBill(context.Background(), app.CreateBillRequest{
		Items: []app.BillItemRequest{{Code: "F100", Qty: 5}},
	})
	assert.ErrorIs(t, err, core.ErrInsufficientStock)
	assert.False(t, errors.Is(err, app.ErrValidation))
}

func TestUpdateBill_IgnoresClientGrandTotal(t *testing.T) {
	bills := &stubBills{
		updateFn: func(ctx context.Context, invoiceNo int, customerName, customerPhone string, items []core.BillItemInput, discount decimal.Decimal) (*core.Bill, error) {
			// The recomputed total comes from the items, never the payload.
			return &core.Bill{InvoiceNo: invoiceNo, GrandTotal: decimal.NewFromInt(140)}, nil
		},
	}
	svc := newTestService(nil, bills, nil)

	res, err := svc.UpdateBill(context.Background(), 100, app.UpdateBillRequest{
		Items:      []app.BillItemRequest{{Code: "F100", Qty: 2, Price: decimal.NewFromInt(70)}},
		GrandTotal: decimal.NewFromInt(9999),
	})
	require.NoError(t, err)
	assert.True(t, res.Bill.GrandTotal.Equal(decimal.NewFromInt(140)))
}
