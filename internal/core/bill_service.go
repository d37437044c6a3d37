package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BillService manages the bill lifecycle and keeps product stock consistent
// with bill line items. Every mutation runs in a single transaction: the
// referenced product rows are locked in deterministic code order, all items
// are validated, and only then is any stock adjusted. A failure anywhere
// rolls back the whole operation, so stock is never partially applied.
type BillService interface {
	// CreateBill validates every item against current stock, assigns the
	// next invoice number, decrements stock, and persists the bill with its
	// items sorted by code.
	CreateBill(ctx context.Context, customerName, customerPhone, date string, items []BillItemInput, discount decimal.Decimal) (*Bill, error)
	// UpdateBill replaces the bill's items, adjusting stock by the per-code
	// delta between old and new quantities. The invoice number never changes.
	UpdateBill(ctx context.Context, invoiceNo int, customerName, customerPhone string, items []BillItemInput, discount decimal.Decimal) (*Bill, error)
	// DeleteBill restores stock for every line item and removes the bill.
	DeleteBill(ctx context.Context, invoiceNo int) error

	GetBill(ctx context.Context, invoiceNo int) (*Bill, error)
	// ListBills returns all bills, newest invoice number first.
	ListBills(ctx context.Context) ([]Bill, error)
	// ClassifyBill reports retail when every item's stored price equals the
	// product's current retail price; any mismatch or missing product means
	// wholesale.
	ClassifyBill(ctx context.Context, invoiceNo int) (BillType, error)
}

type billService struct {
	pool *pgxpool.Pool
}

func NewBillService(pool *pgxpool.Pool) BillService {
	return &billService{pool: pool}
}

// lockedProduct is a product row held under FOR UPDATE for the duration of
// a bill transaction.
type lockedProduct struct {
	name        string
	retailPrice decimal.Decimal
	stock       int
}

// lockProducts takes FOR UPDATE locks on the given codes in collation order
// and returns the locked rows. Codes without a product row are simply absent
// from the result; callers decide whether that is an error.
func lockProducts(ctx context.Context, tx pgx.Tx, codes []string) (map[string]lockedProduct, error) {
	locked := make(map[string]lockedProduct, len(codes))
	for _, code := range codes {
		var lp lockedProduct
		err := tx.QueryRow(ctx,
			"SELECT name, retail_price, stock FROM products WHERE code = $1 FOR UPDATE",
			code,
		).Scan(&lp.name, &lp.retailPrice, &lp.stock)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to lock product %s: %w", code, err)
		}
		locked[code] = lp
	}
	return locked, nil
}

// nextInvoiceNo advances the invoice sequence inside the caller's
// transaction. The single-row upsert serializes concurrent creations on the
// row lock, so numbers are unique and strictly increasing.
func nextInvoiceNo(ctx context.Context, tx pgx.Tx) (int, error) {
	var no int
	err := tx.QueryRow(ctx, `
		INSERT INTO bill_sequence (id, last_number)
		VALUES (TRUE, $1)
		ON CONFLICT (id) DO UPDATE SET last_number = bill_sequence.last_number + 1
		RETURNING last_number
	`, firstInvoiceNo).Scan(&no)
	if err != nil {
		return 0, fmt.Errorf("failed to advance invoice sequence: %w", err)
	}
	return no, nil
}

// qtyByCode aggregates requested quantities per product code, validating
// each quantity on the way.
func qtyByCode(items []BillItemInput) (map[string]int, error) {
	m := make(map[string]int, len(items))
	for _, it := range items {
		if it.Qty <= 0 {
			return nil, &QuantityError{Code: it.Code, Qty: it.Qty}
		}
		m[it.Code] += it.Qty
	}
	return m, nil
}

func (s *billService) CreateBill(ctx context.Context, customerName, customerPhone, date string, items []BillItemInput, discount decimal.Decimal) (*Bill, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("bill must have at least one item: %w", ErrInvalidQuantity)
	}
	required, err := qtyByCode(items)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Phase 1: lock and validate everything before touching stock.
	locked, err := lockProducts(ctx, tx, sortedCodes(required))
	if err != nil {
		return nil, err
	}
	for _, code := range sortedCodes(required) {
		lp, ok := locked[code]
		if !ok {
			return nil, &NotFoundError{Code: code}
		}
		if lp.stock < required[code] {
			return nil, &StockError{Code: code, Available: lp.stock, Requested: required[code]}
		}
	}

	invoiceNo, err := nextInvoiceNo(ctx, tx)
	if err != nil {
		return nil, err
	}

	// Phase 2: apply. Decrement per code, then persist the bill.
	for _, code := range sortedCodes(required) {
		if _, err := tx.Exec(ctx,
			"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE code = $2",
			required[code], code,
		); err != nil {
			return nil, fmt.Errorf("failed to deduct stock for product %s: %w", code, err)
		}
	}

	billItems := make([]BillItem, 0, len(items))
	for _, it := range items {
		lp := locked[it.Code]
		price := it.Price
		if price.IsZero() {
			price = lp.retailPrice
		}
		billItems = append(billItems, BillItem{
			Code:  it.Code,
			Name:  lp.name,
			Qty:   it.Qty,
			Price: price,
			Total: price.Mul(decimal.NewFromInt(int64(it.Qty))),
		})
	}
	sortItemsByCode(billItems)

	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	grandTotal := grandTotalOf(billItems, discount)

	if _, err := tx.Exec(ctx, `
		INSERT INTO bills (invoice_no, customer_name, customer_phone, bill_date, discount, grand_total)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, invoiceNo, customerName, customerPhone, date, discount, grandTotal); err != nil {
		return nil, fmt.Errorf("failed to insert bill: %w", err)
	}
	if err := insertItems(ctx, tx, invoiceNo, billItems); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit bill creation: %w", err)
	}

	return s.GetBill(ctx, invoiceNo)
}

func (s *billService) UpdateBill(ctx context.Context, invoiceNo int, customerName, customerPhone string, items []BillItemInput, discount decimal.Decimal) (*Bill, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("bill must have at least one item: %w", ErrInvalidQuantity)
	}
	newQty, err := qtyByCode(items)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the bill header so concurrent updates of the same bill serialize.
	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT TRUE FROM bills WHERE invoice_no = $1 FOR UPDATE", invoiceNo,
	).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bill %d: %w", invoiceNo, ErrBillNotFound)
		}
		return nil, fmt.Errorf("failed to lock bill %d: %w", invoiceNo, err)
	}

	oldItems, err := fetchItems(ctx, tx, invoiceNo)
	if err != nil {
		return nil, err
	}
	oldQty := make(map[string]int, len(oldItems))
	oldSnapshot := make(map[string]BillItem, len(oldItems))
	for _, it := range oldItems {
		oldQty[it.Code] += it.Qty
		oldSnapshot[it.Code] = it
	}

	// Delta per code over the union of old and new code sets. Positive means
	// additional units leave inventory, negative means units return to it.
	delta := make(map[string]int, len(oldQty)+len(newQty))
	for code, q := range newQty {
		delta[code] = q - oldQty[code]
	}
	for code, q := range oldQty {
		if _, seen := newQty[code]; !seen {
			delta[code] = -q
		}
	}

	// Phase 1: lock every affected product and validate all positive deltas.
	codes := sortedCodes(delta)
	locked, err := lockProducts(ctx, tx, codes)
	if err != nil {
		return nil, err
	}
	for _, code := range codes {
		d := delta[code]
		if d <= 0 {
			continue
		}
		lp, ok := locked[code]
		if !ok {
			return nil, &NotFoundError{Code: code}
		}
		if lp.stock < d {
			return nil, &StockError{Code: code, Available: lp.stock, Requested: d}
		}
	}

	// Phase 2: apply every non-zero delta. Codes whose product was deleted
	// can only appear here with a non-positive delta; restoring stock to a
	// removed product is a no-op.
	for _, code := range codes {
		d := delta[code]
		if d == 0 {
			continue
		}
		if _, ok := locked[code]; !ok {
			continue
		}
		if _, err := tx.Exec(ctx,
			"UPDATE products SET stock = stock - $1, updated_at = NOW() WHERE code = $2",
			d, code,
		); err != nil {
			return nil, fmt.Errorf("failed to adjust stock for product %s: %w", code, err)
		}
	}

	billItems := make([]BillItem, 0, len(items))
	for _, it := range items {
		name := it.Code
		price := it.Price
		if lp, ok := locked[it.Code]; ok {
			name = lp.name
			if price.IsZero() {
				price = lp.retailPrice
			}
		} else if old, ok := oldSnapshot[it.Code]; ok {
			// Product gone: keep the historical snapshot.
			name = old.Name
			if price.IsZero() {
				price = old.Price
			}
		}
		billItems = append(billItems, BillItem{
			Code:  it.Code,
			Name:  name,
			Qty:   it.Qty,
			Price: price,
			Total: price.Mul(decimal.NewFromInt(int64(it.Qty))),
		})
	}
	sortItemsByCode(billItems)
	grandTotal := grandTotalOf(billItems, discount)

	if _, err := tx.Exec(ctx, `
		UPDATE bills
		SET customer_name = $1, customer_phone = $2, discount = $3, grand_total = $4, updated_at = NOW()
		WHERE invoice_no = $5
	`, customerName, customerPhone, discount, grandTotal, invoiceNo); err != nil {
		return nil, fmt.Errorf("failed to update bill %d: %w", invoiceNo, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM bill_items WHERE invoice_no = $1", invoiceNo); err != nil {
		return nil, fmt.Errorf("failed to clear items for bill %d: %w", invoiceNo, err)
	}
	if err := insertItems(ctx, tx, invoiceNo, billItems); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit bill update: %w", err)
	}

	return s.GetBill(ctx, invoiceNo)
}

func (s *billService) DeleteBill(ctx context.Context, invoiceNo int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		"SELECT TRUE FROM bills WHERE invoice_no = $1 FOR UPDATE", invoiceNo,
	).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("bill %d: %w", invoiceNo, ErrBillNotFound)
		}
		return fmt.Errorf("failed to lock bill %d: %w", invoiceNo, err)
	}

	items, err := fetchItems(ctx, tx, invoiceNo)
	if err != nil {
		return err
	}

	// Restore stock per code. Restoring cannot go negative, so no validation
	// pass is needed; products deleted since the sale are skipped.
	restore := make(map[string]int, len(items))
	for _, it := range items {
		restore[it.Code] += it.Qty
	}
	for _, code := range sortedCodes(restore) {
		if _, err := tx.Exec(ctx,
			"UPDATE products SET stock = stock + $1, updated_at = NOW() WHERE code = $2",
			restore[code], code,
		); err != nil {
			return fmt.Errorf("failed to restore stock for product %s: %w", code, err)
		}
	}

	// Items cascade with the bill row.
	if _, err := tx.Exec(ctx, "DELETE FROM bills WHERE invoice_no = $1", invoiceNo); err != nil {
		return fmt.Errorf("failed to delete bill %d: %w", invoiceNo, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit bill deletion: %w", err)
	}
	return nil
}

// ── Queries ──────────────────────────────────────────────────────────────────

const billColumns = "invoice_no, customer_name, customer_phone, bill_date::text, discount, grand_total, created_at, updated_at"

func (s *billService) GetBill(ctx context.Context, invoiceNo int) (*Bill, error) {
	var b Bill
	err := s.pool.QueryRow(ctx,
		"SELECT "+billColumns+" FROM bills WHERE invoice_no = $1", invoiceNo,
	).Scan(&b.InvoiceNo, &b.CustomerName, &b.CustomerPhone, &b.Date, &b.Discount, &b.GrandTotal, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bill %d: %w", invoiceNo, ErrBillNotFound)
		}
		return nil, fmt.Errorf("failed to fetch bill %d: %w", invoiceNo, err)
	}

	items, err := fetchItems(ctx, s.pool, invoiceNo)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return &b, nil
}

func (s *billService) ListBills(ctx context.Context) ([]Bill, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+billColumns+" FROM bills ORDER BY invoice_no DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []Bill
	index := make(map[int]int)
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.InvoiceNo, &b.CustomerName, &b.CustomerPhone, &b.Date, &b.Discount, &b.GrandTotal, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		b.Items = []BillItem{}
		index[b.InvoiceNo] = len(bills)
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bills: %w", err)
	}

	itemRows, err := s.pool.Query(ctx, `
		SELECT invoice_no, code, name, qty, price, total
		FROM bill_items
		ORDER BY invoice_no DESC, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bill items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var no int
		var it BillItem
		if err := itemRows.Scan(&no, &it.Code, &it.Name, &it.Qty, &it.Price, &it.Total); err != nil {
			return nil, fmt.Errorf("failed to scan bill item: %w", err)
		}
		if i, ok := index[no]; ok {
			bills[i].Items = append(bills[i].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bill items: %w", err)
	}
	return bills, nil
}

func (s *billService) ClassifyBill(ctx context.Context, invoiceNo int) (BillType, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT bi.price, p.retail_price
		FROM bill_items bi
		LEFT JOIN products p ON p.code = bi.code
		WHERE bi.invoice_no = $1
	`, invoiceNo)
	if err != nil {
		return "", fmt.Errorf("failed to query items for bill %d: %w", invoiceNo, err)
	}
	defer rows.Close()

	found := false
	retail := true
	for rows.Next() {
		found = true
		var price decimal.Decimal
		var retailPrice *decimal.Decimal
		if err := rows.Scan(&price, &retailPrice); err != nil {
			return "", fmt.Errorf("failed to scan item price: %w", err)
		}
		if retailPrice == nil || !price.Equal(*retailPrice) {
			retail = false
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating item prices: %w", err)
	}

	if !found {
		// No items means either the bill is absent or was stored empty;
		// only the former is possible through this service.
		var exists bool
		err := s.pool.QueryRow(ctx,
			"SELECT TRUE FROM bills WHERE invoice_no = $1", invoiceNo,
		).Scan(&exists)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("bill %d: %w", invoiceNo, ErrBillNotFound)
		}
		if err != nil {
			return "", fmt.Errorf("failed to fetch bill %d: %w", invoiceNo, err)
		}
	}

	if retail {
		return BillTypeRetail, nil
	}
	return BillTypeWholesale, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func fetchItems(ctx context.Context, q pgxQuerier, invoiceNo int) ([]BillItem, error) {
	rows, err := q.Query(ctx, `
		SELECT code, name, qty, price, total
		FROM bill_items
		WHERE invoice_no = $1
		ORDER BY position
	`, invoiceNo)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for bill %d: %w", invoiceNo, err)
	}
	defer rows.Close()

	var items []BillItem
	for rows.Next() {
		var it BillItem
		if err := rows.Scan(&it.Code, &it.Name, &it.Qty, &it.Price, &it.Total); err != nil {
			return nil, fmt.Errorf("failed to scan bill item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bill items: %w", err)
	}
	return items, nil
}

func insertItems(ctx context.Context, tx pgx.Tx, invoiceNo int, items []BillItem) error {
	for i, it := range items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO bill_items (invoice_no, position, code, name, qty, price, total)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, invoiceNo, i+1, it.Code, it.Name, it.Qty, it.Price, it.Total); err != nil {
			return fmt.Errorf("failed to insert item %s on bill %d: %w", it.Code, invoiceNo, err)
		}
	}
	return nil
}

// grandTotalOf computes Σ(item totals) − discount. Totals are always derived
// server-side; client-supplied totals are never persisted.
func grandTotalOf(items []BillItem, discount decimal.Decimal) decimal.Decimal {
	var sum decimal.Decimal
	for _, it := range items {
		sum = sum.Add(it.Total)
	}
	return sum.Sub(discount)
}
