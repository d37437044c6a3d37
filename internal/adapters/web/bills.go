package web

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/AliAsger25/TFWTest/internal/app"
)

// invoiceNoParam parses the {invoiceNo} URL parameter. A non-numeric value
// is a client error, reported before any service call.
func invoiceNoParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	no, err := strconv.Atoi(chi.URLParam(r, "invoiceNo"))
	if err != nil {
		writeError(w, r, "invoice number must be an integer", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return no, true
}

// createBill handles POST /api/bills.
func (h *Handler) createBill(w http.ResponseWriter, r *http.Request) {
	var req app.CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.CreateBill(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result)
}

// listBills handles GET /api/bills.
func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListBills(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getBill handles GET /api/bills/{invoiceNo}.
func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	no, ok := invoiceNoParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetBill(r.Context(), no)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// updateBill handles PUT /api/bills/{invoiceNo}.
func (h *Handler) updateBill(w http.ResponseWriter, r *http.Request) {
	no, ok := invoiceNoParam(w, r)
	if !ok {
		return
	}
	var req app.UpdateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.UpdateBill(r.Context(), no, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// deleteBill handles DELETE /api/bills/{invoiceNo}.
func (h *Handler) deleteBill(w http.ResponseWriter, r *http.Request) {
	no, ok := invoiceNoParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteBill(r.Context(), no); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}

// classifyBill handles GET /api/bills/{invoiceNo}/type.
func (h *Handler) classifyBill(w http.ResponseWriter, r *http.Request) {
	no, ok := invoiceNoParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.ClassifyBill(r.Context(), no)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// billView handles GET /api/bills/{invoiceNo}/view — a printable HTML
// rendering of the invoice.
func (h *Handler) billView(w http.ResponseWriter, r *http.Request) {
	no, ok := invoiceNoParam(w, r)
	if !ok {
		return
	}
	result, err := h.svc.GetBill(r.Context(), no)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := invoiceTmpl.Execute(w, result.Bill); err != nil {
		h.log.WithError(err).Error("failed to render invoice view")
	}
}

var invoiceTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice #{{.InvoiceNo}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #1e293b; }
table { border-collapse: collapse; width: 100%; margin-top: 1rem; }
th, td { border: 1px solid #cbd5e1; padding: 0.4rem 0.8rem; text-align: left; }
tfoot td { font-weight: bold; }
.meta { color: #475569; }
</style>
</head>
<body>
<h2>Invoice #{{.InvoiceNo}}</h2>
<p class="meta">
Date: {{.Date}}<br>
Customer: {{.CustomerName}}{{if .CustomerPhone}} ({{.CustomerPhone}}){{end}}
</p>
<table>
<thead>
<tr><th>Code</th><th>Item</th><th>Qty</th><th>Price</th><th>Total</th></tr>
</thead>
<tbody>
{{range .Items}}<tr><td>{{.Code}}</td><td>{{.Name}}</td><td>{{.Qty}}</td><td>{{.Price}}</td><td>{{.Total}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="4">Discount</td><td>{{.Discount}}</td></tr>
<tr><td colspan="4">Grand Total</td><td>{{.GrandTotal}}</td></tr>
</tfoot>
</table>
</body>
</html>
`))
