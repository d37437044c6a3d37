package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AliAsger25/TFWTest/internal/app"
)

// createProduct handles POST /api/products.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req app.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	product, err := h.svc.CreateProduct(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(product)
}

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// searchProducts handles GET /api/products/search?q=.
func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.SearchProducts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// getProduct handles GET /api/products/{code}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, product)
}

// updateProduct handles PUT /api/products/{code}.
func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid JSON body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	product, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "code"), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, product)
}

// deleteProduct handles DELETE /api/products/{code}.
func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "code")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted"})
}
