package catalog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/saga-fulfillment/internal/httpx"
	"github.com/go-chi/chi/v5"
)

// Endpoint baca produk, CRUD polos di luar alur saga.
type HTTPHandler struct {
	Repo *Repo
}

func (h *HTTPHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
}

func (h *HTTPHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	products, err := h.Repo.List(ctx)
	if err != nil {
		httpx.Fail(w, http.StatusInternalServerError, "Kesalahan pada server.")
		return
	}
	httpx.OK(w, http.StatusOK, "Success", map[string]any{"products": products})
}

func (h *HTTPHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Repo.GetByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		httpx.Fail(w, http.StatusNotFound, "Produk tidak ditemukan.")
		return
	}
	if err != nil {
		httpx.Fail(w, http.StatusInternalServerError, "Kesalahan pada server.")
		return
	}
	httpx.OK(w, http.StatusOK, "Success", map[string]any{"product": p})
}
