package identity

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/saga-fulfillment/internal/httpx"
	"github.com/go-chi/chi/v5"
)

type HTTPHandler struct {
	Repo *Repo
}

func (h *HTTPHandler) Register(r *chi.Mux) {
	r.Get("/users/{id}", h.getUser)
}

func (h *HTTPHandler) getUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Repo.GetByID(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		httpx.Fail(w, http.StatusNotFound, "Pengguna tidak ditemukan.")
		return
	}
	if err != nil {
		httpx.Fail(w, http.StatusInternalServerError, "Kesalahan pada server.")
		return
	}
	httpx.OK(w, http.StatusOK, "Success", map[string]any{"user": u})
}
