package payment

import (
	"encoding/json"
	"net/http"

	"github.com/ariefcatur/saga-fulfillment/internal/httpx"
	"github.com/go-chi/chi/v5"
)

type confirmReq struct {
	PaymentStatus string `json:"paymentStatus"`
}

type HTTPHandler struct {
	Orchestrator *Orchestrator
}

func (h *HTTPHandler) Register(r *chi.Mux) {
	r.Post("/confirm", h.confirmPayment)
	r.Patch("/confirm", h.confirmPayment)
}

func (h *HTTPHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	billingID := r.URL.Query().Get("billingId")

	var req confirmReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Mohon lengkapi data!")
		return
	}

	res, err := h.Orchestrator.Confirm(r.Context(), billingID, req.PaymentStatus)
	if err != nil {
		// tanpa partial success: mutasi yang sudah jalan tidak dilaporkan
		httpx.Fail(w, http.StatusInternalServerError, "Gagal menyelesaikan pembayaran.")
		return
	}
	httpx.OK(w, http.StatusOK, "Berhasil menyelesaikan pembayaran.", res)
}
