package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/saga-fulfillment/internal/httpx"
	kafkax "github.com/ariefcatur/saga-fulfillment/internal/kafka"
	"github.com/ariefcatur/saga-fulfillment/internal/pending"
	"github.com/ariefcatur/saga-fulfillment/internal/redisx"
	"github.com/ariefcatur/saga-fulfillment/internal/saga"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CreateOrderReq struct {
	Quantity      int    `json:"quantity"`
	PaymentMethod string `json:"paymentMethod"`
	Note          string `json:"note,omitempty"`
}

// HTTPHandler: intake order synchronous di atas saga asynchronous. Publish
// ORDER_START lalu tunggu resolver (ORDER_FINISH / ORDER_INVALID) lewat
// pending registry, dengan timeout sendiri supaya saga macet tidak
// menggantung caller.
type HTTPHandler struct {
	Repo        *Repo
	Producer    kafkax.Publisher // ORDER_START
	Waiters     *pending.Registry[Outcome]
	Redis       *redis.Client
	WaitTimeout time.Duration
	ServiceName string
}

func (h *HTTPHandler) Register(r *chi.Mux) {
	r.Post("/create", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
}

func (h *HTTPHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	// autentikasi urusan gateway; user id disuntik upstream
	userID := r.Header.Get("X-User-Id")
	productID := r.URL.Query().Get("productId")

	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Mohon lengkapi data!")
		return
	}
	if userID == "" || productID == "" || req.Quantity <= 0 || req.PaymentMethod == "" {
		httpx.Fail(w, http.StatusBadRequest, "Mohon lengkapi data!")
		return
	}

	intakeID := uuid.NewString()
	wait, cancel := h.Waiters.Register(intakeID)
	defer cancel()

	env := saga.NewEnvelope(saga.EventOrderRequested, h.ServiceName, intakeID, saga.OrderRequestedPayload{
		ProductID:     productID,
		Quantity:      req.Quantity,
		PaymentMethod: req.PaymentMethod,
		Note:          req.Note,
		UserID:        userID,
	})
	h.Producer.Publish(saga.PartitionKey(intakeID), saga.MustMarshal(env))

	timeout := h.WaitTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	select {
	case out := <-wait:
		if !out.OK {
			httpx.Fail(w, http.StatusBadRequest, out.Message)
			return
		}
		h.cacheStatus(r.Context(), out.Order)
		httpx.OK(w, http.StatusCreated, out.Message, map[string]any{"order": out.Order})
	case <-time.After(timeout):
		httpx.Fail(w, http.StatusGatewayTimeout, "Gagal melakukan order.")
	case <-r.Context().Done():
		// client putus; biar resolver yang datang belakangan jadi no-op
	}
}

func (h *HTTPHandler) cacheStatus(ctx context.Context, o Order) {
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	b, _ := json.Marshal(map[string]any{"status": o.Status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (h *HTTPHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache status
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		httpx.OK(w, http.StatusOK, "Success", json.RawMessage(s))
		return
	}

	// 2) fallback DB
	o, err := h.Repo.GetByID(ctx, orderID)
	if errors.Is(err, ErrNotFound) {
		httpx.Fail(w, http.StatusNotFound, "Order tidak ditemukan.")
		return
	}
	if err != nil {
		httpx.Fail(w, http.StatusInternalServerError, "Kesalahan pada server.")
		return
	}

	b, _ := json.Marshal(map[string]any{"status": o.Status})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	httpx.OK(w, http.StatusOK, "Success", map[string]any{"order": o})
}
