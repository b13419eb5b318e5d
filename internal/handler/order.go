package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prodline/internal/model"
	"github.com/prodline/internal/store"
)

type orderGetter interface {
	GetByNo(ctx context.Context, orderNo string) (*model.Order, error)
}

// OrderHandler serves work-order lookups.
type OrderHandler struct {
	BaseHandler
	orders orderGetter
}

func NewOrderHandler(logger *slog.Logger, orders orderGetter) *OrderHandler {
	return &OrderHandler{BaseHandler: BaseHandler{Logger: logger}, orders: orders}
}

// Get returns the order with the given number, or 404.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderNo := chi.URLParam(r, "orderNo")

	order, err := h.orders.GetByNo(r.Context(), orderNo)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.failResponse(w, r, http.StatusNotFound, "order not found")
			return
		}
		h.serverErrorResponse(w, r, err)
		return
	}

	h.okResponse(w, r, envelope{"order": order})
}
