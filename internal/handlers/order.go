package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/storefront/httpx"
	"github.com/diewo77/storefront/internal/inventory"
	"github.com/diewo77/storefront/internal/invoice"
	"github.com/diewo77/storefront/internal/lifecycle"
	"github.com/diewo77/storefront/internal/models"
	"gorm.io/gorm"
)

func parseUint(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(n), nil
}

type OrderHandler struct {
	lifecycle *lifecycle.Manager
	invoices  *invoice.Service
}

func NewOrderHandler(lc *lifecycle.Manager, invoices *invoice.Service) *OrderHandler {
	return &OrderHandler{lifecycle: lc, invoices: invoices}
}

// List: GET /orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.lifecycle.List(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_orders", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": orders, "total": len(orders)})
}

// View: GET /orders/{id}
func (h *OrderHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	order, err := h.lifecycle.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "order_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_order", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// writeTransitionError maps lifecycle errors onto HTTP statuses.
func writeTransitionError(w http.ResponseWriter, err error) {
	var terr *lifecycle.InvalidTransitionError
	switch {
	case errors.As(err, &terr):
		httpx.JSONError(w, http.StatusConflict, "invalid_transition", map[string]string{
			"from": string(terr.From),
			"to":   string(terr.To),
		})
	case errors.Is(err, inventory.ErrInsufficientStock):
		httpx.JSONError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "order_not_found", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "transition_failed", nil)
	}
}

// UpdateStatus: POST /orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if !lifecycle.ValidStatus(req.Status) {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_status", string(req.Status))
		return
	}

	order, err := h.lifecycle.Transition(r.Context(), id, req.Status)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	// a cancelled order voids its unpaid invoice
	if req.Status == models.OrderStatusCancelled {
		if err := h.invoices.CancelForOrder(r.Context(), id); err != nil {
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_cancel_invoice", nil)
			return
		}
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Cancel: POST /orders/{id}/cancel — shorthand for a cancelled transition.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	order, err := h.lifecycle.Transition(r.Context(), id, models.OrderStatusCancelled)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	if err := h.invoices.CancelForOrder(r.Context(), id); err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_cancel_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// UpdateDelivery: POST /orders/{id}/delivery
func (h *OrderHandler) UpdateDelivery(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Status models.DeliveryStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if !lifecycle.ValidDeliveryStatus(req.Status) {
		httpx.JSONError(w, http.StatusBadRequest, "unknown_status", string(req.Status))
		return
	}

	order, err := h.lifecycle.TransitionDelivery(r.Context(), id, req.Status)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}
