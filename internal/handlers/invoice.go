package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/diewo77/storefront/httpx"
	"github.com/diewo77/storefront/internal/invoice"
	"github.com/diewo77/storefront/pdf"
	"gorm.io/gorm"
)

type InvoiceHandler struct {
	svc *invoice.Service
}

func NewInvoiceHandler(svc *invoice.Service) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invs, err := h.svc.List(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": len(invs)})
}

// View: GET /invoices/{id}
func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Issue: POST /orders/{id}/invoice — idempotent; re-issuing returns the
// existing document.
func (h *InvoiceHandler) Issue(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseUint(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inv, err := h.svc.Issue(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "order_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_issue_invoice", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

// Pay: POST /invoices/{id}/pay
func (h *InvoiceHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PaymentMethod == "" {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", map[string]string{"payment_method": "required"})
		return
	}

	inv, err := h.svc.Pay(r.Context(), id, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, invoice.ErrNotPayable):
			httpx.JSONError(w, http.StatusConflict, "invoice_not_payable", nil)
		case errors.Is(err, gorm.ErrRecordNotFound):
			httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
		default:
			httpx.JSONError(w, http.StatusInternalServerError, "failed_to_pay_invoice", nil)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// PDF: GET /invoices/{id}/pdf
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, err := parseUint(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	inv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "invoice_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_invoice", nil)
		return
	}
	if inv.Order == nil {
		httpx.JSONError(w, http.StatusInternalServerError, "invoice_missing_order", nil)
		return
	}

	out, err := pdf.RenderInvoice(*inv, *inv.Order)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_render_pdf", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", inv.Number))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
