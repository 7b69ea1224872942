package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/diewo77/storefront/httpx"
	"github.com/diewo77/storefront/internal/cart"
	"github.com/diewo77/storefront/internal/inventory"
	"github.com/diewo77/storefront/internal/lifecycle"
	"github.com/diewo77/storefront/internal/models"
	"gorm.io/gorm"
)

// SessionHeader identifies the client session owning a cart.
const SessionHeader = "X-Session-ID"

// CartStore holds the live carts, one per session. The lock guards the map
// only; each cart stays single-writer within its session.
type CartStore struct {
	mu     sync.Mutex
	carts  map[string]*cart.Engine
	ledger *inventory.Ledger
}

func NewCartStore(ledger *inventory.Ledger) *CartStore {
	return &CartStore{carts: make(map[string]*cart.Engine), ledger: ledger}
}

func (s *CartStore) get(sessionID string) *cart.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.carts[sessionID]
	if !ok {
		e = cart.NewEngine(s.ledger)
		s.carts[sessionID] = e
	}
	return e
}

func (s *CartStore) drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

type CartHandler struct {
	db        *gorm.DB
	store     *CartStore
	lifecycle *lifecycle.Manager
}

func NewCartHandler(db *gorm.DB, store *CartStore, lc *lifecycle.Manager) *CartHandler {
	return &CartHandler{db: db, store: store, lifecycle: lc}
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid := r.Header.Get(SessionHeader)
	if sid == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_session", map[string]string{
			"header": SessionHeader,
		})
		return "", false
	}
	return sid, true
}

type cartView struct {
	Lines []cart.Line `json:"lines"`
	Total int64       `json:"total"`
	Count int         `json:"count"`
}

func viewOf(e *cart.Engine) cartView {
	return cartView{Lines: e.Lines(), Total: e.Total(), Count: e.Count()}
}

// signalNames maps cart signals to the informational messages surfaced to
// the client (toast-level feedback, not errors).
var signalNames = map[cart.Signal]string{
	cart.SignalNone:        "noop",
	cart.SignalAdded:       "added",
	cart.SignalIncremented: "incremented",
	cart.SignalStockLimit:  "stock_limit_reached",
	cart.SignalRemoved:     "removed",
	cart.SignalUpdated:     "updated",
}

// View: GET /cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(h.store.get(sid)))
}

// AddItem: POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req struct {
		ProductID uint `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	var p models.Product
	if err := h.db.WithContext(r.Context()).First(&p, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}

	e := h.store.get(sid)
	sig, err := e.AddItem(r.Context(), p)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_add_item", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"signal": signalNames[sig], "cart": viewOf(e)})
}

// UpdateItem: POST /cart/items/{id} — quantity 0 removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	productID, perr := parseUint(r.PathValue("id"))
	if perr != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	e := h.store.get(sid)
	sig, err := e.UpdateQuantity(r.Context(), productID, *req.Quantity)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_item", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"signal": signalNames[sig], "cart": viewOf(e)})
}

// RemoveItem: DELETE /cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	productID, perr := parseUint(r.PathValue("id"))
	if perr != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	e := h.store.get(sid)
	e.RemoveItem(productID)
	httpx.JSON(w, http.StatusOK, map[string]any{"signal": signalNames[cart.SignalRemoved], "cart": viewOf(e)})
}

// Clear: DELETE /cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	e := h.store.get(sid)
	e.Clear()
	httpx.JSON(w, http.StatusOK, viewOf(e))
}

// Checkout: POST /checkout — freezes the cart into a pending order. The
// cart is destroyed once the order is placed.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req struct {
		DeliveryAddress string `json:"delivery_address"`
		PhoneNumber     string `json:"phone_number"`
		Note            string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	e := h.store.get(sid)
	order, err := h.lifecycle.Place(r.Context(), lifecycle.PlacementRequest{
		Lines:           e.Lines(),
		DeliveryAddress: req.DeliveryAddress,
		PhoneNumber:     req.PhoneNumber,
		Note:            req.Note,
	})
	if err != nil {
		var verr *lifecycle.ValidationError
		if errors.As(err, &verr) {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_place_order", nil)
		return
	}

	h.store.drop(sid)
	httpx.JSON(w, http.StatusCreated, order)
}
