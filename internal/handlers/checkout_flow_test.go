package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/storefront/internal/inventory"
	"github.com/diewo77/storefront/internal/invoice"
	"github.com/diewo77/storefront/internal/lifecycle"
	"github.com/diewo77/storefront/internal/models"
	"github.com/diewo77/storefront/internal/notify"
	"gorm.io/gorm"
)

type flowEnv struct {
	db       *gorm.DB
	carts    *CartHandler
	orders   *OrderHandler
	invoices *InvoiceHandler
}

func setupFlow(t *testing.T) flowEnv {
	t.Helper()
	db := setupHandlerTestDB(t)
	ledger := inventory.NewLedger(db)
	lc := lifecycle.NewManager(db, ledger, notify.LogDispatcher{})
	invSvc := invoice.NewService(db)
	store := NewCartStore(ledger)
	return flowEnv{
		db:       db,
		carts:    NewCartHandler(db, store, lc),
		orders:   NewOrderHandler(lc, invSvc),
		invoices: NewInvoiceHandler(invSvc),
	}
}

func doJSON(t *testing.T, fn http.HandlerFunc, method, target, session, body string, pathID string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if session != "" {
		r.Header.Set(SessionHeader, session)
	}
	if pathID != "" {
		r.SetPathValue("id", pathID)
	}
	w := httptest.NewRecorder()
	fn(w, r)
	return w
}

func TestCheckoutFlow(t *testing.T) {
	env := setupFlow(t)
	p := models.Product{Name: "Montre", UnitPrice: 45000, StockTracked: true, AvailableQuantity: 5, MinQuantity: 2}
	if err := env.db.Create(&p).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	session := "sess-1"
	addBody := fmt.Sprintf(`{"product_id":%d}`, p.ID)

	// add the same product twice: one line, quantity 2
	for i := 0; i < 2; i++ {
		w := doJSON(t, env.carts.AddItem, http.MethodPost, "/cart/items", session, addBody, "")
		if w.Code != http.StatusOK {
			t.Fatalf("add item %d: %d body=%s", i+1, w.Code, w.Body.String())
		}
	}
	cartW := doJSON(t, env.carts.View, http.MethodGet, "/cart", session, "", "")
	var cv struct {
		Lines []map[string]any `json:"lines"`
		Total int64            `json:"total"`
		Count int              `json:"count"`
	}
	if err := json.Unmarshal(cartW.Body.Bytes(), &cv); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(cv.Lines) != 1 || cv.Count != 2 || cv.Total != 90000 {
		t.Fatalf("unexpected cart: %+v", cv)
	}

	// checkout without address fails validation
	w := doJSON(t, env.carts.Checkout, http.MethodPost, "/checkout", session, `{"phone_number":"+221770000000"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	// valid checkout
	w = doJSON(t, env.carts.Checkout, http.MethodPost, "/checkout", session,
		`{"delivery_address":"12 rue du Commerce","phone_number":"+221770000000"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("checkout: %d body=%s", w.Code, w.Body.String())
	}
	var order models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode order: %v", err)
	}
	if order.Status != models.OrderStatusPending || order.Total != 90000 {
		t.Fatalf("unexpected order: %+v", order)
	}

	// the cart was destroyed at placement
	cartW = doJSON(t, env.carts.View, http.MethodGet, "/cart", session, "", "")
	var emptied struct {
		Count int `json:"count"`
	}
	_ = json.Unmarshal(cartW.Body.Bytes(), &emptied)
	if emptied.Count != 0 {
		t.Fatalf("cart not cleared after checkout: %+v", emptied)
	}

	orderID := fmt.Sprint(order.ID)

	// pending -> processing commits stock
	w = doJSON(t, env.orders.UpdateStatus, http.MethodPost, "/orders/"+orderID+"/status", "", `{"status":"processing"}`, orderID)
	if w.Code != http.StatusOK {
		t.Fatalf("processing: %d body=%s", w.Code, w.Body.String())
	}
	var after models.Product
	env.db.First(&after, p.ID)
	if after.AvailableQuantity != 3 {
		t.Fatalf("stock after commit = %d, want 3", after.AvailableQuantity)
	}

	// skipping straight to delivered is rejected and changes nothing
	w = doJSON(t, env.orders.UpdateStatus, http.MethodPost, "/orders/"+orderID+"/status", "", `{"status":"delivered"}`, orderID)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	// issue the invoice, twice: same document
	w = doJSON(t, env.invoices.Issue, http.MethodPost, "/orders/"+orderID+"/invoice", "", "", orderID)
	if w.Code != http.StatusCreated {
		t.Fatalf("issue: %d body=%s", w.Code, w.Body.String())
	}
	var inv models.Invoice
	_ = json.Unmarshal(w.Body.Bytes(), &inv)
	if inv.Subtotal != 90000 || inv.TaxAmount != 16200 || inv.Total != 106200 {
		t.Fatalf("invoice totals = %d/%d/%d", inv.Subtotal, inv.TaxAmount, inv.Total)
	}
	w = doJSON(t, env.invoices.Issue, http.MethodPost, "/orders/"+orderID+"/invoice", "", "", orderID)
	var again models.Invoice
	_ = json.Unmarshal(w.Body.Bytes(), &again)
	if again.ID != inv.ID {
		t.Fatalf("re-issue created new invoice %d != %d", again.ID, inv.ID)
	}

	// pdf export
	invID := fmt.Sprint(inv.ID)
	w = doJSON(t, env.invoices.PDF, http.MethodGet, "/invoices/"+invID+"/pdf", "", "", invID)
	if w.Code != http.StatusOK {
		t.Fatalf("pdf: %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/pdf") {
		t.Fatalf("pdf content-type = %s", ct)
	}

	// cancel from processing: stock returns, invoice voided
	w = doJSON(t, env.orders.Cancel, http.MethodPost, "/orders/"+orderID+"/cancel", "", "", orderID)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: %d body=%s", w.Code, w.Body.String())
	}
	env.db.First(&after, p.ID)
	if after.AvailableQuantity != 5 {
		t.Fatalf("stock after cancel = %d, want 5", after.AvailableQuantity)
	}
	var voided models.Invoice
	env.db.First(&voided, inv.ID)
	if voided.PaymentStatus != models.PaymentCancelled {
		t.Fatalf("invoice status after cancel = %s", voided.PaymentStatus)
	}
}

func TestCheckoutInsufficientStockAtCommit(t *testing.T) {
	env := setupFlow(t)
	p := models.Product{Name: "Rare", UnitPrice: 10000, StockTracked: true, AvailableQuantity: 2}
	if err := env.db.Create(&p).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// two sessions each cart 2 units; carts advise but do not reserve
	for _, session := range []string{"a", "b"} {
		body := fmt.Sprintf(`{"product_id":%d}`, p.ID)
		for i := 0; i < 2; i++ {
			if w := doJSON(t, env.carts.AddItem, http.MethodPost, "/cart/items", session, body, ""); w.Code != http.StatusOK {
				t.Fatalf("session %s add: %d", session, w.Code)
			}
		}
		w := doJSON(t, env.carts.Checkout, http.MethodPost, "/checkout", session,
			`{"delivery_address":"addr","phone_number":"+221770000000"}`, "")
		if w.Code != http.StatusCreated {
			t.Fatalf("session %s checkout: %d body=%s", session, w.Code, w.Body.String())
		}
	}

	var orders []models.Order
	env.db.Order("id").Find(&orders)
	if len(orders) != 2 {
		t.Fatalf("got %d orders", len(orders))
	}

	// first commit wins the stock
	firstID := fmt.Sprint(orders[0].ID)
	if w := doJSON(t, env.orders.UpdateStatus, http.MethodPost, "/orders/"+firstID+"/status", "", `{"status":"processing"}`, firstID); w.Code != http.StatusOK {
		t.Fatalf("first commit: %d", w.Code)
	}
	// the second cannot be committed
	secondID := fmt.Sprint(orders[1].ID)
	w := doJSON(t, env.orders.UpdateStatus, http.MethodPost, "/orders/"+secondID+"/status", "", `{"status":"processing"}`, secondID)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second commit, got %d body=%s", w.Code, w.Body.String())
	}
	var second models.Order
	env.db.First(&second, orders[1].ID)
	if second.Status != models.OrderStatusPending {
		t.Fatalf("second order status = %s, want pending", second.Status)
	}
}

func TestCartRequiresSession(t *testing.T) {
	env := setupFlow(t)
	w := doJSON(t, env.carts.View, http.MethodGet, "/cart", "", "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without session header, got %d", w.Code)
	}
}

func TestDeliveryEndpoint(t *testing.T) {
	env := setupFlow(t)
	p := models.Product{Name: "X", UnitPrice: 1000, StockTracked: true, AvailableQuantity: 5}
	if err := env.db.Create(&p).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	body := fmt.Sprintf(`{"product_id":%d}`, p.ID)
	doJSON(t, env.carts.AddItem, http.MethodPost, "/cart/items", "s", body, "")
	w := doJSON(t, env.carts.Checkout, http.MethodPost, "/checkout", "s",
		`{"delivery_address":"addr","phone_number":"+221770000000"}`, "")
	var order models.Order
	_ = json.Unmarshal(w.Body.Bytes(), &order)
	id := fmt.Sprint(order.ID)

	w = doJSON(t, env.orders.UpdateDelivery, http.MethodPost, "/orders/"+id+"/delivery", "", `{"status":"in_progress"}`, id)
	if w.Code != http.StatusOK {
		t.Fatalf("delivery: %d body=%s", w.Code, w.Body.String())
	}

	// unknown delivery status is rejected up front
	w = doJSON(t, env.orders.UpdateDelivery, http.MethodPost, "/orders/"+id+"/delivery", "", `{"status":"teleported"}`, id)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	// invalid sub-machine move conflicts
	w = doJSON(t, env.orders.UpdateDelivery, http.MethodPost, "/orders/"+id+"/delivery", "", `{"status":"pending"}`, id)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}
