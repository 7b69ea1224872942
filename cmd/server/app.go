package main

import (
	"net/http"

	"github.com/diewo77/storefront/internal/handlers"
	"github.com/diewo77/storefront/internal/inventory"
	"github.com/diewo77/storefront/internal/invoice"
	"github.com/diewo77/storefront/internal/lifecycle"
	"github.com/diewo77/storefront/internal/notify"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux *http.ServeMux
}

// NewApp wires the core components and configures all routes.
func NewApp(db *gorm.DB, dispatcher notify.Dispatcher) *App {
	ledger := inventory.NewLedger(db)
	lc := lifecycle.NewManager(db, ledger, dispatcher)
	invSvc := invoice.NewService(db)

	ph := handlers.NewProductHandler(db, ledger)
	ch := handlers.NewCartHandler(db, handlers.NewCartStore(ledger), lc)
	oh := handlers.NewOrderHandler(lc, invSvc)
	ih := handlers.NewInvoiceHandler(invSvc)

	mux := http.NewServeMux()

	// Products & stock
	mux.HandleFunc("GET /products", ph.List)
	mux.HandleFunc("GET /products/alerts", ph.Alerts)
	mux.HandleFunc("GET /products/{id}", ph.View)
	mux.HandleFunc("POST /products", ph.Create)
	mux.HandleFunc("POST /products/{id}/stock", ph.AdjustStock)

	// Cart (session-scoped via X-Session-ID)
	mux.HandleFunc("GET /cart", ch.View)
	mux.HandleFunc("DELETE /cart", ch.Clear)
	mux.HandleFunc("POST /cart/items", ch.AddItem)
	mux.HandleFunc("POST /cart/items/{id}", ch.UpdateItem)
	mux.HandleFunc("DELETE /cart/items/{id}", ch.RemoveItem)
	mux.HandleFunc("POST /checkout", ch.Checkout)

	// Orders & lifecycle
	mux.HandleFunc("GET /orders", oh.List)
	mux.HandleFunc("GET /orders/{id}", oh.View)
	mux.HandleFunc("POST /orders/{id}/status", oh.UpdateStatus)
	mux.HandleFunc("POST /orders/{id}/cancel", oh.Cancel)
	mux.HandleFunc("POST /orders/{id}/delivery", oh.UpdateDelivery)

	// Invoices
	mux.HandleFunc("POST /orders/{id}/invoice", ih.Issue)
	mux.HandleFunc("GET /invoices", ih.List)
	mux.HandleFunc("GET /invoices/{id}", ih.View)
	mux.HandleFunc("POST /invoices/{id}/pay", ih.Pay)
	mux.HandleFunc("GET /invoices/{id}/pdf", ih.PDF)

	return &App{mux: mux}
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}
