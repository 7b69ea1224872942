package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/diewo77/storefront/httpx"
	"github.com/diewo77/storefront/internal/inventory"
	"github.com/diewo77/storefront/internal/models"
	"github.com/diewo77/storefront/validation"
	"gorm.io/gorm"
)

type ProductHandler struct {
	db     *gorm.DB
	ledger *inventory.Ledger
}

func NewProductHandler(db *gorm.DB, ledger *inventory.Ledger) *ProductHandler {
	return &ProductHandler{db: db, ledger: ledger}
}

// productView decorates a product with its stock classification.
type productView struct {
	models.Product
	StockLevel models.StockLevel `json:"stock_level"`
}

// List: GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var products []models.Product
	dbq := h.db.WithContext(r.Context())
	if q := r.URL.Query().Get("q"); q != "" {
		dbq = dbq.Where("name LIKE ?", "%"+q+"%")
	}
	if err := dbq.Order("name").Find(&products).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, productView{Product: p, StockLevel: inventory.Classify(p)})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": views, "total": len(views)})
}

// View: GET /products/{id}
func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var p models.Product
	if err := h.db.WithContext(r.Context()).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, productView{Product: p, StockLevel: inventory.Classify(p)})
}

// Create: POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name              string `json:"name"`
		UnitPrice         int64  `json:"unit_price"`
		StockTracked      *bool  `json:"stock_tracked"`
		AvailableQuantity int    `json:"available_quantity"`
		MinQuantity       int    `json:"min_quantity"`
		MaxQuantity       int    `json:"max_quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}

	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	if req.UnitPrice <= 0 {
		v["unit_price"] = "must_be_positive"
	}
	if req.AvailableQuantity < 0 || req.MinQuantity < 0 || req.MaxQuantity < 0 {
		v["quantities"] = "must_not_be_negative"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	tracked := true
	if req.StockTracked != nil {
		tracked = *req.StockTracked
	}
	p := models.Product{
		Name:              req.Name,
		UnitPrice:         req.UnitPrice,
		StockTracked:      tracked,
		AvailableQuantity: req.AvailableQuantity,
		MinQuantity:       req.MinQuantity,
		MaxQuantity:       req.MaxQuantity,
	}
	if err := h.db.WithContext(r.Context()).Create(&p).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_product", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, productView{Product: p, StockLevel: inventory.Classify(p)})
}

// AdjustStock: POST /products/{id}/stock — back-office absolute correction.
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	p, err := h.ledger.Adjust(r.Context(), uint(id), req.Quantity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusBadRequest, "failed_to_adjust_stock", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, productView{Product: *p, StockLevel: inventory.Classify(*p)})
}

// Alerts: GET /products/alerts — low-stock report for the back office.
func (h *ProductHandler) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.ledger.Alerts(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_alerts", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": alerts, "total": len(alerts)})
}
