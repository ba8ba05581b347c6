package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rl1809/eshop/internal/core/domain"
	"github.com/rl1809/eshop/internal/core/service"
	"github.com/rl1809/eshop/internal/pkg/metrics"
	"github.com/rl1809/eshop/internal/port"
)

// HTTPHandler exposes the order core over JSON. Each request builds a cart
// from catalog products and places a single order.
type HTTPHandler struct {
	catalog   *domain.Catalog
	shipping  port.ShippingService
	dueWindow time.Duration
	logger    *zap.Logger
}

func NewHTTPHandler(catalog *domain.Catalog, shipping port.ShippingService, dueWindow time.Duration, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dueWindow <= 0 {
		dueWindow = service.DefaultDueWindow
	}
	return &HTTPHandler{
		catalog:   catalog,
		shipping:  shipping,
		dueWindow: dueWindow,
		logger:    logger,
	}
}

func (h *HTTPHandler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api/shipping-types", h.ListShippingTypes)
	r.Post("/api/orders", h.PlaceOrder)
	r.Get("/api/shipments/{shippingID}", h.CheckShippingStatus)

	return r
}

type OrderItemRequest struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type PlaceOrderRequest struct {
	OrderID      string             `json:"order_id,omitempty"`
	ShippingType string             `json:"shipping_type"`
	DueDate      *time.Time         `json:"due_date,omitempty"`
	Items        []OrderItemRequest `json:"items"`
}

type PlaceOrderResponse struct {
	OrderID    string `json:"order_id"`
	ShippingID string `json:"shipping_id"`
	Total      int64  `json:"total"`
}

type ShippingStatusResponse struct {
	ShippingID string `json:"shipping_id"`
	Status     string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.ShippingType == "" || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing required fields"})
		return
	}

	cart := domain.NewShoppingCart()
	for _, item := range req.Items {
		product, ok := h.catalog.Get(item.Product)
		if !ok {
			metrics.OrdersFailed.WithLabelValues("unknown_product").Inc()
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown product: " + item.Product})
			return
		}
		if err := cart.AddProduct(product, item.Quantity); err != nil {
			h.writeOrderError(w, err)
			return
		}
	}
	total := cart.CalculateTotal()

	opts := []service.Option{service.WithDueWindow(h.dueWindow)}
	if req.OrderID != "" {
		opts = append(opts, service.WithOrderID(req.OrderID))
	}
	order := service.NewOrder(cart, h.shipping, opts...)

	var dueDate time.Time
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	shippingID, err := order.PlaceOrder(r.Context(), req.ShippingType, dueDate)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}

	metrics.OrdersPlaced.Inc()
	writeJSON(w, http.StatusCreated, PlaceOrderResponse{
		OrderID:    order.ID(),
		ShippingID: shippingID,
		Total:      total,
	})
}

func (h *HTTPHandler) CheckShippingStatus(w http.ResponseWriter, r *http.Request) {
	shippingID := chi.URLParam(r, "shippingID")

	status, err := h.shipping.CheckStatus(r.Context(), shippingID)
	if err != nil {
		if errors.Is(err, port.ErrShippingNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "shipping not found"})
			return
		}
		h.logger.Error("check status failed", zap.String("shipping_id", shippingID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, ShippingStatusResponse{
		ShippingID: shippingID,
		Status:     string(status),
	})
}

func (h *HTTPHandler) ListShippingTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"shipping_types": h.shipping.ListAvailableShippingType(),
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		metrics.OrdersFailed.WithLabelValues("sold_out").Inc()
		writeJSON(w, http.StatusGone, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, port.ErrUnsupportedShippingType),
		errors.Is(err, port.ErrPastDueDate):
		metrics.OrdersFailed.WithLabelValues("validation").Inc()
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		metrics.OrdersFailed.WithLabelValues("internal").Inc()
		h.logger.Error("place order failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
