package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/microshop/order-service/internal/order"
	"github.com/rs/zerolog/log"
)

// OrderHandler handles HTTP requests for orders. The gateway in front is
// trusted to resolve the caller: it sets X-User-ID and forwards the bearer
// token unchanged.
type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// CreateOrder handles POST /orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token := bearerToken(r)

	ord, err := h.svc.CreateOrderFromCart(r.Context(), userID, token, req.ShippingAddress)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrShippingAddressRequired),
			errors.Is(err, order.ErrEmptyCart),
			errors.Is(err, order.ErrUserUnresolved),
			errors.Is(err, order.ErrInsufficientStock):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Info().Msgf("Failed to create order: %v", err)
			http.Error(w, "failed to create order", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, ord)
}

// UpdateOrderStatus handles PUT /orders/{id}/status.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	newStatus := order.OrderStatus(req.Status)
	if !newStatus.Valid() {
		http.Error(w, "invalid order status", http.StatusBadRequest)
		return
	}

	ord, err := h.svc.UpdateOrderStatus(r.Context(), orderID, newStatus)
	if err != nil {
		var transitionErr *order.StatusTransitionError
		switch {
		case errors.As(err, &transitionErr):
			http.Error(w, transitionErr.Error(), http.StatusBadRequest)
		case errors.Is(err, order.ErrOrderNotFound):
			http.Error(w, "order not found", http.StatusNotFound)
		default:
			log.Info().Msgf("Failed to update order status: %v", err)
			http.Error(w, "failed to update order status", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, ord)
}

// GetOrderByID handles GET /orders/{id}.
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	ord, err := h.svc.GetOrderByID(r.Context(), orderID, userID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			http.Error(w, "order not found", http.StatusNotFound)
			return
		}
		log.Info().Msgf("Failed to get order by id: %v", err)
		http.Error(w, "failed to get order", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ord)
}

// ListOrders handles GET /orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	orders, err := h.svc.GetOrdersByUserID(r.Context(), userID)
	if err != nil {
		log.Info().Msgf("Failed to list orders: %v", err)
		http.Error(w, "failed to list orders", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// GetStatistics handles GET /orders/statistics.
func (h *OrderHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.GetStatistics(r.Context(), userID)
	if err != nil {
		log.Info().Msgf("Failed to get order statistics: %v", err)
		http.Error(w, "failed to get order statistics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

func bearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Info().Msgf("Failed to encode response: %v", err)
	}
}
