package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/microshop/order-service/internal/handler"
	"github.com/microshop/order-service/internal/order"
)

func NewRouter(svc order.Service) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	h := handler.NewOrderHandler(svc)

	r.Post("/orders", h.CreateOrder)
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/statistics", h.GetStatistics)
	r.Get("/orders/{id}", h.GetOrderByID)
	r.Put("/orders/{id}/status", h.UpdateOrderStatus)

	return r
}
