package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the public API surface. Admin routes sit behind the
// bearer token middleware; everything else is open.
func NewRouter(h *Handler, adminToken string) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.HandleFunc("/products", h.HandleStorefront)
		r.HandleFunc("/products/{id}", h.HandleStorefront)

		r.HandleFunc("/cart/{session}", h.HandleStorefront)
		r.HandleFunc("/cart/{session}/items", h.HandleStorefront)
		r.HandleFunc("/cart/{session}/items/{key}", h.HandleStorefront)

		r.HandleFunc("/checkout/{session}/totals", h.HandleStorefront)
		r.HandleFunc("/checkout/{session}/confirm", h.HandleStorefront)

		r.Post("/contact", h.HandleStorefront)
		r.Post("/quotes", h.HandleStorefront)

		r.HandleFunc("/pos/orders", h.HandleOrders)
		r.HandleFunc("/pos/orders/{id}", h.HandleOrders)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin(adminToken))

			r.HandleFunc("/contacts", h.HandleStorefront)
			r.HandleFunc("/contacts/{id}", h.HandleStorefront)
			r.HandleFunc("/contacts/{id}/status", h.HandleStorefront)
			r.HandleFunc("/quotes", h.HandleStorefront)
			r.HandleFunc("/quotes/{id}", h.HandleStorefront)
			r.HandleFunc("/quotes/{id}/status", h.HandleStorefront)

			r.HandleFunc("/orders", h.HandleOrders)
			r.HandleFunc("/orders/{id}", h.HandleOrders)
			r.HandleFunc("/orders/{id}/status", h.HandleOrders)

			r.HandleFunc("/stock", h.HandleInventory)
			r.HandleFunc("/stock/low", h.HandleInventory)
			r.HandleFunc("/stock/{productId}", h.HandleInventory)
			r.HandleFunc("/stock/{productId}/restock", h.HandleInventory)
		})
	})

	return r
}
