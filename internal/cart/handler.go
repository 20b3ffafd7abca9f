package cart

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/craftpack/packstore/internal/domain"
)

type Handler struct {
	carts  *Service
	logger *slog.Logger
}

func NewHandler(carts *Service, logger *slog.Logger) *Handler {
	return &Handler{carts: carts, logger: logger}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	if session == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	cart, err := h.carts.Get(r.Context(), session)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "session_id", session)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeCart(w, cart)
}

type addItemRequest struct {
	ProductID string            `json:"product_id"`
	Name      string            `json:"name"`
	UnitPrice int64             `json:"unit_price"`
	Quantity  int               `json:"quantity"`
	Variant   map[string]string `json:"variant"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	if session == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Quantity < 1 {
		h.writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}
	if req.UnitPrice < 0 {
		h.writeError(w, http.StatusBadRequest, "unit_price must not be negative")
		return
	}

	cart, err := h.carts.AddItem(r.Context(), session, domain.LineItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		Quantity:  req.Quantity,
		Variant:   req.Variant,
	})
	if err != nil {
		h.logger.Error("failed to add item", "error", err, "session_id", session)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("item added to cart", "session_id", session, "product_id", req.ProductID, "quantity", req.Quantity)
	h.writeCart(w, cart)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateQuantity sets the quantity for a line. Zero or negative
// quantities remove the line, matching the aggregator semantics.
func (h *Handler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	key := r.PathValue("key")
	if session == "" || key == "" {
		h.writeError(w, http.StatusBadRequest, "missing session or item key")
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cart, err := h.carts.UpdateQuantity(r.Context(), session, key, req.Quantity)
	if err != nil {
		h.logger.Error("failed to update quantity", "error", err, "session_id", session)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeCart(w, cart)
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	key := r.PathValue("key")
	if session == "" || key == "" {
		h.writeError(w, http.StatusBadRequest, "missing session or item key")
		return
	}

	cart, err := h.carts.RemoveItem(r.Context(), session, key)
	if err != nil {
		h.logger.Error("failed to remove item", "error", err, "session_id", session)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeCart(w, cart)
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	if session == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	if err := h.carts.Clear(r.Context(), session); err != nil {
		h.logger.Error("failed to clear cart", "error", err, "session_id", session)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type cartResponse struct {
	*domain.Cart
	Subtotal int64 `json:"subtotal"`
}

// writeCart attaches the derived subtotal to the serialized cart so
// clients never compute it themselves.
func (h *Handler) writeCart(w http.ResponseWriter, cart *domain.Cart) {
	h.writeJSON(w, http.StatusOK, cartResponse{Cart: cart, Subtotal: cart.Subtotal()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
