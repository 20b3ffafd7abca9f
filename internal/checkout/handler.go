package checkout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/craftpack/packstore/internal/cart"
	"github.com/craftpack/packstore/internal/domain"
	"github.com/craftpack/packstore/internal/receipt"
)

type Handler struct {
	confirmer *Confirmer
	carts     *cart.Service
	rates     Rates
	business  receipt.Business
	logger    *slog.Logger
}

func NewHandler(confirmer *Confirmer, carts *cart.Service, rates Rates, business receipt.Business, logger *slog.Logger) *Handler {
	return &Handler{
		confirmer: confirmer,
		carts:     carts,
		rates:     rates,
		business:  business,
		logger:    logger,
	}
}

// HandleTotals returns the draft receipt preview for the session cart.
func (h *Handler) HandleTotals(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	if session == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	current, err := h.carts.Get(r.Context(), session)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "session_id", session)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	totals := h.rates.ComputeTotals(current.Subtotal())
	preview := receipt.FromDraft(h.business, current, totals, time.Now().UTC())

	h.writeJSON(w, http.StatusOK, preview)
}

type confirmRequest struct {
	PaymentMethod string          `json:"payment_method"`
	Customer      domain.Customer `json:"customer"`
	Discount      int64           `json:"discount"`
	DiscountCode  string          `json:"discount_code"`
	Notes         string          `json:"notes"`
}

type confirmResponse struct {
	Order   *domain.Order   `json:"order"`
	Receipt receipt.Receipt `json:"receipt"`
}

// HandleConfirm runs the checkout transaction for the session.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	session := r.PathValue("session")
	if session == "" {
		h.writeError(w, http.StatusBadRequest, "missing session id")
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Discount < 0 {
		h.writeError(w, http.StatusBadRequest, "discount must not be negative")
		return
	}

	order, err := h.confirmer.Confirm(r.Context(), session, PaymentDetails{
		Method:       method,
		Customer:     req.Customer,
		Discount:     req.Discount,
		DiscountCode: req.DiscountCode,
		Notes:        req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			h.writeError(w, http.StatusConflict, "cart is empty")
		case errors.Is(err, ErrCheckoutInFlight):
			h.writeError(w, http.StatusConflict, "checkout already in progress")
		case errors.Is(err, ErrDiscountExceedsTotal):
			h.writeError(w, http.StatusBadRequest, "discount exceeds order total")
		default:
			h.logger.Error("checkout failed", "error", err, "session_id", session)
			h.writeError(w, http.StatusInternalServerError, "checkout failed, cart preserved")
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, confirmResponse{
		Order:   order,
		Receipt: receipt.FromOrder(h.business, order),
	})
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
