package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/craftpack/packstore/internal/domain"
)

// Store is the persistence port the handler talks to.
type Store interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
}

// Publisher emits the order.created event after persistence.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

type Handler struct {
	store     Store
	publisher Publisher
	logger    *slog.Logger
}

func NewHandler(store Store, publisher Publisher, logger *slog.Logger) *Handler {
	return &Handler{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

type createOrderRequest struct {
	Number        string            `json:"number"`
	Items         []domain.LineItem `json:"items"`
	Customer      domain.Customer   `json:"customer"`
	Subtotal      int64             `json:"subtotal"`
	Tax           int64             `json:"tax"`
	Shipping      int64             `json:"shipping"`
	Discount      int64             `json:"discount"`
	DiscountCode  string            `json:"discount_code"`
	TotalAmount   int64             `json:"total_amount"`
	PaymentMethod string            `json:"payment_method"`
	Notes         string            `json:"notes"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Items) == 0 {
		h.writeError(w, http.StatusBadRequest, "order has no items")
		return
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			h.writeError(w, http.StatusBadRequest, "item quantity must be at least 1")
			return
		}
	}

	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	number := req.Number
	if number == "" {
		number = "PS-" + strings.ToUpper(uuid.New().String()[:8])
	}

	order := &domain.Order{
		Number:        number,
		Items:         req.Items,
		Subtotal:      req.Subtotal,
		Tax:           req.Tax,
		Shipping:      req.Shipping,
		Discount:      req.Discount,
		DiscountCode:  req.DiscountCode,
		Total:         req.TotalAmount,
		PaymentMethod: method,
		PaymentStatus: domain.PaymentStatusPaid,
		Customer:      req.Customer,
		Notes:         req.Notes,
		Status:        domain.OrderStatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	created, err := h.store.Create(r.Context(), order)
	if err != nil {
		h.logger.Error("failed to create order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.publisher != nil {
		event := domain.OrderCreatedEvent{
			OrderID:       created.ID,
			OrderNumber:   created.Number,
			Items:         created.Items,
			Total:         created.Total,
			PaymentMethod: created.PaymentMethod,
			CustomerEmail: created.Customer.Email,
			Timestamp:     created.CreatedAt,
		}
		if err := h.publisher.Publish(r.Context(), created.ID, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", created.ID)
		}
	}

	h.logger.Info("order created", "order_id", created.ID, "number", created.Number, "total", created.Total)
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Status {
	case domain.OrderStatusPending, domain.OrderStatusPaid, domain.OrderStatusFulfilled, domain.OrderStatusCancelled:
	default:
		h.writeError(w, http.StatusBadRequest, "unknown order status")
		return
	}

	order, err := h.store.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))

	orders, err := h.store.List(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, orders)
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
