package crm

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/craftpack/packstore/internal/domain"
)

// QuoteStore is the persistence port for quote requests.
type QuoteStore interface {
	Create(ctx context.Context, quote *domain.Quote) (*domain.Quote, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Quote, int, error)
	GetByID(ctx context.Context, id string) (*domain.Quote, error)
	UpdateStatus(ctx context.Context, id string, status domain.QuoteStatus) (*domain.Quote, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type QuoteHandler struct {
	store  QuoteStore
	logger *slog.Logger
}

func NewQuoteHandler(store QuoteStore, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{store: store, logger: logger}
}

type quoteRequest struct {
	Name               string            `json:"name"`
	Email              string            `json:"email"`
	Company            string            `json:"company"`
	Phone              string            `json:"phone"`
	ProductType        string            `json:"product_type"`
	Quantity           int               `json:"quantity"`
	Dimensions         domain.Dimensions `json:"dimensions"`
	Material           string            `json:"material"`
	PrintingRequired   bool              `json:"printing_required"`
	CustomDesign       bool              `json:"custom_design"`
	AdditionalComments string            `json:"additional_comments"`
}

func (req quoteRequest) validate() error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return &domain.FieldError{Field: "name", Message: "is required"}
	case !strings.Contains(req.Email, "@"):
		return &domain.FieldError{Field: "email", Message: "must be a valid email address"}
	case strings.TrimSpace(req.ProductType) == "":
		return &domain.FieldError{Field: "product_type", Message: "is required"}
	case req.Quantity < 1:
		return &domain.FieldError{Field: "quantity", Message: "must be at least 1"}
	case req.Dimensions.Length < 0 || req.Dimensions.Width < 0 || req.Dimensions.Height < 0:
		return &domain.FieldError{Field: "dimensions", Message: "must not be negative"}
	}
	return nil
}

// HandleSubmit is the public quote-request endpoint.
func (h *QuoteHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.store.Create(r.Context(), &domain.Quote{
		Name:               req.Name,
		Email:              req.Email,
		Company:            req.Company,
		Phone:              req.Phone,
		ProductType:        req.ProductType,
		Quantity:           req.Quantity,
		Dimensions:         req.Dimensions,
		Material:           req.Material,
		PrintingRequired:   req.PrintingRequired,
		CustomDesign:       req.CustomDesign,
		AdditionalComments: req.AdditionalComments,
	})
	if err != nil {
		h.logger.Error("failed to save quote", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("quote submitted", "quote_id", quote.ID, "email", quote.Email, "product_type", quote.ProductType)
	h.writeJSON(w, http.StatusCreated, quote)
}

func (h *QuoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r, func(s string) error {
		_, err := domain.ParseQuoteStatus(s)
		return err
	})
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quotes, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list quotes", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, newListPage(quotes, total, filter))
}

func (h *QuoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	quote, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to get quote", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if quote == nil {
		h.writeError(w, http.StatusNotFound, "quote not found")
		return
	}

	h.writeJSON(w, http.StatusOK, quote)
}

type quoteStatusRequest struct {
	Status string `json:"status"`
}

func (h *QuoteHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req quoteStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := domain.ParseQuoteStatus(req.Status)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := h.store.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		h.logger.Error("failed to update quote status", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if quote == nil {
		h.writeError(w, http.StatusNotFound, "quote not found")
		return
	}

	h.writeJSON(w, http.StatusOK, quote)
}

func (h *QuoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to delete quote", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !deleted {
		h.writeError(w, http.StatusNotFound, "quote not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *QuoteHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data, h.logger)
}

func (h *QuoteHandler) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message}, h.logger)
}
