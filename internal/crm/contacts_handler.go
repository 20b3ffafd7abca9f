package crm

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/craftpack/packstore/internal/domain"
)

// ContactStore is the persistence port for contact submissions.
type ContactStore interface {
	Create(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Contact, int, error)
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	UpdateStatus(ctx context.Context, id string, status domain.ContactStatus) (*domain.Contact, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ContactHandler struct {
	store  ContactStore
	logger *slog.Logger
}

func NewContactHandler(store ContactStore, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{store: store, logger: logger}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (req contactRequest) validate() error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return &domain.FieldError{Field: "name", Message: "is required"}
	case !strings.Contains(req.Email, "@"):
		return &domain.FieldError{Field: "email", Message: "must be a valid email address"}
	case strings.TrimSpace(req.Subject) == "":
		return &domain.FieldError{Field: "subject", Message: "is required"}
	case strings.TrimSpace(req.Message) == "":
		return &domain.FieldError{Field: "message", Message: "is required"}
	}
	return nil
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HandleSubmit is the public contact-form endpoint.
func (h *ContactHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.validate(); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contact, err := h.store.Create(r.Context(), &domain.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.logger.Error("failed to save contact", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("contact submitted", "contact_id", contact.ID, "email", contact.Email)
	h.writeJSON(w, http.StatusCreated, submitResponse{
		Success: true,
		Message: "thanks, we will get back to you shortly",
		ID:      contact.ID,
	})
}

func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r, func(s string) error {
		_, err := domain.ParseContactStatus(s)
		return err
	})
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contacts, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list contacts", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, newListPage(contacts, total, filter))
}

func (h *ContactHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	contact, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to get contact", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if contact == nil {
		h.writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	h.writeJSON(w, http.StatusOK, contact)
}

type contactStatusRequest struct {
	Status string `json:"status"`
}

func (h *ContactHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req contactStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, err := domain.ParseContactStatus(req.Status)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contact, err := h.store.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		h.logger.Error("failed to update contact status", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if contact == nil {
		h.writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	h.writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("failed to delete contact", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !deleted {
		h.writeError(w, http.StatusNotFound, "contact not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ContactHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data, h.logger)
}

func (h *ContactHandler) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message}, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// parseListFilter reads page/limit/status query params. The status
// value, when present, is validated against the entity's closed set.
func parseListFilter(r *http.Request, validateStatus func(string) error) (ListFilter, error) {
	q := r.URL.Query()

	filter := ListFilter{Status: q.Get("status")}
	if filter.Status != "" {
		if err := validateStatus(filter.Status); err != nil {
			return ListFilter{}, err
		}
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return ListFilter{}, &domain.FieldError{Field: "page", Message: "must be an integer"}
		}
		filter.Page = page
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return ListFilter{}, &domain.FieldError{Field: "limit", Message: "must be an integer"}
		}
		filter.Limit = limit
	}

	return filter.Normalize(), nil
}
