package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/craftpack/packstore/internal/domain"
)

type fakeContactStore struct {
	contacts []domain.Contact
}

func (f *fakeContactStore) Create(_ context.Context, contact *domain.Contact) (*domain.Contact, error) {
	created := *contact
	created.ID = fmt.Sprintf("contact-%d", len(f.contacts)+1)
	created.Status = domain.ContactStatusNew
	created.CreatedAt = time.Now().UTC()
	f.contacts = append(f.contacts, created)
	return &created, nil
}

func (f *fakeContactStore) List(_ context.Context, filter ListFilter) ([]domain.Contact, int, error) {
	var matched []domain.Contact
	for _, c := range f.contacts {
		if filter.Status == "" || string(c.Status) == filter.Status {
			matched = append(matched, c)
		}
	}

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeContactStore) GetByID(_ context.Context, id string) (*domain.Contact, error) {
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			return &f.contacts[i], nil
		}
	}
	return nil, nil
}

func (f *fakeContactStore) UpdateStatus(_ context.Context, id string, status domain.ContactStatus) (*domain.Contact, error) {
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			f.contacts[i].Status = status
			return &f.contacts[i], nil
		}
	}
	return nil, nil
}

func (f *fakeContactStore) Delete(_ context.Context, id string) (bool, error) {
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			f.contacts = append(f.contacts[:i], f.contacts[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func newContactTestHandler(store ContactStore) *ContactHandler {
	return NewContactHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestContactHandler_HandleSubmit(t *testing.T) {
	t.Run("accepts a valid submission", func(t *testing.T) {
		store := &fakeContactStore{}
		handler := newContactTestHandler(store)

		body := `{"name":"Ada","email":"ada@example.com","subject":"Bulk order","message":"Do you ship overseas?"}`
		req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
		rec := httptest.NewRecorder()

		handler.HandleSubmit(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp submitResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Success || resp.ID == "" {
			t.Errorf("unexpected response: %+v", resp)
		}
		if store.contacts[0].Status != domain.ContactStatusNew {
			t.Errorf("new contact must start with status new")
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		handler := newContactTestHandler(&fakeContactStore{})

		cases := []string{
			`{"email":"a@b.c","subject":"s","message":"m"}`,
			`{"name":"A","email":"not-an-email","subject":"s","message":"m"}`,
			`{"name":"A","email":"a@b.c","message":"m"}`,
			`{"name":"A","email":"a@b.c","subject":"s"}`,
		}
		for _, body := range cases {
			req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
			rec := httptest.NewRecorder()

			handler.HandleSubmit(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400 for %s, got %d", body, rec.Code)
			}
		}
	})
}

func TestContactHandler_HandleList_Pagination(t *testing.T) {
	store := &fakeContactStore{}
	handler := newContactTestHandler(store)
	ctx := context.Background()

	// 25 contacts with status new, 5 archived.
	for i := 0; i < 25; i++ {
		_, _ = store.Create(ctx, &domain.Contact{Name: "N", Email: "n@example.com", Subject: "s", Message: "m"})
	}
	for i := 0; i < 5; i++ {
		c, _ := store.Create(ctx, &domain.Contact{Name: "A", Email: "a@example.com", Subject: "s", Message: "m"})
		_, _ = store.UpdateStatus(ctx, c.ID, domain.ContactStatusArchived)
	}

	t.Run("status filter with page and limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/contacts?status=new&page=2&limit=10", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var page ListPage[domain.Contact]
		if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if len(page.Data) != 10 {
			t.Errorf("expected 10 records on page 2, got %d", len(page.Data))
		}
		if page.Total != 25 {
			t.Errorf("expected total 25, got %d", page.Total)
		}
		if page.Pages != 3 {
			t.Errorf("expected pages = ceil(25/10) = 3, got %d", page.Pages)
		}
	})

	t.Run("last page is partial", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/contacts?status=new&page=3&limit=10", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		var page ListPage[domain.Contact]
		if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(page.Data) != 5 {
			t.Errorf("expected 5 records on the last page, got %d", len(page.Data))
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/contacts?status=bogus", nil)
		rec := httptest.NewRecorder()

		handler.HandleList(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestContactHandler_AdminDetailUpdateDelete(t *testing.T) {
	store := &fakeContactStore{}
	handler := newContactTestHandler(store)
	contact, _ := store.Create(context.Background(), &domain.Contact{Name: "Ada", Email: "ada@example.com", Subject: "s", Message: "m"})

	t.Run("get by id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/contacts/"+contact.ID, nil)
		req.SetPathValue("id", contact.ID)
		rec := httptest.NewRecorder()

		handler.HandleGet(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("update status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/admin/contacts/"+contact.ID, strings.NewReader(`{"status":"read"}`))
		req.SetPathValue("id", contact.ID)
		rec := httptest.NewRecorder()

		handler.HandleUpdateStatus(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if store.contacts[0].Status != domain.ContactStatusRead {
			t.Errorf("status not updated: %s", store.contacts[0].Status)
		}
	})

	t.Run("missing id returns 404", func(t *testing.T) {
		for _, run := range []func(http.ResponseWriter, *http.Request){handler.HandleGet, handler.HandleDelete} {
			req := httptest.NewRequest(http.MethodGet, "/admin/contacts/ghost", nil)
			req.SetPathValue("id", "ghost")
			rec := httptest.NewRecorder()

			run(rec, req)

			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", rec.Code)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/admin/contacts/"+contact.ID, nil)
		req.SetPathValue("id", contact.ID)
		rec := httptest.NewRecorder()

		handler.HandleDelete(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if len(store.contacts) != 0 {
			t.Error("contact not deleted")
		}
	})
}
