package domain

import "time"

type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusReplied  ContactStatus = "replied"
	ContactStatusArchived ContactStatus = "archived"
)

func ParseContactStatus(s string) (ContactStatus, error) {
	switch st := ContactStatus(s); st {
	case ContactStatusNew, ContactStatusRead, ContactStatusReplied, ContactStatusArchived:
		return st, nil
	default:
		return "", &FieldError{Field: "status", Message: "unknown contact status"}
	}
}

// Contact is a submission from the public contact form.
type Contact struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type QuoteStatus string

const (
	QuoteStatusNew      QuoteStatus = "new"
	QuoteStatusReviewed QuoteStatus = "reviewed"
	QuoteStatusQuoted   QuoteStatus = "quoted"
	QuoteStatusClosed   QuoteStatus = "closed"
)

func ParseQuoteStatus(s string) (QuoteStatus, error) {
	switch st := QuoteStatus(s); st {
	case QuoteStatusNew, QuoteStatusReviewed, QuoteStatusQuoted, QuoteStatusClosed:
		return st, nil
	default:
		return "", &FieldError{Field: "status", Message: "unknown quote status"}
	}
}

// Dimensions of the requested packaging, in millimeters.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Quote is a custom packaging quote request.
type Quote struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	Email              string      `json:"email"`
	Company            string      `json:"company,omitempty"`
	Phone              string      `json:"phone,omitempty"`
	ProductType        string      `json:"product_type"`
	Quantity           int         `json:"quantity"`
	Dimensions         Dimensions  `json:"dimensions"`
	Material           string      `json:"material,omitempty"`
	PrintingRequired   bool        `json:"printing_required"`
	CustomDesign       bool        `json:"custom_design"`
	AdditionalComments string      `json:"additional_comments,omitempty"`
	Status             QuoteStatus `json:"status"`
	CreatedAt          time.Time   `json:"created_at"`
}

// FieldError is a validation failure on a single submission field,
// surfaced as a 400 at the HTTP boundary.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}
