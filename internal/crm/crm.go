// Package crm holds the contact-form and quote-request endpoints: the
// public submission handlers and the admin list/detail/update/delete
// surface behind the gateway's authorization check.
package crm

// ListFilter is the common admin list query: optional status filter
// plus page/limit pagination.
type ListFilter struct {
	Status string
	Page   int
	Limit  int
}

// Normalize clamps pagination to sane values.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// ListPage is the paginated response envelope for admin lists.
type ListPage[T any] struct {
	Data  []T `json:"data"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

func newListPage[T any](data []T, total int, f ListFilter) ListPage[T] {
	if data == nil {
		data = []T{}
	}
	pages := (total + f.Limit - 1) / f.Limit
	return ListPage[T]{
		Data:  data,
		Total: total,
		Page:  f.Page,
		Limit: f.Limit,
		Pages: pages,
	}
}
