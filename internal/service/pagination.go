package service

import "pizzapos/internal/domain"

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// Page is a normalised page request. Use NewPage to build one.
type Page struct {
	Number int
	Limit  int
}

func NewPage(number int, limit int) Page {
	if number < 1 {
		number = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) normalized() Page {
	return NewPage(p.Number, p.Limit)
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

func (p Page) Of(total int) domain.Pagination {
	pages := 0
	if total > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return domain.Pagination{Total: total, Page: p.Number, Limit: p.Limit, TotalPages: pages}
}
