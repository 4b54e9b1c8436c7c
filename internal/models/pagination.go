package models

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// Page is a window into a filtered, sorted listing.
type Page struct {
	Number int
	Limit  int
}

func (p Page) Skip() int64 {
	if p.Number < 1 {
		return 0
	}
	return int64((p.Number - 1) * p.Limit)
}

func NewPagination(p Page, total int64) Pagination {
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Pagination{Page: p.Number, Limit: p.Limit, Total: total, Pages: pages}
}
