package listing

type Page struct {
	Items       []Row `json:"items"`
	TotalItems  int   `json:"total_items"`
	PerPage     int   `json:"per_page"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
}

// Paginate slices the page-th (1-based) window of perPage rows. Out of
// range page numbers are clamped to the first or last page.
func Paginate(rows []Row, page, perPage int) *Page {
	if perPage <= 0 {
		perPage = 1
	}
	total := len(rows)
	totalPages := (total + perPage - 1) / perPage

	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	items := make([]Row, end-start)
	copy(items, rows[start:end])

	return &Page{
		Items:       items,
		TotalItems:  total,
		PerPage:     perPage,
		TotalPages:  totalPages,
		CurrentPage: page,
	}
}
