package helpers

// PageInfo describes one page of a list response
type PageInfo struct {
	CurrentPage int `json:"currentPage" example:"1"`
	TotalPages  int `json:"totalPages" example:"3"`
	PageSize    int `json:"pageSize" example:"20"`
	TotalItems  int `json:"totalItems" example:"57"`
}

// Paginate returns the requested 1-based page of items. Pages past the end
// are empty, never nil.
func Paginate[T any](items []T, page, size int) ([]T, PageInfo) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages == 0 {
		totalPages = 1
	}

	start := min((page-1)*size, total)
	end := min(start+size, total)

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, PageInfo{CurrentPage: page, TotalPages: totalPages, PageSize: size, TotalItems: total}
}
