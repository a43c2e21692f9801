package models

// PaginatedLetters represents one page of a letter listing.
type PaginatedLetters struct {
	Letters      []Letter `json:"letters"`
	Page         uint32   `json:"page"`
	PageSize     uint32   `json:"page_size"`
	TotalPages   uint32   `json:"total_pages"`
	TotalLetters uint32   `json:"total_letters"`
	HasNext      bool     `json:"has_next"`
	HasPrev      bool     `json:"has_prev"`
}

// NewPaginatedLetters creates a new paginated letters response
func NewPaginatedLetters(letters []Letter, page, pageSize, total uint32) *PaginatedLetters {
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	return &PaginatedLetters{
		Letters:      letters,
		Page:         page,
		PageSize:     pageSize,
		TotalPages:   totalPages,
		TotalLetters: total,
		HasNext:      page < totalPages,
		HasPrev:      page > 1,
	}
}
