package model

// Page is the envelope for paginated listings. Page numbers are zero-indexed;
// the metadata is enough for a client to tell whether further pages exist.
type Page[T any] struct {
	TotalElements int  `json:"totalElements"`
	TotalPages    int  `json:"totalPages"`
	Number        int  `json:"number"`
	Size          int  `json:"size"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
	Empty         bool `json:"empty"`
	Content       []T  `json:"content"`
}

func NewPage[T any](content []T, number, size, totalElements int) *Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = (totalElements + size - 1) / size
	}
	return &Page[T]{
		TotalElements: totalElements,
		TotalPages:    totalPages,
		Number:        number,
		Size:          size,
		First:         number == 0,
		Last:          number >= totalPages-1,
		Empty:         len(content) == 0,
		Content:       content,
	}
}
