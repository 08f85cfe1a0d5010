// model/page.go
package model

// PageResponse wraps a page of results with the usual paging metadata.
type PageResponse[T any] struct {
	Content    []T   `json:"content"`
	Number     int   `json:"number"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	First      bool  `json:"first"`
	Last       bool  `json:"last"`
}

func NewPage[T any](content []T, number, size int, total int64) PageResponse[T] {
	pages := 0
	if size > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return PageResponse[T]{
		Content:    content,
		Number:     number,
		Size:       size,
		TotalItems: total,
		TotalPages: pages,
		First:      number == 0,
		Last:       number >= pages-1,
	}
}
