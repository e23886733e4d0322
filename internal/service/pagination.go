package service

const (
	DefaultPage = 1
	DefaultSize = 10
	MinSize     = 10
	MaxSize     = 50
)

// PaginationLinks carries the page navigation hints of a listing response.
// Next is a heuristic: it is set iff the returned page is exactly full, so
// it can point past the data when the total row count is a multiple of the
// page size.
type PaginationLinks struct {
	Prev *int `json:"prev"`
	Next *int `json:"next"`
}

// NormalizePage clamps a requested page number to its lower bound
func NormalizePage(page int) int {
	if page < 1 {
		return DefaultPage
	}
	return page
}

// NormalizeSize clamps a requested page size into [MinSize, MaxSize]
func NormalizeSize(size int) int {
	if size < MinSize {
		return MinSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// pageLinks computes prev/next for a page that returned got rows
func pageLinks(page, size, got int) PaginationLinks {
	links := PaginationLinks{}

	if page > 1 {
		prev := page - 1
		links.Prev = &prev
	}
	if got > 0 && got == size {
		next := page + 1
		links.Next = &next
	}

	return links
}

// pageOffset translates a 1-based page number into a row offset
func pageOffset(page, size int) int {
	return (page - 1) * size
}
