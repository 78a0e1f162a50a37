package utils

import (
	"strconv"
)

// Page describes one page of a listing. Size 0 means "everything".
type Page struct {
	Number int
	Size   int
}

// ParsePage reads page/size query values. Pagination is only enabled when
// the caller sent at least one of them; a missing or bad page means 1 and a
// missing or bad size means defSize.
func ParsePage(pageStr, sizeStr string, defSize int) (Page, bool) {
	if pageStr == "" && sizeStr == "" {
		return Page{}, false
	}
	return Page{Number: atoiMin(pageStr, 1), Size: atoiOr(sizeStr, defSize)}, true
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func atoiMin(s string, min int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < min {
		return min
	}
	return n
}

func (p Page) Offset() int {
	if p.Size == 0 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// TotalPages is ceil(total/size), never below zero.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Window returns the [start,end) bounds of page p inside n items.
func (p Page) Window(n int) (int, int) {
	start := p.Offset()
	if start > n {
		start = n
	}
	end := start + p.Size
	if p.Size == 0 || end > n {
		end = n
	}
	return start, end
}
