package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// GetPageParam reads the 1-based "page" query parameter. Missing or
// non-positive values yield 0 so callers can tell "not given" apart.
func GetPageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page <= 0 {
		return 0
	}
	return page
}

// PageBounds returns the half-open slice range [pageSize*(page-1),
// pageSize*page) clipped to length. Pages past the end give an empty range.
func PageBounds(page, pageSize, length int) (int, int) {
	if page <= 0 || pageSize <= 0 {
		return 0, 0
	}
	// Checked before multiplying so huge pages cannot overflow.
	if page-1 > length/pageSize {
		return length, length
	}
	start := pageSize * (page - 1)
	if start >= length {
		return length, length
	}
	end := start + pageSize
	if end > length {
		end = length
	}
	return start, end
}

// TotalPages is ceil(total/pageSize), never below 1 so an empty grid still
// renders as page 1 of 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	pages := total / pageSize
	if total%pageSize > 0 {
		pages++
	}
	return pages
}
