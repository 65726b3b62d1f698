package utils

import (
	"strconv"
	"strings"
)

// Page describes one page of a paginated list.
type Page struct {
	Number     int
	PerPage    int
	Total      int64
	TotalPages int
}

// NewPage resolves a requested page the lenient way: anything that is not a
// positive integer means the first page, and numbers past the end clamp to
// the last page. An empty list still has one (empty) page.
func NewPage(requested string, perPage int, total int64) Page {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages == 0 {
		totalPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(requested))
	if err != nil {
		number = 1
	} else if number < 1 || number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

func (p Page) Previous() int {
	return p.Number - 1
}

func (p Page) Next() int {
	return p.Number + 1
}
