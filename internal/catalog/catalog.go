package catalog

import (
	"encoding/json"
	"errors"
)

// ErrNotFound is returned when a book is not in the collection.
var ErrNotFound = errors.New("book not found")

// DefaultPageSize is the page size used by the catalog grid.
const DefaultPageSize = 12

// Book is a catalog entry. Availability is derived from AvailableCopies.
type Book struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	Category        string `json:"category"`
	Description     string `json:"description,omitempty"`
	CoverURL        string `json:"cover_url,omitempty"`
	PublishedYear   int    `json:"published_year"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// IsAvailable reports whether at least one copy can be borrowed.
func (b Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

func (b Book) MarshalJSON() ([]byte, error) {
	type plain Book
	return json.Marshal(struct {
		plain
		IsAvailable bool `json:"is_available"`
	}{plain(b), b.IsAvailable()})
}

type Availability string

const (
	AvailabilityAll         Availability = "all"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

type SortField string

const (
	SortByTitle         SortField = "title"
	SortByAuthor        SortField = "author"
	SortByPublishedYear SortField = "published_year"
	SortByCategory      SortField = "category"
)

type SortDirection string

const (
	Asc  SortDirection = "asc"
	Desc SortDirection = "desc"
)

// YearRange bounds are inclusive; a nil bound is open.
type YearRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

type Filters struct {
	Category      string       `json:"category"`
	Author        string       `json:"author"`
	Availability  Availability `json:"availability"`
	PublishedYear YearRange    `json:"published_year"`
}

type Sort struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// QuerySpec is the combined search, filter, sort and pagination input of one catalog query.
type QuerySpec struct {
	Search   string  `json:"search"`
	Filters  Filters `json:"filters"`
	Sort     Sort    `json:"sort"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// DefaultQuerySpec matches everything, sorted by title, first page.
func DefaultQuerySpec() QuerySpec {
	return QuerySpec{
		Filters:  Filters{Availability: AvailabilityAll},
		Sort:     Sort{Field: SortByTitle, Direction: Asc},
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// ResultPage is one page of a query plus the pre-pagination totals.
type ResultPage struct {
	Books      []Book `json:"books"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
}

// Year is a helper for building YearRange bounds.
func Year(y int) *int {
	return &y
}
