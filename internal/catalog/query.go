package catalog

import (
	"cmp"
	"slices"
	"strings"
)

// Query derives one result page from the collection. It never modifies books
// and returns the same page for the same inputs.
func Query(books []Book, spec QuerySpec) ResultPage {
	search := strings.ToLower(spec.Search)
	author := strings.ToLower(spec.Filters.Author)

	matched := make([]Book, 0, len(books))
	for _, b := range books {
		if !matchesSearch(b, search) {
			continue
		}
		if spec.Filters.Category != "" && b.Category != spec.Filters.Category {
			continue
		}
		if author != "" && !strings.Contains(strings.ToLower(b.Author), author) {
			continue
		}
		if !matchesAvailability(b, spec.Filters.Availability) {
			continue
		}
		if !spec.Filters.PublishedYear.contains(b.PublishedYear) {
			continue
		}
		matched = append(matched, b)
	}

	sortBooks(matched, spec.Sort)

	pageSize := spec.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	total := len(matched)

	return ResultPage{
		Books:      paginate(matched, spec.Page, pageSize),
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}

func matchesSearch(b Book, lowered string) bool {
	if lowered == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Title), lowered) ||
		strings.Contains(strings.ToLower(b.Author), lowered) ||
		strings.Contains(strings.ToLower(b.ISBN), lowered)
}

func matchesAvailability(b Book, a Availability) bool {
	switch a {
	case AvailabilityAvailable:
		return b.IsAvailable()
	case AvailabilityUnavailable:
		return !b.IsAvailable()
	default:
		return true
	}
}

func (r YearRange) contains(year int) bool {
	if r.Min != nil && year < *r.Min {
		return false
	}
	if r.Max != nil && year > *r.Max {
		return false
	}
	return true
}

func sortBooks(books []Book, s Sort) {
	compare := comparator(s.Field)
	if s.Direction == Desc {
		slices.SortStableFunc(books, func(a, b Book) int { return compare(b, a) })
		return
	}
	slices.SortStableFunc(books, compare)
}

func comparator(field SortField) func(a, b Book) int {
	switch field {
	case SortByAuthor:
		return byFold(func(b Book) string { return b.Author })
	case SortByCategory:
		return byFold(func(b Book) string { return b.Category })
	case SortByPublishedYear:
		return func(a, b Book) int { return cmp.Compare(a.PublishedYear, b.PublishedYear) }
	default:
		return byFold(func(b Book) string { return b.Title })
	}
}

func byFold(key func(Book) string) func(a, b Book) int {
	return func(a, b Book) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

// paginate returns the 1-based page; pages outside the result are empty.
func paginate(books []Book, page, pageSize int) []Book {
	if page < 1 {
		return []Book{}
	}
	start := (page - 1) * pageSize
	if start >= len(books) {
		return []Book{}
	}
	end := min(start+pageSize, len(books))
	return books[start:end]
}

func totalPages(total, pageSize int) int {
	if total == 0 || pageSize < 1 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
