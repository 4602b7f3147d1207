package catalog

// State is the catalog view state: the current QuerySpec plus the metadata of
// the last result. It is a value; Apply returns the next state.
type State struct {
	Search     string
	Filters    Filters
	Sort       Sort
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	Loading    bool
	Err        string
}

func NewState() State {
	spec := DefaultQuerySpec()
	return State{
		Filters:  spec.Filters,
		Sort:     spec.Sort,
		Page:     spec.Page,
		PageSize: spec.PageSize,
	}
}

// Spec projects the query part of the state.
func (s State) Spec() QuerySpec {
	return QuerySpec{
		Search:   s.Search,
		Filters:  s.Filters,
		Sort:     s.Sort,
		Page:     s.Page,
		PageSize: s.PageSize,
	}
}

// Action is a state transition. The set of actions is closed.
type Action interface {
	apply(State) State
}

// SetSearch replaces the search text and returns to the first page.
type SetSearch struct {
	Query string
}

// FilterPatch carries the filter fields to change; nil fields are left alone.
type FilterPatch struct {
	Category      *string
	Author        *string
	Availability  *Availability
	PublishedYear *YearRange
}

// SetFilters merges a partial filter update and returns to the first page.
type SetFilters struct {
	Patch FilterPatch
}

// SetSorting changes the sort key and direction and returns to the first page.
type SetSorting struct {
	Field     SortField
	Direction SortDirection
}

// SetPagination merges pagination fields; zero fields are left alone.
type SetPagination struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
}

type ResetFilters struct{}

type SetLoading struct {
	Loading bool
}

// SetError records a failed fetch; an empty Err clears it.
type SetError struct {
	Err string
}

// SetResult records the totals of a finished fetch.
type SetResult struct {
	Result ResultPage
}

// Apply runs one transition.
func (s State) Apply(a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a SetSearch) apply(s State) State {
	s.Search = a.Query
	s.Page = 1
	return s
}

func (a SetFilters) apply(s State) State {
	p := a.Patch
	if p.Category != nil {
		s.Filters.Category = *p.Category
	}
	if p.Author != nil {
		s.Filters.Author = *p.Author
	}
	if p.Availability != nil {
		s.Filters.Availability = *p.Availability
	}
	if p.PublishedYear != nil {
		s.Filters.PublishedYear = *p.PublishedYear
	}
	s.Page = 1
	return s
}

func (a SetSorting) apply(s State) State {
	s.Sort = Sort{Field: a.Field, Direction: a.Direction}
	s.Page = 1
	return s
}

func (a SetPagination) apply(s State) State {
	if a.Total > 0 {
		s.Total = a.Total
	}
	if a.TotalPages > 0 {
		s.TotalPages = a.TotalPages
	}
	if a.Page > 0 {
		s.Page = a.Page
	}
	if a.PageSize > 0 && a.PageSize != s.PageSize {
		s.PageSize = a.PageSize
		s.TotalPages = totalPages(s.Total, s.PageSize)
		if a.Page == 0 {
			s.Page = min(s.Page, max(s.TotalPages, 1))
		}
	}
	return s
}

func (ResetFilters) apply(s State) State {
	s.Search = ""
	s.Filters = NewState().Filters
	s.Page = 1
	return s
}

func (a SetLoading) apply(s State) State {
	s.Loading = a.Loading
	return s
}

func (a SetError) apply(s State) State {
	s.Err = a.Err
	s.Loading = false
	return s
}

func (a SetResult) apply(s State) State {
	s.Total = a.Result.Total
	s.TotalPages = a.Result.TotalPages
	s.Loading = false
	return s
}
