package domain

// DateOrder is the creation-time ordering of a task listing.
type DateOrder string

const (
	DateOrderAsc  DateOrder = "asc"
	DateOrderDesc DateOrder = "desc"
)

// StatusFilter restricts a task listing by completion state.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusCompleted StatusFilter = "completed"
	StatusPending   StatusFilter = "pending"
)

// Listing bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
	// SearchFetchCap bounds the rows fetched before in-memory search filtering.
	SearchFetchCap = 500
)

// TaskFilters selects and pages a user's tasks. Zero values mean "use the default".
type TaskFilters struct {
	DateOrder    DateOrder
	StatusFilter StatusFilter
	SearchTerm   string
	Limit        int
	Page         int
}

// Normalize returns a copy with defaults applied and out-of-range values
// replaced by their defaults.
func (f TaskFilters) Normalize() TaskFilters {
	if f.DateOrder != DateOrderAsc {
		f.DateOrder = DateOrderDesc
	}
	switch f.StatusFilter {
	case StatusCompleted, StatusPending:
	default:
		f.StatusFilter = StatusAll
	}
	if f.Limit <= 0 || f.Limit > MaxPageSize {
		f.Limit = DefaultPageSize
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return f
}

// Offset is the index of the first row of the page.
func (f TaskFilters) Offset() int {
	return (f.Page - 1) * f.Limit
}

// FetchLimit is the number of rows the store must return to cover the page:
// the search cap when searching, otherwise every row up to the end of the page.
func (f TaskFilters) FetchLimit() int {
	if f.SearchTerm != "" {
		return SearchFetchCap
	}
	return f.Page * f.Limit
}
