// Package domain provides types shared by the domain packages.
package domain

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs a case-insensitive match on name and code fields
	Search string

	// OrderBy specifies sorting (e.g., "name", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// DefaultListFilter returns the first page with the default size.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: DefaultLimit}
}

// Normalize clamps paging values into their allowed ranges.
func (f *ListFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// Page cuts a page out of an already filtered slice. Used by the in-memory store.
func Page[T any](all []T, f ListFilter) ListResult[T] {
	f.Normalize()
	res := ListResult[T]{TotalCount: int64(len(all)), Limit: f.Limit, Offset: f.Offset, Items: []T{}}
	if f.Offset >= len(all) {
		return res
	}
	end := f.Offset + f.Limit
	if end > len(all) {
		end = len(all)
	}
	res.Items = all[f.Offset:end]
	return res
}
