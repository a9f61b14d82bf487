package model

const (
	DefaultPerPage = 20
	MaxPerPage     = 200
)

// ListFilter holds the query options every list endpoint understands.
type ListFilter struct {
	Search     string
	Idle       *bool
	OrderBy    string
	Descending bool
	Page       int
	PerPage    int
}

// Normalize clamps paging to sane values.
func (f *ListFilter) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PerPage <= 0 {
		f.PerPage = DefaultPerPage
	}
	if f.PerPage > MaxPerPage {
		f.PerPage = MaxPerPage
	}
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}
