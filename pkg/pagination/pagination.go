package pagination

// MaxPerPage caps the page size a caller can ask for.
const MaxPerPage = 100

// Params holds a requested page. Zero values mean "everything".
type Params struct {
	Page    int
	PerPage int
}

// New normalizes page and perPage. A non-positive perPage disables paging.
func New(page, perPage int) Params {
	if perPage <= 0 {
		return Params{}
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page < 1 {
		page = 1
	}
	return Params{Page: page, PerPage: perPage}
}

// Enabled reports whether p selects a single page.
func (p Params) Enabled() bool {
	return p.PerPage > 0
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	if !p.Enabled() {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Result wraps one page of items.
type Result[T any] struct {
	Data       []T
	TotalCount int
	Page       int
	PerPage    int
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// Paginate slices items down to the page p selects. Pages past the end
// yield an empty Data with the totals still filled in.
func Paginate[T any](items []T, p Params) Result[T] {
	total := len(items)
	if !p.Enabled() {
		return Result[T]{Data: items, TotalCount: total, Page: 1, PerPage: total, TotalPages: 1}
	}

	totalPages := total / p.PerPage
	if total%p.PerPage > 0 {
		totalPages++
	}

	start := min(p.Offset(), total)
	end := min(start+p.PerPage, total)

	return Result[T]{
		Data:       items[start:end],
		TotalCount: total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
