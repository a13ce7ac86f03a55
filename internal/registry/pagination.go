package registry

// PaginationContext carries a paged request and receives the total row count.
// It is used when serving paged API requests; programmatic callers pass plain
// start/pageLen values instead.
type PaginationContext struct {
	Start int
	Count int // rows per page; <= 0 means unlimited
	Limit int // hard cap on rows scanned; <= 0 means none

	length int
}

// NewPaginationContext creates a context for the page starting at start.
func NewPaginationContext(start, count int) *PaginationContext {
	return &PaginationContext{Start: start, Count: count}
}

// SetLength records the total number of rows available.
func (p *PaginationContext) SetLength(n int) { p.length = n }

// Length returns the total number of rows available, as recorded by the store.
func (p *PaginationContext) Length() int { return p.length }

// Window returns the [from, to) bounds of the page over total rows.
func (p *PaginationContext) Window(total int) (int, int) {
	if p.Limit > 0 && total > p.Limit {
		total = p.Limit
	}
	return window(p.Start, p.Count, total)
}

// window clamps [start, start+pageLen) to [0, total]. pageLen < 0 means all.
func window(start, pageLen, total int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if pageLen >= 0 && start+pageLen < total {
		end = start + pageLen
	}
	return start, end
}

// Page slices items to the [start, start+pageLen) window. pageLen < 0 means all.
func Page[T any](items []T, start, pageLen int) []T {
	from, to := window(start, pageLen, len(items))
	return items[from:to]
}
