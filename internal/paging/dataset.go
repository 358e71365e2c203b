package paging

// Dataset is a fixed sequence of items viewed one page at a time.
// The cursor is the index of the first item on the current page.
type Dataset[T any] struct {
	items  []T
	cursor int
	size   int
}

// NewDataset copies items; the dataset never changes afterwards.
// A page size below 1 is treated as 1. start is rounded down to the
// page containing it and clamped to [0, start of the last page].
func NewDataset[T any](items []T, start, size int) *Dataset[T] {
	if size < 1 {
		size = 1
	}
	d := &Dataset[T]{
		items: append([]T(nil), items...),
		size:  size,
	}
	if start > d.lastStart() {
		start = d.lastStart()
	}
	if start < 0 {
		start = 0
	}
	d.cursor = start - start%size
	return d
}

// Len is the number of items.
func (d *Dataset[T]) Len() int { return len(d.items) }

// PageSize is the number of items per page.
func (d *Dataset[T]) PageSize() int { return d.size }

// Cursor is the index of the first item on the current page. It is
// always a multiple of PageSize.
func (d *Dataset[T]) Cursor() int { return d.cursor }

// clamped returns the cursor limited to valid item indices.
func (d *Dataset[T]) clamped() int {
	c := d.cursor
	if c > len(d.items)-1 {
		c = len(d.items) - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

// Slice returns the items of the current page.
func (d *Dataset[T]) Slice() []T {
	if len(d.items) == 0 {
		return []T{}
	}
	start := d.clamped()
	end := start + d.size
	if end > len(d.items) {
		end = len(d.items)
	}
	return append([]T(nil), d.items[start:end]...)
}

// PageCount is ceil(len/size).
func (d *Dataset[T]) PageCount() int {
	return (len(d.items) + d.size - 1) / d.size
}

// PageNumber is the 1-based number of the current page.
func (d *Dataset[T]) PageNumber() int {
	return d.clamped()/d.size + 1
}

// lastStart is the cursor of the final page.
func (d *Dataset[T]) lastStart() int {
	if len(d.items) == 0 {
		return 0
	}
	return (d.PageCount() - 1) * d.size
}

func (d *Dataset[T]) advance() {
	next := d.cursor + d.size
	if next > d.lastStart() {
		next = d.lastStart()
	}
	if next > d.cursor {
		d.cursor = next
	}
}

func (d *Dataset[T]) retreat() {
	d.cursor -= d.size
	if d.cursor < 0 {
		d.cursor = 0
	}
}
