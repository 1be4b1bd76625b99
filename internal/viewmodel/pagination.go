package viewmodel

// PageItem is one slot of the pagination bar: a page number or an ellipsis.
type PageItem struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// PageWindow lays out the pagination bar: page 1, the pages next to current,
// and the last page, with an ellipsis wherever pages are skipped.
func PageWindow(current, total int) []PageItem {
	items := []PageItem{{Page: 1, Current: current == 1}}

	start := max(2, current-1)
	end := min(total-1, current+1)

	if start > 2 {
		items = append(items, PageItem{Ellipsis: true})
	}
	for p := start; p <= end; p++ {
		items = append(items, PageItem{Page: p, Current: p == current})
	}
	if end < total-1 {
		items = append(items, PageItem{Ellipsis: true})
	}
	if total > 1 {
		items = append(items, PageItem{Page: total, Current: total == current})
	}
	return items
}
