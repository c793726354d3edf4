// Package pagination computes page windows and the compact
// page-number sequence shown under a product grid.
package pagination

// Ellipsis marks a collapsed run of page numbers in a Plan result.
const Ellipsis = -1

// Plan returns the page numbers to display for the given total and
// current page, with Ellipsis markers where the shown window does not
// connect contiguously to the first or last page. Page 1 is always
// present; the last page is appended whenever more than one page
// exists. The current page is not clamped here.
func Plan(totalPages, currentPage int) []int {
	pages := []int{1}

	rangeStart := max(2, currentPage-1)
	rangeEnd := min(totalPages-1, currentPage+1)

	// Near either edge, widen the window so the edge side always shows
	// four consecutive numbers.
	if currentPage <= 3 {
		rangeEnd = min(4, totalPages-1)
	} else if currentPage >= totalPages-2 {
		rangeStart = max(totalPages-3, 2)
	}

	if rangeStart > 2 {
		pages = append(pages, Ellipsis)
	}

	for i := rangeStart; i <= rangeEnd; i++ {
		pages = append(pages, i)
	}

	if rangeEnd < totalPages-1 {
		pages = append(pages, Ellipsis)
	}

	if totalPages > 1 {
		pages = append(pages, totalPages)
	}

	return pages
}

// TotalPages returns ceil(totalItems / perPage). Zero items still
// occupy one page.
func TotalPages(totalItems, perPage int) int {
	if perPage < 1 {
		return 1
	}
	pages := (totalItems + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}

// Window returns the half-open [start, end) index range of the items
// shown on page. End is clipped to totalItems; an out-of-range page
// yields an empty window.
func Window(totalItems, page, perPage int) (start, end int) {
	end = page * perPage
	start = end - perPage
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}
	return start, end
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
