package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name        string
		totalPages  int
		currentPage int
		want        []int
	}{
		{"first page of ten", 10, 1, []int{1, 2, 3, 4, Ellipsis, 10}},
		{"third page of ten", 10, 3, []int{1, 2, 3, 4, Ellipsis, 10}},
		{"middle page", 10, 5, []int{1, Ellipsis, 4, 5, 6, Ellipsis, 10}},
		{"near the end", 10, 8, []int{1, Ellipsis, 7, 8, 9, 10}},
		{"last page of ten", 10, 10, []int{1, Ellipsis, 7, 8, 9, 10}},
		{"single page", 1, 1, []int{1}},
		{"two pages", 2, 1, []int{1, 2}},
		{"five pages no gaps", 5, 3, []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Plan(tt.totalPages, tt.currentPage))
		})
	}
}

func TestPlanNeverAdjacentEllipsesOrDuplicates(t *testing.T) {
	for totalPages := 1; totalPages <= 30; totalPages++ {
		for current := 1; current <= totalPages; current++ {
			plan := Plan(totalPages, current)

			seen := map[int]bool{}
			for i, entry := range plan {
				if entry == Ellipsis {
					if i > 0 {
						assert.NotEqual(t, Ellipsis, plan[i-1],
							"adjacent ellipses at totalPages=%d current=%d", totalPages, current)
					}
					continue
				}
				assert.False(t, seen[entry],
					"duplicate page %d at totalPages=%d current=%d", entry, totalPages, current)
				seen[entry] = true
			}

			assert.Equal(t, 1, plan[0])
			if totalPages > 1 {
				assert.Equal(t, totalPages, plan[len(plan)-1])
			}
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		items, perPage, want int
	}{
		{0, 12, 1},
		{1, 12, 1},
		{12, 12, 1},
		{13, 12, 2},
		{100, 12, 9},
		{48, 24, 2},
		{5, 0, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.items, tt.perPage), "items=%d perPage=%d", tt.items, tt.perPage)
	}
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name       string
		items      int
		page       int
		perPage    int
		start, end int
	}{
		{"first page", 40, 1, 12, 0, 12},
		{"second page", 40, 2, 12, 12, 24},
		{"short last page", 40, 4, 12, 36, 40},
		{"page past the end", 40, 9, 12, 40, 40},
		{"empty collection", 0, 1, 12, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := Window(tt.items, tt.page, tt.perPage)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
