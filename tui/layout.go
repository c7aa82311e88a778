package tui

import "sort"

// Layout holds per-row heights (in terminal lines) and their prefix sums so
// the visible slice of a long list can be found without walking it.
type Layout struct {
	offsets []int // offsets[i] is the first line of row i; offsets[n] is the total
}

// Window is the slice of rows to render. Rows [Start, End) are drawn starting
// at line OffsetTop of a list that is TotalHeight lines tall.
type Window struct {
	Start       int
	End         int
	OffsetTop   int
	TotalHeight int
}

// NewLayout builds a layout for n rows. Heights below 1 count as 1.
func NewLayout(n int, height func(i int) int) Layout {
	offsets := make([]int, n+1)
	for i := 0; i < n; i++ {
		offsets[i+1] = offsets[i] + max(height(i), 1)
	}
	return Layout{offsets: offsets}
}

func (l Layout) Len() int {
	if len(l.offsets) == 0 {
		return 0
	}
	return len(l.offsets) - 1
}

func (l Layout) TotalHeight() int {
	if len(l.offsets) == 0 {
		return 0
	}
	return l.offsets[len(l.offsets)-1]
}

// Offset is the first line of row i. Offset(Len()) is the total height.
func (l Layout) Offset(i int) int {
	if len(l.offsets) == 0 || i <= 0 {
		return 0
	}
	if i >= len(l.offsets) {
		return l.TotalHeight()
	}
	return l.offsets[i]
}

func (l Layout) Height(i int) int {
	return l.Offset(i+1) - l.Offset(i)
}

// IndexAt returns the row covering line y, clamped to the valid rows.
func (l Layout) IndexAt(y int) int {
	n := l.Len()
	if n == 0 {
		return 0
	}
	// first row whose end is past y
	i := sort.Search(n, func(i int) bool { return l.offsets[i+1] > y })
	return min(i, n-1)
}

// MaxScroll is the largest useful scroll offset for a viewport of height
// lines.
func (l Layout) MaxScroll(height int) int {
	return max(l.TotalHeight()-height, 0)
}

// Window computes the rows intersecting [scrollTop, scrollTop+height) plus
// overscan rows on either side.
func (l Layout) Window(scrollTop, height, overscan int) Window {
	n := l.Len()
	total := l.TotalHeight()
	if n == 0 || height <= 0 {
		return Window{TotalHeight: total}
	}

	scrollTop = min(max(scrollTop, 0), l.MaxScroll(height))
	first := l.IndexAt(scrollTop)
	last := l.IndexAt(scrollTop + height - 1)

	start := max(first-overscan, 0)
	end := min(last+1+overscan, n)
	return Window{
		Start:       start,
		End:         end,
		OffsetTop:   l.offsets[start],
		TotalHeight: total,
	}
}
