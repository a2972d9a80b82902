// Package kdtree provides a static 2-D k-d tree over a point set,
// supporting closed-ball radius queries.
//
// The tree is built once in O(n log n) and is read-only afterwards, so
// any number of goroutines may query it concurrently.
package kdtree

import (
	"math"
	"sort"
)

// Tree is a balanced k-d tree over 2-D points.
//
// The tree borrows the coordinate slices passed to Build; callers must
// not mutate them while the tree is in use.
type Tree struct {
	xs, ys []float64

	// order holds point indices arranged so that for every subrange
	// the median element is the splitting node. The layout mirrors the
	// recursion: node = order[(lo+hi)/2], left subtree in [lo, mid),
	// right subtree in (mid, hi).
	order []uint32
}

// Build constructs a k-d tree over the given coordinates. xs and ys
// must have equal length. An empty point set yields a tree whose
// queries return no results.
func Build(xs, ys []float64) *Tree {
	n := len(xs)
	t := &Tree{
		xs:    xs,
		ys:    ys,
		order: make([]uint32, n),
	}
	for i := range t.order {
		t.order[i] = uint32(i)
	}
	t.build(0, n, 0)
	return t
}

// Len returns the number of indexed points.
func (t *Tree) Len() int { return len(t.order) }

// build recursively partitions order[lo:hi] around the median on the
// axis for this depth (0 = x, 1 = y).
func (t *Tree) build(lo, hi, depth int) {
	if hi-lo <= 1 {
		return
	}
	mid := (lo + hi) / 2
	t.selectMedian(lo, hi, mid, depth%2)
	t.build(lo, mid, depth+1)
	t.build(mid+1, hi, depth+1)
}

// coord returns the coordinate of point i on the given axis.
func (t *Tree) coord(i uint32, axis int) float64 {
	if axis == 0 {
		return t.xs[i]
	}
	return t.ys[i]
}

// selectMedian partially orders order[lo:hi] so that order[mid] holds
// the element that would be at position mid if the range were fully
// sorted on the axis. Quickselect with median-of-three pivoting keeps
// the build at O(n log n) expected time.
func (t *Tree) selectMedian(lo, hi, mid, axis int) {
	for hi-lo > 1 {
		p := t.partition(lo, hi, axis)
		switch {
		case p == mid:
			return
		case p < mid:
			lo = p + 1
		default:
			hi = p
		}
	}
}

// partition performs a Lomuto partition of order[lo:hi) and returns
// the final pivot position.
func (t *Tree) partition(lo, hi, axis int) int {
	o := t.order
	m := lo + (hi-lo)/2

	// Median-of-three: order lo, m, hi-1 so the pivot lands at hi-1.
	if t.coord(o[m], axis) < t.coord(o[lo], axis) {
		o[m], o[lo] = o[lo], o[m]
	}
	if t.coord(o[hi-1], axis) < t.coord(o[lo], axis) {
		o[hi-1], o[lo] = o[lo], o[hi-1]
	}
	if t.coord(o[m], axis) < t.coord(o[hi-1], axis) {
		o[m], o[hi-1] = o[hi-1], o[m]
	}

	pivot := t.coord(o[hi-1], axis)
	i := lo
	for j := lo; j < hi-1; j++ {
		if t.coord(o[j], axis) < pivot {
			o[i], o[j] = o[j], o[i]
			i++
		}
	}
	o[i], o[hi-1] = o[hi-1], o[i]
	return i
}

// InRadius returns the indices of all points whose Euclidean distance
// to (x, y) is <= r (a closed ball: points exactly at distance r are
// included). Results are appended to buf and returned sorted
// ascending, so callers can reuse a scratch slice across queries.
//
// A negative radius yields no results.
func (t *Tree) InRadius(x, y, r float64, buf []uint32) []uint32 {
	buf = buf[:0]
	if r < 0 || len(t.order) == 0 {
		return buf
	}
	buf = t.search(0, len(t.order), 0, x, y, r, r*r, buf)
	sort.Slice(buf, func(i, j int) bool { return buf[i] < buf[j] })
	return buf
}

func (t *Tree) search(lo, hi, depth int, x, y, r, r2 float64, out []uint32) []uint32 {
	if lo >= hi {
		return out
	}
	mid := (lo + hi) / 2
	idx := t.order[mid]

	dx := t.xs[idx] - x
	dy := t.ys[idx] - y
	if dx*dx+dy*dy <= r2 {
		out = append(out, idx)
	}

	// Signed distance from the query point to the splitting plane.
	var planeDist float64
	if depth%2 == 0 {
		planeDist = t.xs[idx] - x
	} else {
		planeDist = t.ys[idx] - y
	}

	// Descend into the near side first; the far side only if the ball
	// crosses the splitting plane.
	if planeDist >= 0 {
		out = t.search(lo, mid, depth+1, x, y, r, r2, out)
		if math.Abs(planeDist) <= r {
			out = t.search(mid+1, hi, depth+1, x, y, r, r2, out)
		}
	} else {
		out = t.search(mid+1, hi, depth+1, x, y, r, r2, out)
		if math.Abs(planeDist) <= r {
			out = t.search(lo, mid, depth+1, x, y, r, r2, out)
		}
	}
	return out
}
