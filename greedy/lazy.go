package greedy

import (
	"container/heap"
	"context"

	"github.com/hupe1980/maxcover/coverage"
)

// lazyEntry is a heap entry carrying a candidate's last-known gain and
// the round it was computed in. Entries from earlier rounds are upper
// bounds (gains never grow) and must be re-validated before selection.
type lazyEntry struct {
	candidate int
	gain      float64
	round     int
}

// gainHeap is a max-heap on gain, ties broken by smaller candidate
// index so lazy selection matches the naive scan order exactly.
type gainHeap []lazyEntry

func (h gainHeap) Len() int { return len(h) }

func (h gainHeap) Less(i, j int) bool {
	if h[i].gain != h[j].gain {
		return h[i].gain > h[j].gain
	}
	return h[i].candidate < h[j].candidate
}

func (h gainHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *gainHeap) Push(x any) { *h = append(*h, x.(lazyEntry)) }

func (h *gainHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// selectLazy is the lazy-greedy evaluator. Each round it pops the
// best last-known gain, recomputes it if stale, and only selects once
// the fresh gain provably dominates every remaining entry. An entry
// whose fresh gain ties a smaller-index stale entry is pushed back so
// the smaller index gets validated first, preserving the naive
// tie-break.
func selectLazy(ctx context.Context, m *coverage.Map, weights []float64, k int, sel *Selection) error {
	h := make(gainHeap, 0, m.NumCandidates())
	for c, set := range m.Sets {
		if set.IsEmpty() {
			continue
		}
		g := gain(m, weights, sel.Covered, c)
		if g > 0 {
			h = append(h, lazyEntry{candidate: c, gain: g, round: 0})
		}
	}
	heap.Init(&h)

	for round := 0; round < k && h.Len() > 0; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		for {
			if h.Len() == 0 {
				// Every remaining candidate re-validated to zero gain.
				return nil
			}
			e := heap.Pop(&h).(lazyEntry)

			if e.round != round {
				// Stale: recompute against the current mask.
				e.gain = gain(m, weights, sel.Covered, e.candidate)
				e.round = round
				if e.gain > 0 {
					heap.Push(&h, e)
				}
				continue
			}

			if e.gain <= 0 {
				// Largest fresh gain is zero: nothing left to cover.
				return nil
			}

			// Fresh entry. Select unless a remaining entry could
			// still beat it, or ties it with a smaller index.
			if h.Len() > 0 {
				top := h[0]
				if top.gain > e.gain || (top.gain == e.gain && top.candidate < e.candidate) {
					heap.Push(&h, e)
					continue
				}
			}

			commit(m, weights, sel, e.candidate, e.gain)
			break
		}
	}
	return nil
}
