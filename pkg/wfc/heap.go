// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package wfc

import "container/heap"

// heapEntry is one candidate in the entropy priority queue. Entries are
// never updated in place: a cell may have several live entries, and the
// version tag lets the observer discard all but the newest on pop.
type heapEntry struct {
	key     float64
	index   int
	version uint64
}

// entropyHeap is a min-heap over heapEntry keyed by the noisy entropy.
// The noise folded into the key resolves ties deterministically, so no
// secondary comparison is needed.
type entropyHeap []heapEntry

func (h entropyHeap) Len() int            { return len(h) }
func (h entropyHeap) Less(i, j int) bool  { return h[i].key < h[j].key }
func (h entropyHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entropyHeap) Push(x interface{}) { *h = append(*h, x.(heapEntry)) }

func (h *entropyHeap) Pop() interface{} {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

func (h *entropyHeap) push(e heapEntry) {
	heap.Push(h, e)
}

func (h *entropyHeap) pop() (heapEntry, bool) {
	if len(*h) == 0 {
		return heapEntry{}, false
	}
	return heap.Pop(h).(heapEntry), true
}

func (h *entropyHeap) reset() {
	*h = (*h)[:0]
}
