// Copyright 2019 Michael J. Fromberger. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package alloc

import (
	"github.com/creachadair/blkalloc/heapmem"
	"github.com/creachadair/blkalloc/tag"
)

// merge folds the address range [start, end) — known to span one or more
// adjacent free blocks plus their tags — into a single free block headed at
// start, writing a fresh header and footer. The N bit of the merged block
// is taken from the actual allocation state of the block now at end, not
// copied from any stale field, so invariant 4 (P/N consistency) holds
// immediately after the write.
func (h *Heap) merge(start, end heapmem.Addr) heapmem.Addr {
	startTag := h.tagAt(start)
	size := uint64(end - start)
	nextAlloc := h.tagAt(end).Alloc()

	merged := tag.New(size, false, startTag.PrevAlloc(), nextAlloc, startTag.Epilogue())
	h.writeTag(start, merged)
	h.writeFooter(start, merged)
	return start
}

// release implements the core of Heap.Release: mark the block free, then
// coalesce with whichever neighbors are free (the epilogue is never a free
// neighbor regardless of its A bit), and reinsert the resulting block.
func (h *Heap) release(a heapmem.Addr) {
	cur := h.tagAt(a)
	free := cur.WithAlloc(false)
	h.writeTag(a, free)
	h.writeFooter(a, free)

	prevFree := !free.PrevAlloc()

	nextAddr := nextHeaderAddr(a, free.Size())
	nextTag := h.tagAt(nextAddr)
	nextFree := !nextTag.Epilogue() && !nextTag.Alloc()

	var merged heapmem.Addr
	switch {
	case prevFree && nextFree:
		prevAddr := h.prevHeaderAddr(a)
		afterNext := nextHeaderAddr(nextAddr, nextTag.Size())
		h.unlinkFree(prevAddr)
		h.unlinkFree(nextAddr)
		merged = h.merge(prevAddr, afterNext)

	case prevFree:
		prevAddr := h.prevHeaderAddr(a)
		h.unlinkFree(prevAddr)
		merged = h.merge(prevAddr, nextAddr)

	case nextFree:
		afterNext := nextHeaderAddr(nextAddr, nextTag.Size())
		h.unlinkFree(nextAddr)
		merged = h.merge(a, afterNext)

	default:
		merged = a
	}

	h.maintain(merged)
	h.insertFree(merged)
}
