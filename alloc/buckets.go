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

import "github.com/creachadair/blkalloc/heapmem"

// insertFree prepends the free block headed at a to the front of its
// owning bucket (LIFO order; buckets are never kept in size order).
func (h *Heap) insertFree(a heapmem.Addr) {
	i := bucketFor(h.tagAt(a).Size())
	h.setFreePrev(a, noLink)
	h.setFreeNext(a, h.buckets[i])
	if h.buckets[i] != noLink {
		h.setFreePrev(h.buckets[i], a)
	}
	h.buckets[i] = a
}

// unlinkFree detaches the block headed at a from whichever bucket list it
// currently occupies. If a's prev pointer is null, a is the head of some
// bucket, but which one is not cached on the block, so all bucket heads are
// scanned to find and advance it.
func (h *Heap) unlinkFree(a heapmem.Addr) {
	prev := h.freePrev(a)
	next := h.freeNext(a)

	if prev != noLink {
		h.setFreeNext(prev, next)
	} else {
		for i := range h.buckets {
			if h.buckets[i] == a {
				h.buckets[i] = next
			}
		}
	}
	if next != noLink {
		h.setFreePrev(next, prev)
	}
}
