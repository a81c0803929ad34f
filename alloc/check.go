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
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/creachadair/mds/mapset"

	"github.com/creachadair/blkalloc/heapmem"
)

// Check walks the heap from the prologue to the epilogue and verifies the
// invariants spec.md §8.1 requires of every reachable state: alignment,
// P-bit agreement with actual neighbor allocation state, free-list
// membership agreeing with each block's own A bit, and no cycle in either
// the block chain or any bucket's free list. N bits are not checked. label is attached to any
// reported violation (in place of the reference checker's source line
// number) so a caller driving Check from several call sites can tell them
// apart in a log.
func (h *Heap) Check(label string) error {
	seen := mapset.New[heapmem.Addr]()

	cur := h.mem.Low()
	prologue := h.tagAt(cur)
	if !prologue.Alloc() || prologue.Size() != headerSize {
		return fmt.Errorf("%w: %s: malformed prologue at %d", ErrInvalidHeap, label, cur)
	}
	cur = nextHeaderAddr(cur, prologue.Size())

	prevAlloc := true
	for {
		if seen.Has(cur) {
			return fmt.Errorf("%w: %s: cycle in block chain at %d", ErrInvalidHeap, label, cur)
		}
		seen.Add(cur)

		t := h.tagAt(cur)
		if t.Epilogue() {
			if !t.Alloc() || t.Size() != 0 {
				return fmt.Errorf("%w: %s: malformed epilogue at %d", ErrInvalidHeap, label, cur)
			}
			if t.PrevAlloc() != prevAlloc {
				return fmt.Errorf("%w: %s: epilogue P bit disagrees with predecessor at %d", ErrInvalidHeap, label, cur)
			}
			break
		}

		if t.Size()%alignment != 0 || t.Size() < minBlockSize {
			return fmt.Errorf("%w: %s: block at %d has invalid size %d", ErrInvalidHeap, label, cur, t.Size())
		}
		if t.PrevAlloc() != prevAlloc {
			return fmt.Errorf("%w: %s: block at %d has P bit %v, predecessor alloc is %v", ErrInvalidHeap, label, cur, t.PrevAlloc(), prevAlloc)
		}
		if !t.Alloc() {
			foot := h.tagAt(footerAddr(cur, t.Size()))
			if foot != t {
				return fmt.Errorf("%w: %s: header/footer mismatch at %d", ErrInvalidHeap, label, cur)
			}
		}

		prevAlloc = t.Alloc()
		cur = nextHeaderAddr(cur, t.Size())
	}

	free := mapset.New[heapmem.Addr]()
	for i := range h.buckets {
		seenInBucket := mapset.New[heapmem.Addr]()
		for p := h.buckets[i]; p != noLink; p = h.freeNext(p) {
			if seenInBucket.Has(p) {
				return fmt.Errorf("%w: %s: cycle in free list bucket %d at %d", ErrInvalidHeap, label, i, p)
			}
			seenInBucket.Add(p)

			t := h.tagAt(p)
			if t.Alloc() {
				return fmt.Errorf("%w: %s: allocated block %d found in free list bucket %d", ErrInvalidHeap, label, p, i)
			}
			if got := bucketFor(t.Size()); got != i {
				return fmt.Errorf("%w: %s: block %d of size %d in wrong bucket (%d, want %d)", ErrInvalidHeap, label, p, t.Size(), i, got)
			}
			free.Add(p)
		}
	}

	for p := h.mem.Low(); p < h.mem.High(); {
		t := h.tagAt(p)
		if t.Epilogue() {
			break
		}
		if !t.Alloc() && !free.Has(p) && p != h.mem.Low() {
			return fmt.Errorf("%w: %s: free block %d missing from every bucket", ErrInvalidHeap, label, p)
		}
		p = nextHeaderAddr(p, t.Size())
	}

	return nil
}

// digest returns an xxhash checksum of the tag bytes of every block header
// from the prologue through the epilogue, in address order. It changes
// whenever the shape of the heap (sizes and A/P/N bits of every block)
// changes, independent of payload contents, making it suitable for
// before/after comparisons in tests and the demo harness.
func (h *Heap) digest() uint64 {
	d := xxhash.New()
	cur := h.mem.Low()
	for {
		t := h.tagAt(cur)
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(uint64(t) >> (8 * i))
		}
		d.Write(buf[:])
		if t.Epilogue() {
			break
		}
		cur = nextHeaderAddr(cur, t.Size())
	}
	return d.Sum64()
}
