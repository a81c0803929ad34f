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

// findFit walks the free-list buckets starting at bucketFor(want), falling
// through to successively larger buckets (the last bucket is also the
// catch-all), and returns the header address of a block chosen by best-fit
// with early acceptance. It reports noLink if no bucket yields a fit.
//
// Within a bucket, the smallest block seen so far that is at least want is
// tracked as the best candidate; scanning that bucket stops as soon as a
// candidate falls within the early-accept margin of want. The block found
// is NOT unlinked from its bucket by findFit: its free-list pointers remain
// valid until the caller unlinks it (a split may insert the tail ahead of it
// in the same bucket, which updates its prev pointer consistently),
// matching how the reference allocator defers
// unlinking until after a prospective split.
func (h *Heap) findFit(want uint64) heapmem.Addr {
	start := bucketFor(want)
	for i := start; i < numBuckets; i++ {
		best := noLink
		for cur := h.buckets[i]; cur != noLink; cur = h.freeNext(cur) {
			size := h.tagAt(cur).Size()
			if size < want {
				continue
			}
			if best == noLink || size < h.tagAt(best).Size() {
				best = cur
				if earlyAccept(size, want) {
					break
				}
			}
		}
		if best != noLink {
			return best
		}
	}
	return noLink
}
