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
	"testing"

	"github.com/creachadair/blkalloc/heapmem"
)

func TestBucketForBoundaries(t *testing.T) {
	tests := []struct {
		size uint64
		want int
	}{
		{32, 0}, {33, 1}, {48, 1}, {49, 2}, {64, 2}, {65, 3},
		{96, 3}, {97, 4}, {2916, 4}, {2917, 5}, {1 << 20, 5},
	}
	for _, tc := range tests {
		if got := bucketFor(tc.size); got != tc.want {
			t.Errorf("bucketFor(%d) = %d, want %d", tc.size, got, tc.want)
		}
	}
}

func TestInsertUnlinkSingle(t *testing.T) {
	h := newTestHeap(t)
	a := h.Reserve(64)
	h.Release(a)

	header := headerFromData(a)
	i := bucketFor(h.tagAt(header).Size())
	if h.buckets[i] != header {
		t.Fatalf("bucket %d head = %d, want %d", i, h.buckets[i], header)
	}

	h.unlinkFree(header)
	if h.buckets[i] == header {
		t.Errorf("bucket %d still references unlinked block %d", i, header)
	}
}

func TestInsertUnlinkMiddleOfList(t *testing.T) {
	h := newTestHeap(t)
	// Reserve and release several same-sized blocks so they land in the
	// same bucket, then unlink one from the middle of the resulting list.
	// An allocated separator after each block keeps them from coalescing.
	var data []heapmem.Addr
	for i := 0; i < 4; i++ {
		data = append(data, h.Reserve(64))
		h.Reserve(16) // separator
	}
	for _, p := range data {
		h.Release(p)
	}

	mid := headerFromData(data[2])
	prev := h.freePrev(mid)
	next := h.freeNext(mid)

	h.unlinkFree(mid)

	if prev != noLink && h.freeNext(prev) != next {
		t.Error("predecessor's next pointer not updated after unlink")
	}
	if next != noLink && h.freePrev(next) != prev {
		t.Error("successor's prev pointer not updated after unlink")
	}
}
