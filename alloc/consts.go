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

const (
	// alignment is the byte alignment promised to every Reserve/Resize/Calloc
	// caller, and the multiple every block size must respect.
	alignment = 16

	// headerSize is the size in bytes of a single boundary tag.
	headerSize = 8

	// pointerSize is the size in bytes of one free-list back-pointer.
	pointerSize = 8

	// minBlockSize is the smallest legal block: header + two free-list
	// pointers + footer.
	minBlockSize = headerSize + 2*pointerSize + headerSize // 32

	// numBuckets is the number of segregated free lists.
	numBuckets = 6

	// splitSlack is the remainder, in bytes, that a selected block must
	// exceed beyond the request before it is worth splitting off a free tail.
	// A remainder at or below this is instead handed out whole.
	splitSlack = 32
)

// bucketCeiling holds the inclusive upper bound of buckets 0..numBuckets-2.
// Bucket numBuckets-1 has no ceiling: it is both the largest bucket and the
// fallback searched whenever a smaller bucket cannot satisfy a request.
var bucketCeiling = [numBuckets - 1]uint64{32, 48, 64, 96, 2916}

// noLink is the sentinel "null" value used by free-list back-pointers and
// bucket heads. It is distinguished from [heapmem.Addr] zero, which is a
// legitimate address (the prologue), by using the all-ones pattern.
const noLink heapmem.Addr = ^heapmem.Addr(0)

// NullAddr is the sentinel value returned by Reserve and Resize in place of
// a data pointer when no block was produced (a zero-size request, or an
// out-of-memory condition). It is never a valid data pointer: the first
// legal data pointer is headerSize+headerSize (past the prologue and the
// first block's own header).
const NullAddr heapmem.Addr = 0

func align16(n uint64) uint64 { return alignment * ((n + alignment - 1) / alignment) }

// bucketFor returns the index of the bucket that holds free blocks of the
// given size: the first bucket whose ceiling is at least size, or the last
// (catch-all) bucket if size exceeds every ceiling.
func bucketFor(size uint64) int {
	for i, ceil := range bucketCeiling {
		if size <= ceil {
			return i
		}
	}
	return numBuckets - 1
}

// earlyAccept reports whether a candidate of the given size is within the
// placer's early-accept margin of a request for size want. Computed in
// integer arithmetic (0.225 == 225/1000) to avoid floating-point drift.
func earlyAccept(candidate, want uint64) bool {
	margin := want * 225 / 1000
	return candidate >= want && candidate <= want+margin
}
