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

// shouldSplit reports whether a block of size blockSize, chosen to satisfy a
// request of size want, has enough slack to be worth splitting into a
// reserved head and a free tail.
func shouldSplit(blockSize, want uint64) bool { return blockSize > want+splitSlack }

// split divides the block headed at a, whose current size exceeds want by
// more than splitSlack, into a reserved block of exactly want bytes and a
// free tail holding the remainder. It returns the tail's header address,
// which has already been inserted into the free-list index.
//
// The old header is cached before anything is written, and the new tail
// header is written before any read that could be confused with the (now
// stale) old footer — a block whose size has just changed must never be
// consulted for its old footer position.
func (h *Heap) split(a heapmem.Addr, want uint64) heapmem.Addr {
	old := h.tagAt(a)

	low := tag.New(want, true, old.PrevAlloc(), false, false)
	h.writeTag(a, low)

	tailAddr := nextHeaderAddr(a, want)
	tailSize := old.Size() - want
	tail := tag.New(tailSize, false, true, old.NextAlloc(), old.Epilogue())
	h.writeTag(tailAddr, tail)
	h.writeFooter(tailAddr, tail)

	h.maintain(a)
	h.maintain(tailAddr)

	h.insertFree(tailAddr)
	return tailAddr
}

// reserveWhole converts the entire free block headed at a into a reserved
// block without splitting, used when the remainder would be too small to
// host a valid free block of its own.
func (h *Heap) reserveWhole(a heapmem.Addr) {
	cur := h.tagAt(a)
	h.writeTag(a, cur.WithAlloc(true))
	h.maintain(a)
}
