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
	"encoding/binary"

	"github.com/creachadair/blkalloc/heapmem"
	"github.com/creachadair/blkalloc/tag"
)

// idx translates an Addr into a slice index into h.mem.Bytes().
func (h *Heap) idx(a heapmem.Addr) uint64 { return uint64(a - h.mem.Low()) }

func (h *Heap) tagAt(a heapmem.Addr) tag.Tag {
	return tag.ReadAt(h.mem.Bytes(), h.idx(a))
}

func (h *Heap) writeTag(a heapmem.Addr, t tag.Tag) {
	tag.WriteAt(h.mem.Bytes(), h.idx(a), t)
}

// footerAddr returns the address of the footer belonging to the free block
// whose header is at a and whose size is size.
func footerAddr(a heapmem.Addr, size uint64) heapmem.Addr {
	return a + heapmem.Addr(size) - headerSize
}

// writeFooter duplicates t at the footer position implied by a and t.Size().
func (h *Heap) writeFooter(a heapmem.Addr, t tag.Tag) {
	h.writeTag(footerAddr(a, t.Size()), t)
}

// dataAddr returns the data pointer for the block headed at a.
func dataAddr(a heapmem.Addr) heapmem.Addr { return a + headerSize }

// headerFromData recovers a block's header address from its data pointer.
func headerFromData(p heapmem.Addr) heapmem.Addr { return p - headerSize }

// nextHeaderAddr returns the header address of the block immediately
// following the block headed at a, given that block's size.
func nextHeaderAddr(a heapmem.Addr, size uint64) heapmem.Addr {
	return a + heapmem.Addr(size)
}

// hasFooter reports whether a block with tag t carries a footer: only free
// blocks do.
func hasFooter(t tag.Tag) bool { return !t.Alloc() }

// prevFooterAddr returns the address of the footer belonging to the block
// immediately preceding the block headed at a. The caller must already know
// (via the P bit) that the previous block is free before trusting the bytes
// at this address to be a footer.
func prevFooterAddr(a heapmem.Addr) heapmem.Addr { return a - headerSize }

// prevHeaderAddr locates the header of the (known-free) block immediately
// preceding a, using the size recorded in that block's footer.
func (h *Heap) prevHeaderAddr(a heapmem.Addr) heapmem.Addr {
	pf := h.tagAt(prevFooterAddr(a))
	return prevFooterAddr(a) - heapmem.Addr(pf.Size()) + headerSize
}

// Free-block payload layout: the 16 bytes immediately following the header
// hold the predecessor and successor back-pointers for this block's free
// list bucket, in that order.

func (h *Heap) readAddr(at heapmem.Addr) heapmem.Addr {
	b := h.mem.Bytes()
	i := h.idx(at)
	return heapmem.Addr(binary.LittleEndian.Uint64(b[i : i+8]))
}

func (h *Heap) writeAddr(at heapmem.Addr, v heapmem.Addr) {
	b := h.mem.Bytes()
	i := h.idx(at)
	binary.LittleEndian.PutUint64(b[i:i+8], uint64(v))
}

func (h *Heap) freePrev(header heapmem.Addr) heapmem.Addr { return h.readAddr(header + headerSize) }
func (h *Heap) freeNext(header heapmem.Addr) heapmem.Addr {
	return h.readAddr(header + headerSize + pointerSize)
}

func (h *Heap) setFreePrev(header, v heapmem.Addr) { h.writeAddr(header+headerSize, v) }
func (h *Heap) setFreeNext(header, v heapmem.Addr) {
	h.writeAddr(header+headerSize+pointerSize, v)
}
