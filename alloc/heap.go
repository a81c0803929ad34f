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
	"log/slog"

	"github.com/creachadair/blkalloc/heapmem"
	"github.com/creachadair/blkalloc/tag"
)

// A Heap is a single allocator instance over a [heapmem.Region]. The zero
// value is not ready for use; construct one with [New].
//
// A Heap holds no lock: it assumes a single flow of control, per package
// alloc's documentation. Distinct Heap values are fully independent and may
// be driven concurrently from different goroutines.
type Heap struct {
	mem     heapmem.Region
	buckets [numBuckets]heapmem.Addr

	logger  *slog.Logger
	lastErr error
}

// New bootstraps a fresh Heap over mem, installing the prologue and
// epilogue sentinels. mem must be empty (Low() == High()); New is not
// idempotent and must be called exactly once per region.
//
// If logger is nil, a discard logger is used; no log record is ever
// produced on a successful call that doesn't involve heap extension or
// failure, so passing nil is the common case.
func New(mem heapmem.Region, logger *slog.Logger) (*Heap, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &Heap{mem: mem, logger: logger}
	for i := range h.buckets {
		h.buckets[i] = noLink
	}

	base, err := mem.Extend(2 * headerSize)
	if err != nil {
		return nil, fmt.Errorf("alloc: bootstrap: %w", err)
	}

	prologue := tag.New(headerSize, true, true, true, false)
	h.writeTag(base, prologue)

	epilogue := tag.New(0, true, true, true, true)
	h.writeTag(base+headerSize, epilogue)

	return h, nil
}

// LastError returns the most recent error encountered while extending the
// heap, or nil if extension has never failed. It is a diagnostic
// convenience beyond spec: Reserve and Resize themselves report
// out-of-memory only by returning [NullAddr], per §4.9/§7.
func (h *Heap) LastError() error { return h.lastErr }

// extend grows the heap by size bytes (already rounded and at least
// minBlockSize) and returns the header address of the new, already-reserved
// block. The new bytes begin immediately after the current epilogue, whose
// 8 bytes become the start of the new header.
//
// The new header's P bit is taken from the outgoing epilogue's own P bit
// (which tag maintenance has kept accurate for as long as the epilogue has
// existed), rather than hard-coded true: a free block is allowed to sit
// directly against the epilogue (see SPEC_FULL.md §11, item 4), and
// hard-coding P=1 there would silently corrupt
// that block's bookkeeping. This is a deliberate refinement over the
// literal reference source's increase_heap, recorded as an Open Question
// decision in DESIGN.md; it does not touch any of the three explicitly
// flagged "do not guess" items.
func (h *Heap) extend(size uint64) (heapmem.Addr, error) {
	oldEpilogue := h.mem.High() - headerSize
	oldTag := h.tagAt(oldEpilogue)

	if _, err := h.mem.Extend(int(size)); err != nil {
		h.lastErr = fmt.Errorf("%w: %w", ErrOutOfMemory, err)
		h.logger.Debug("heap extension failed", "size", size, "error", err)
		return noLink, h.lastErr
	}

	header := oldEpilogue
	newTag := tag.New(size, true, oldTag.PrevAlloc(), true, false)
	h.writeTag(header, newTag)

	epilogueAddr := nextHeaderAddr(header, size)
	h.writeTag(epilogueAddr, tag.New(0, true, true, true, true))

	h.maintain(header)

	h.logger.Debug("heap extended", "size", size, "header", header)
	return header, nil
}

// Reserve implements spec.md §4.9's reserve(n). A request of 0 returns
// NullAddr. Otherwise the request is rounded up to a multiple of 16 (with
// room for the header) and at least minBlockSize, the placer is consulted,
// and a matching free block is split or consumed whole; if none is found,
// the heap is extended.
func (h *Heap) Reserve(n int) heapmem.Addr {
	if n <= 0 {
		return NullAddr
	}
	want := align16(uint64(n) + headerSize)
	if want < minBlockSize {
		want = minBlockSize
	}

	if best := h.findFit(want); best != noLink {
		size := h.tagAt(best).Size()
		if shouldSplit(size, want) {
			h.split(best, want)
		} else {
			h.reserveWhole(best)
		}
		h.unlinkFree(best)
		return dataAddr(best)
	}

	header, err := h.extend(want)
	if err != nil {
		return NullAddr
	}
	return dataAddr(header)
}

// Release implements spec.md §4.9's release(p). A NullAddr is a no-op.
// Releasing a pointer not produced by this Heap, or releasing the same
// pointer twice, is undefined behavior and is not detected (spec.md §7);
// see package alloc/bloom for an opt-in, best-effort diagnostic.
func (h *Heap) Release(p heapmem.Addr) {
	if p == NullAddr {
		return
	}
	h.release(headerFromData(p))
}

// Resize implements spec.md §4.9's resize(p, n).
func (h *Heap) Resize(p heapmem.Addr, n int) heapmem.Addr {
	if p == NullAddr {
		return h.Reserve(n)
	}
	if n <= 0 {
		h.Release(p)
		return NullAddr
	}

	oldHeader := headerFromData(p)
	oldTag := h.tagAt(oldHeader)
	if oldTag.Size()-headerSize >= uint64(n) {
		return p
	}

	newP := h.Reserve(n)
	if newP == NullAddr {
		return NullAddr
	}
	h.transfer(oldHeader, headerFromData(newP))
	h.Release(p)
	return newP
}

// transfer copies min(old usable, new usable) bytes from the old block's
// data region to the new one. Reserved blocks carry no footer, so the
// usable length is size - headerSize for both blocks; both sizes are read
// once, before either region is touched, and the copy never exceeds either
// caller-visible region.
func (h *Heap) transfer(oldHeader, newHeader heapmem.Addr) {
	oldSize := h.tagAt(oldHeader).Size()
	newSize := h.tagAt(newHeader).Size()

	n := oldSize - headerSize
	if newSize-headerSize < n {
		n = newSize - headerSize
	}

	mem := h.mem.Bytes()
	src := h.idx(dataAddr(oldHeader))
	dst := h.idx(dataAddr(newHeader))
	copy(mem[dst:dst+n], mem[src:src+n])
}

// Calloc implements spec.md §4.9's zero-allocate(count, size): reserve
// count*size bytes and zero them, composed exactly as the original source's
// calloc composes malloc and memset (SPEC_FULL.md §10.1) rather than taking
// its own path through the free-list index.
func (h *Heap) Calloc(count, size int) heapmem.Addr {
	p := h.Reserve(count * size)
	if p == NullAddr {
		return NullAddr
	}
	mem := h.mem.Bytes()
	i := h.idx(p)
	n := uint64(count * size)
	clear(mem[i : i+n])
	return p
}

// Digest returns an xxhash checksum of the live tag stream (every header
// from the prologue to the epilogue, in address order), for snapshot
// comparison in tests and the demo harness. It is a diagnostic convenience,
// not part of spec.md's four core operations.
func (h *Heap) Digest() uint64 { return h.digest() }

// Bytes returns the raw byte image of the underlying region, including
// every block's header, footer, and payload bytes. The returned slice
// aliases live heap memory and must not be retained across a subsequent
// Reserve, Release, or Resize call; it exists for snapshotting and
// debugging tools such as the demo harness, not for general use.
func (h *Heap) Bytes() []byte { return h.mem.Bytes() }
