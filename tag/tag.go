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

// Package tag implements the 8-byte boundary tag used by package alloc to
// mark the header (and, for free blocks, the footer) of every block in a
// heap.
//
// A tag packs five fields into a single little-endian uint64:
//
//	bits 0..59  : size, in bytes, of the block the tag belongs to
//	bit  60     : A, the block is reserved (allocated)
//	bit  61     : P, the immediately preceding block is reserved
//	bit  62     : N, the immediately following block is reserved
//	bit  63     : E, this tag is the terminal epilogue sentinel
//
// The codec performs no validation of its own; callers are responsible for
// keeping size a multiple of 16 and for the prologue/epilogue conventions
// documented in package alloc.
package tag

import "encoding/binary"

// Size is the width in bytes of a single tag, as stored on the heap.
const Size = 8

const (
	sizeBits  = 60
	sizeMask  = 1<<sizeBits - 1
	allocBit  = 1 << 60
	prevBit   = 1 << 61
	nextBit   = 1 << 62
	epiBit    = 1 << 63
)

// A Tag is the in-memory (unpacked) form of a boundary tag.
type Tag uint64

// New packs size and the four status bits into a Tag. Size is not rounded
// or validated; it is stored verbatim in the low 60 bits.
func New(size uint64, alloc, prevAlloc, nextAlloc, epilogue bool) Tag {
	t := Tag(size & sizeMask)
	if alloc {
		t |= allocBit
	}
	if prevAlloc {
		t |= prevBit
	}
	if nextAlloc {
		t |= nextBit
	}
	if epilogue {
		t |= epiBit
	}
	return t
}

// Size reports the block size encoded in t.
func (t Tag) Size() uint64 { return uint64(t) & sizeMask }

// Alloc reports the A bit: whether this block is reserved.
func (t Tag) Alloc() bool { return uint64(t)&allocBit != 0 }

// PrevAlloc reports the P bit: whether the preceding block is reserved.
func (t Tag) PrevAlloc() bool { return uint64(t)&prevBit != 0 }

// NextAlloc reports the N bit: whether the following block is reserved.
func (t Tag) NextAlloc() bool { return uint64(t)&nextBit != 0 }

// Epilogue reports the E bit: whether this tag is the terminal sentinel.
func (t Tag) Epilogue() bool { return uint64(t)&epiBit != 0 }

// WithSize returns a copy of t with its size field replaced.
func (t Tag) WithSize(size uint64) Tag { return Tag(size&sizeMask) | (t &^ sizeMask) }

// WithAlloc returns a copy of t with its A bit replaced.
func (t Tag) WithAlloc(v bool) Tag { return setBit(t, allocBit, v) }

// WithPrevAlloc returns a copy of t with its P bit replaced.
func (t Tag) WithPrevAlloc(v bool) Tag { return setBit(t, prevBit, v) }

// WithNextAlloc returns a copy of t with its N bit replaced.
func (t Tag) WithNextAlloc(v bool) Tag { return setBit(t, nextBit, v) }

func setBit(t Tag, bit uint64, v bool) Tag {
	if v {
		return t | Tag(bit)
	}
	return t &^ Tag(bit)
}

// ReadAt decodes the tag stored at mem[off:off+Size].
func ReadAt(mem []byte, off uint64) Tag {
	return Tag(binary.LittleEndian.Uint64(mem[off : off+Size]))
}

// WriteAt encodes t into mem[off:off+Size], overwriting whatever was there.
func WriteAt(mem []byte, off uint64, t Tag) {
	binary.LittleEndian.PutUint64(mem[off:off+Size], uint64(t))
}
