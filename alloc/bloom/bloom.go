// Copyright 2021 Michael J. Fromberger. All Rights Reserved.
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

// Package bloom constructs a Bloom filter index over the data addresses a
// Heap has handed out, for an opt-in, best-effort double-release and
// use-after-free advisory. It is never consulted by the core alloc package:
// a caller wires it in around Heap.Reserve/Heap.Release itself, the way a
// debug build might wire in any other auxiliary check.
package bloom

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/cespare/xxhash/v2"

	"github.com/creachadair/blkalloc/heapmem"
)

// A Filter holds a Bloom filter index over a set of live addresses.
type Filter struct {
	numKeys int
	bits    bitVector
	nbits   uint64
	seeds   []uint64
}

// Options provide optional settings for a Filter. A nil *Options is ready
// for use and provides the defaults described below.
type Options struct {
	// The maximum false positive rate to permit. A value ≤ 0 defaults to
	// 0.01. Decreasing this value increases the memory required.
	FalsePositiveRate float64
}

func (o *Options) falsePositiveRate() float64 {
	if o == nil || o.FalsePositiveRate <= 0 {
		return 0.01
	}
	return o.FalsePositiveRate
}

// New constructs an empty filter with capacity for the given number of live
// addresses. New will panic if numAddrs ≤ 0.
func New(numAddrs int, opts *Options) *Filter {
	if numAddrs <= 0 {
		panic("bloom: numAddrs must be positive")
	}
	f := new(Filter)
	f.init(numAddrs, opts.falsePositiveRate())
	return f
}

// Add records a as a live address.
func (f *Filter) Add(a heapmem.Addr) {
	hash := hashAddr(a)
	for _, seed := range f.seeds {
		pos := int((hash ^ seed) % f.nbits)
		f.bits.Set(pos)
	}
	f.numKeys++
}

// Has reports whether a may be a live address. False positives are
// possible for addresses that were never added; false negatives are not:
// an address reported false here was never added to this filter.
func (f *Filter) Has(a heapmem.Addr) bool {
	hash := hashAddr(a)
	for _, seed := range f.seeds {
		pos := int((hash ^ seed) % f.nbits)
		if !f.bits.IsSet(pos) {
			return false
		}
	}
	return true
}

// Stats record size and capacity statistics for a Filter.
type Stats struct {
	NumAddrs   int // the number of addresses added
	FilterBits int // the number of bits allocated to the filter (m)
	NumHashes  int // the number of hash seeds allocated (k)
}

// Stats returns size and capacity statistics for f.
func (f *Filter) Stats() Stats {
	return Stats{NumAddrs: f.numKeys, FilterBits: int(f.nbits), NumHashes: len(f.seeds)}
}

func hashAddr(a heapmem.Addr) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(a))
	return xxhash.Sum64(buf[:])
}

// init computes the optimal filter width m and hash count k for n
// addresses at false positive rate p:
//
//	             -n * ln(p)
//	 m = ceil( ------------ )
//	             ln(2)**2
//
//	             m * ln(2)
//	 k = ceil( ----------- )
//	               n
func (f *Filter) init(n int, p float64) {
	m := math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	k := math.Ceil((m * math.Ln2) / float64(n))

	f.bits = newBitVector(int(m))
	f.nbits = 64 * uint64(len(f.bits))
	f.seeds = make([]uint64, int(k))
	for i := range f.seeds {
		f.seeds[i] = rand.Uint64()
	}
}

type bitVector []uint64

func newBitVector(size int) bitVector  { return make(bitVector, (size+63)/64) }
func (b bitVector) IsSet(pos int) bool { return b[(pos>>6)%len(b)]&(uint64(1)<<(pos&0x3f)) != 0 }
func (b bitVector) Set(pos int)        { b[(pos>>6)%len(b)] |= uint64(1) << (pos & 0x3f) }
