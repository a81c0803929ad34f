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

// maintain refreshes the neighbor-facing bits of the two blocks adjacent to
// the block headed at a, after a's own tag has just been written. It must
// be called once for every block whose tag changes.
//
// Rightward: the next block's P bit is set to a's A bit. If the next block
// is free, its footer is refreshed to match.
//
// Leftward: if a's own P bit says the previous block is free, that
// neighbor's footer (which sits directly before a and records the size
// needed to locate the neighbor's header) is rewritten with its N bit set
// to a's A bit, and the corresponding header is refreshed to match.
func (h *Heap) maintain(a heapmem.Addr) {
	self := h.tagAt(a)

	next := nextHeaderAddr(a, self.Size())
	nt := h.tagAt(next)
	nt2 := nt.WithPrevAlloc(self.Alloc())
	h.writeTag(next, nt2)
	if !nt2.Epilogue() && hasFooter(nt2) {
		h.writeFooter(next, nt2)
	}

	if !self.PrevAlloc() {
		pf := prevFooterAddr(a)
		pft := h.tagAt(pf).WithNextAlloc(self.Alloc())
		h.writeTag(pf, pft)
		ph := h.prevHeaderAddr(a)
		h.writeTag(ph, pft)
	}
}
