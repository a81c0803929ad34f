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

import "testing"

func TestShouldSplit(t *testing.T) {
	tests := []struct {
		blockSize, want uint64
		split           bool
	}{
		{64, 32, false}, // 64 <= 32+32
		{64, 33, false}, // 64 <= 33+32
		{96, 32, true},
		{63, 32, false},
	}
	for _, tc := range tests {
		if got := shouldSplit(tc.blockSize, tc.want); got != tc.split {
			t.Errorf("shouldSplit(%d, %d) = %v, want %v", tc.blockSize, tc.want, got, tc.split)
		}
	}
}

// TestSplitProducesTwoValidBlocks reserves a large block, releases it so it
// becomes a single free block much larger than a subsequent small request,
// then reserves the small amount and checks that a free tail was split off
// and properly linked.
func TestSplitProducesTwoValidBlocks(t *testing.T) {
	h := newTestHeap(t)

	big := h.Reserve(512)
	if big == NullAddr {
		t.Fatal("Reserve(512) = NullAddr")
	}
	h.Release(big)

	small := h.Reserve(16)
	if small == NullAddr {
		t.Fatal("Reserve(16) = NullAddr")
	}
	if err := h.Check("after-split"); err != nil {
		t.Fatalf("Check: %v", err)
	}

	header := headerFromData(small)
	tagv := h.tagAt(header)
	if !tagv.Alloc() {
		t.Error("reserved block after split has A=0")
	}

	tailHeader := nextHeaderAddr(header, tagv.Size())
	tailTag := h.tagAt(tailHeader)
	if tailTag.Alloc() {
		t.Error("expected a free tail block after split, found allocated")
	}
	if tailTag.Size()+tagv.Size() < 512+headerSize {
		t.Errorf("split blocks total size %d too small", tailTag.Size()+tagv.Size())
	}
}

func TestReserveWholeWhenNoSlack(t *testing.T) {
	h := newTestHeap(t)
	p := h.Reserve(16)
	h.Release(p)

	// Requesting exactly the free block's usable size (minus slack) should
	// reuse it whole rather than split off an unusably small remainder.
	header := headerFromData(p)
	size := h.tagAt(header).Size()

	q := h.Reserve(int(size - headerSize))
	if q == NullAddr {
		t.Fatal("Reserve = NullAddr")
	}
	if err := h.Check("after-whole-reserve"); err != nil {
		t.Errorf("Check: %v", err)
	}
}
